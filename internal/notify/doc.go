// Package notify implements the asynchronous mail notification pipeline:
// a fire-and-forget dispatcher feeding a shared in-memory queue, a pool of
// workers delivering rendered email, and an exponential-backoff retry
// policy with jitter. Delivery is at-least-once; duplicate emails are an
// accepted trade-off and are not deduplicated.
package notify
