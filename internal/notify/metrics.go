package notify

import "sync/atomic"

// Metrics holds in-process counters for the notification pipeline. They
// feed the operator surface and are the only observable trace of
// abandoned jobs besides the log.
type Metrics struct {
	Enqueued  atomic.Int64
	Dropped   atomic.Int64
	Delivered atomic.Int64
	Retried   atomic.Int64
	Abandoned atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Enqueued  int64 `json:"enqueued"`
	Dropped   int64 `json:"dropped"`
	Delivered int64 `json:"delivered"`
	Retried   int64 `json:"retried"`
	Abandoned int64 `json:"abandoned"`
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Enqueued:  m.Enqueued.Load(),
		Dropped:   m.Dropped.Load(),
		Delivered: m.Delivered.Load(),
		Retried:   m.Retried.Load(),
		Abandoned: m.Abandoned.Load(),
	}
}
