package events

import "time"

// BatchStart is emitted before the host runtime resolves a batch of fields.
// The publishing context carries the batch request ID (see reqid).
type BatchStart struct {
	RequestID uint64
	Tasks     int
}

// BatchFinish is emitted after every task of a batch has completed.
type BatchFinish struct {
	RequestID uint64
	Tasks     int
	Errors    int
	Duration  time.Duration
}
