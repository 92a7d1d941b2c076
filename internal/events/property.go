package events

import "time"

// PropertyDiscovered is emitted after the resolver ran its discovery chain for
// a (type, property) pair that had no cache entry.
type PropertyDiscovered struct {
	TypeName string
	Property string
	// Strategy names the step that produced the accessor, or "none".
	Strategy string
	Found    bool
	Start    time.Time
	Duration time.Duration
}

// PropertyFailed is emitted when a resolved accessor was invoked and failed.
type PropertyFailed struct {
	TypeName string
	Property string
	Err      error
}
