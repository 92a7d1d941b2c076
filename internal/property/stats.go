package property

import "sync/atomic"

// Stats is a point-in-time snapshot of resolver activity. Counters are
// cumulative for the life of the Resolver; ClearCache does not reset them.
type Stats struct {
	// Discoveries counts runs of the discovery chain.
	Discoveries    int64
	PositiveHits   int64
	NegativeHits   int64
	ContainerReads int64
	// Absences counts lookups that ended without a value.
	Absences int64
	Failures int64

	PositiveEntries int
	NegativeEntries int
}

type counters struct {
	discoveries    atomic.Int64
	positiveHits   atomic.Int64
	negativeHits   atomic.Int64
	containerReads atomic.Int64
	absences       atomic.Int64
	failures       atomic.Int64
}

// Stats returns a snapshot of the resolver counters and cache sizes.
func (r *Resolver) Stats() Stats {
	return Stats{
		Discoveries:     r.counters.discoveries.Load(),
		PositiveHits:    r.counters.positiveHits.Load(),
		NegativeHits:    r.counters.negativeHits.Load(),
		ContainerReads:  r.counters.containerReads.Load(),
		Absences:        r.counters.absences.Load(),
		Failures:        r.counters.failures.Load(),
		PositiveEntries: r.positive.len(),
		NegativeEntries: r.negative.len(),
	}
}
