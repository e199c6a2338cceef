package store

import "sync/atomic"

// Stats tracks operation counters for a [Store].
type Stats struct {
	sets    atomic.Uint64
	deletes atomic.Uint64
	removes atomic.Uint64
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the [Store] counters.
type StatsSnapshot struct {
	Sets    uint64
	Deletes uint64
	Removes uint64
	Hits    uint64
	Misses  uint64
}

// Stats returns a snapshot of the store's operation counters.
func (s *Store) Stats() StatsSnapshot {
	return StatsSnapshot{
		Sets:    s.stats.sets.Load(),
		Deletes: s.stats.deletes.Load(),
		Removes: s.stats.removes.Load(),
		Hits:    s.stats.hits.Load(),
		Misses:  s.stats.misses.Load(),
	}
}
