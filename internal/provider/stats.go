package provider

import "sync/atomic"

// Stats tracks operation counters for a [Provider].
type Stats struct {
	reads        atomic.Uint64
	writes       atomic.Uint64
	mkdirs       atomic.Uint64
	deletes      atomic.Uint64
	removes      atomic.Uint64
	lists        atomic.Uint64
	statOps      atomic.Uint64
	overrideHits atomic.Uint64
	passthroughs atomic.Uint64
	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the [Provider] counters.
type StatsSnapshot struct {
	Reads        uint64
	Writes       uint64
	MkDirs       uint64
	Deletes      uint64
	Removes      uint64
	Lists        uint64
	StatOps      uint64
	OverrideHits uint64
	Passthroughs uint64
	BytesRead    uint64
	BytesWritten uint64
}

// Ops returns the total number of adapter calls in the snapshot.
func (s StatsSnapshot) Ops() uint64 {
	return s.Reads + s.Writes + s.MkDirs + s.Deletes + s.Removes + s.Lists + s.StatOps
}

// Stats returns a snapshot of the provider's operation counters.
func (p *Provider) Stats() StatsSnapshot {
	return StatsSnapshot{
		Reads:        p.stats.reads.Load(),
		Writes:       p.stats.writes.Load(),
		MkDirs:       p.stats.mkdirs.Load(),
		Deletes:      p.stats.deletes.Load(),
		Removes:      p.stats.removes.Load(),
		Lists:        p.stats.lists.Load(),
		StatOps:      p.stats.statOps.Load(),
		OverrideHits: p.stats.overrideHits.Load(),
		Passthroughs: p.stats.passthroughs.Load(),
		BytesRead:    p.stats.bytesRead.Load(),
		BytesWritten: p.stats.bytesWritten.Load(),
	}
}
