package core

// PoolStats represents runtime observability state for a thread pool.
//
// The counter fields (Executed, Steals, Parks, Wakes, Rejected) are
// cumulative since pool construction; the rest are point-in-time.
type PoolStats struct {
	Name         string
	Workers      int
	Queued       int
	Active       int
	LiveTaskSets int
	Executed     uint64
	Steals       uint64
	Parks        uint64
	Wakes        uint64
	Rejected     uint64
	Running      bool
}
