package vdp

// Statistics is a snapshot of a Pool's capacity and usage
type Statistics struct {
	// MaxSets is the configured total number of sets that can be live at once
	MaxSets int
	// AllocatedSets is the number of sets issued since creation or the last purge
	AllocatedSets int
	// LayoutCount is the number of distinct layouts among AllocatedSets
	LayoutCount int

	TotalAllocations     int
	ExhaustedAllocations int
	Purges               int
}

// AddStatistics accumulates other into s, for consumers aggregating several pools
func (s *Statistics) AddStatistics(other *Statistics) {
	s.MaxSets += other.MaxSets
	s.AllocatedSets += other.AllocatedSets
	s.LayoutCount += other.LayoutCount
	s.TotalAllocations += other.TotalAllocations
	s.ExhaustedAllocations += other.ExhaustedAllocations
	s.Purges += other.Purges
}

// AvailableSets is the number of sets that can still be allocated before the configured total is reached.
// The driver may still refuse earlier if a per-type descriptor count runs out.
func (s *Statistics) AvailableSets() int {
	return s.MaxSets - s.AllocatedSets
}
