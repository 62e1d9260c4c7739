package bandit

import "gonum.org/v1/gonum/floats"

// Stats is the per-run table of pulls and rewards per arm.
type Stats struct {
	counts []int
	sums   []float64
}

func newStats(arms int) *Stats {
	return &Stats{
		counts: make([]int, arms),
		sums:   make([]float64, arms),
	}
}

func (s *Stats) Arms() int {
	return len(s.counts)
}

func (s *Stats) Count(arm int) int {
	return s.counts[arm]
}

func (s *Stats) Sum(arm int) float64 {
	return s.sums[arm]
}

// Estimate is the smoothed sample mean of arm.
func (s *Stats) Estimate(arm int) float64 {
	return s.sums[arm] / (float64(s.counts[arm]) + Smoothing)
}

func (s *Stats) Estimates() []float64 {
	estimates := make([]float64, len(s.counts))
	for arm := range estimates {
		estimates[arm] = s.Estimate(arm)
	}
	return estimates
}

// Greedy returns the arm with the highest estimate, the lowest index on ties.
func (s *Stats) Greedy() int {
	return floats.MaxIdx(s.Estimates())
}

// Total is the number of pulls over all arms.
func (s *Stats) Total() int {
	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

func (s *Stats) record(arm int, reward float64) {
	s.counts[arm]++
	s.sums[arm] += reward
}
