package mdp

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// operator computes a state's new value from the previous sweep's table.
type operator func(state State, values Values) float64

// iterate applies op to every state until the largest change drops below
// theta or the sweep cap is reached. Every sweep reads only the previous
// table and writes a fresh one.
func (s *solver) iterate(m *Model, label string, op operator) (Values, int, float64, error) {
	s.metrics.Start(label, 0)

	values := s.start(m)
	delta := math.Inf(1)
	for sweep := 1; sweep <= s.maxSweeps; sweep++ {
		next := make(Values, len(values))
		delta = 0
		for _, state := range m.states {
			v := op(state, values)
			next[state] = v
			delta = math.Max(delta, math.Abs(values[state]-v))
		}
		values = next
		s.metrics.AddSweep(delta)
		log.Debug().Str("solver", label).Int("sweep", sweep).Float64("delta", delta).Msg("completed sweep")

		if delta < s.theta {
			return values, sweep, delta, nil
		}
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			return values, sweep, delta, fmt.Errorf("%s diverged at sweep %d: %w", label, sweep, ErrNonConvergence)
		}
	}
	return values, s.maxSweeps, delta, fmt.Errorf("%s still changing by %g after %d sweeps (threshold %g): %w",
		label, delta, s.maxSweeps, s.theta, ErrNonConvergence)
}
