package mdp

import "math"

// Solution is the outcome of value iteration.
type Solution struct {
	Values Values
	Policy DeterministicPolicy
	Sweeps int
	Delta  float64 // Change of the last sweep
}

// ValueIteration computes the optimal values of m by Bellman optimality
// sweeps and extracts the greedy policy from them.
func ValueIteration(m *Model, options ...Option) (Solution, error) {
	s, err := newSolver(m, options)
	if err != nil {
		return Solution{}, err
	}

	values, sweeps, delta, err := s.iterate(m, "value-iteration", func(state State, values Values) float64 {
		best := math.Inf(-1)
		for _, action := range m.actions {
			best = math.Max(best, m.backup(state, action, values, s.gamma))
		}
		return best
	})
	return Solution{
		Values: values,
		Policy: Greedy(m, values, s.gamma),
		Sweeps: sweeps,
		Delta:  delta,
	}, err
}

// QValues returns the one-step lookahead value of every action in every state.
func QValues(m *Model, values Values, gamma float64) map[State]map[Action]float64 {
	q := make(map[State]map[Action]float64, len(m.states))
	for _, state := range m.states {
		q[state] = make(map[Action]float64, len(m.actions))
		for _, action := range m.actions {
			q[state][action] = m.backup(state, action, values, gamma)
		}
	}
	return q
}

// Greedy picks, in every state, the action with the best lookahead value,
// the first in action order on ties.
func Greedy(m *Model, values Values, gamma float64) DeterministicPolicy {
	policy := make(DeterministicPolicy, len(m.states))
	for _, state := range m.states {
		bestAction := m.actions[0]
		best := math.Inf(-1)
		for _, action := range m.actions {
			if q := m.backup(state, action, values, gamma); q > best {
				best = q
				bestAction = action
			}
		}
		policy[state] = bestAction
	}
	return policy
}
