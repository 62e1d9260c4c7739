package mdp

import (
	"fmt"
	"math"
)

// Values maps every state to its estimated value.
type Values map[State]float64

func (v Values) clone() Values {
	c := make(Values, len(v))
	for s, value := range v {
		c[s] = value
	}
	return c
}

// Policy maps every state to a probability distribution over actions.
type Policy map[State]map[Action]float64

// DeterministicPolicy picks one action per state.
type DeterministicPolicy map[State]Action

// Stochastic turns d into a Policy with all mass on the chosen actions.
func (d DeterministicPolicy) Stochastic() Policy {
	p := make(Policy, len(d))
	for s, a := range d {
		p[s] = map[Action]float64{a: 1}
	}
	return p
}

// UniformPolicy chooses every action of m with equal probability.
func UniformPolicy(m *Model) Policy {
	p := make(Policy, len(m.states))
	for _, s := range m.states {
		dist := make(map[Action]float64, len(m.actions))
		for _, a := range m.actions {
			dist[a] = 1 / float64(len(m.actions))
		}
		p[s] = dist
	}
	return p
}

// Validate checks that p is a distribution over m's actions in every state of m.
func (p Policy) Validate(m *Model) error {
	for s := range p {
		if !m.HasState(s) {
			return fmt.Errorf("policy covers undefined state %q: %w", s, ErrInvalidArgument)
		}
	}
	for _, s := range m.states {
		dist, ok := p[s]
		if !ok {
			return fmt.Errorf("policy misses state %q: %w", s, ErrInvalidArgument)
		}
		sum := 0.0
		for a, prob := range dist {
			if !m.HasAction(a) {
				return fmt.Errorf("policy uses undefined action %q in %q: %w", a, s, ErrInvalidArgument)
			}
			if !(prob >= 0) || math.IsInf(prob, 0) {
				return fmt.Errorf("policy gives %q in %q probability %v: %w", a, s, prob, ErrInvalidArgument)
			}
			sum += prob
		}
		if math.Abs(sum-1) > Tolerance {
			return fmt.Errorf("policy in %q sums to %v: %w", s, sum, ErrInvalidArgument)
		}
	}
	return nil
}
