package mdp

import (
	"fmt"

	"banditlab/experiments/metrics"
	"banditlab/meta"
)

type Option func(s *solver)

type solver struct {
	gamma     float64
	theta     float64
	maxSweeps int
	initial   Values
	metrics   metrics.Collector
}

// WithDiscount sets gamma. A gamma of 1 only converges on models with absorbing structure.
func WithDiscount(gamma float64) Option {
	return func(s *solver) {
		s.gamma = gamma
	}
}

func WithThreshold(theta float64) Option {
	return func(s *solver) {
		s.theta = theta
	}
}

func WithMaxSweeps(sweeps int) Option {
	return func(s *solver) {
		s.maxSweeps = sweeps
	}
}

// WithInitialValues starts the sweeps from values instead of zeros.
func WithInitialValues(values Values) Option {
	return func(s *solver) {
		s.initial = values
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(s *solver) {
		if collector != nil {
			s.metrics = collector
		}
	}
}

func newSolver(m *Model, options []Option) (*solver, error) {
	if m == nil {
		return nil, fmt.Errorf("model is required: %w", ErrInvalidArgument)
	}
	s := &solver{ // Default values
		gamma:     meta.DefaultDiscount,
		theta:     meta.DefaultThreshold,
		maxSweeps: meta.MaxSweeps,
		metrics:   metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(s)
	}

	if !(s.gamma > 0 && s.gamma <= 1) {
		return nil, fmt.Errorf("discount %v outside (0, 1]: %w", s.gamma, ErrInvalidArgument)
	}
	if !(s.theta > 0) {
		return nil, fmt.Errorf("threshold %v must be positive: %w", s.theta, ErrInvalidArgument)
	}
	if s.maxSweeps < 1 {
		return nil, fmt.Errorf("sweep cap %d must be positive: %w", s.maxSweeps, ErrInvalidArgument)
	}
	for state := range s.initial {
		if !m.HasState(state) {
			return nil, fmt.Errorf("initial value for undefined state %q: %w", state, ErrInvalidArgument)
		}
	}
	return s, nil
}

// start returns the first value table: the initial values, zero elsewhere.
func (s *solver) start(m *Model) Values {
	values := make(Values, len(m.states))
	for _, state := range m.states {
		values[state] = s.initial[state]
	}
	return values
}
