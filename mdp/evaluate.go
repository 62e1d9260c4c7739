package mdp

// Result is the outcome of policy evaluation.
type Result struct {
	Values Values
	Sweeps int
	Delta  float64 // Change of the last sweep
}

// Evaluate computes the value of policy on m by repeated Bellman expectation
// sweeps. On ErrNonConvergence the last table is still returned.
func Evaluate(m *Model, policy Policy, options ...Option) (Result, error) {
	s, err := newSolver(m, options)
	if err != nil {
		return Result{}, err
	}
	if err := policy.Validate(m); err != nil {
		return Result{}, err
	}

	values, sweeps, delta, err := s.iterate(m, "policy-evaluation", func(state State, values Values) float64 {
		v := 0.0
		for _, action := range m.actions {
			if prob := policy[state][action]; prob != 0 {
				v += prob * m.backup(state, action, values, s.gamma)
			}
		}
		return v
	})
	return Result{Values: values, Sweeps: sweeps, Delta: delta}, err
}
