// Package mdp describes finite Markov decision processes and solves them by
// dynamic programming: policy evaluation and value iteration.
package mdp

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

var (
	// ErrInvalidArgument reports a malformed model, policy or solver option.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNonConvergence reports a solver that hit its sweep cap above the threshold.
	ErrNonConvergence = errors.New("no convergence")
)

// Tolerance bounds how far a distribution may sum away from 1.
const Tolerance = 1e-6

type State string

type Action string

// Outcome is one possible result of taking an action in a state.
type Outcome struct {
	Probability float64
	Next        State
	Reward      float64
}

type Key struct {
	State  State
	Action Action
}

// RewardFunc pays for the transition state -> next under action.
type RewardFunc func(state State, action Action, next State) float64

// Model is an immutable finite MDP. Every action is available in every state.
type Model struct {
	states      []State
	actions     []Action
	transitions map[Key][]Outcome
}

// NewModel validates and copies the tables. States and actions keep their
// order, which fixes sweep order and tie-breaking.
func NewModel(states []State, actions []Action, transitions map[Key][]Outcome) (*Model, error) {
	if err := checkLabels(states, actions); err != nil {
		return nil, err
	}

	m := &Model{
		states:      slices.Clone(states),
		actions:     slices.Clone(actions),
		transitions: make(map[Key][]Outcome, len(states)*len(actions)),
	}
	for key, outcomes := range transitions {
		if !slices.Contains(states, key.State) {
			return nil, fmt.Errorf("transition from undefined state %q: %w", key.State, ErrInvalidArgument)
		}
		if !slices.Contains(actions, key.Action) {
			return nil, fmt.Errorf("transition on undefined action %q: %w", key.Action, ErrInvalidArgument)
		}
		if err := checkOutcomes(key, outcomes, states); err != nil {
			return nil, err
		}
		m.transitions[key] = slices.Clone(outcomes)
	}
	for _, s := range states {
		for _, a := range actions {
			if _, ok := m.transitions[Key{s, a}]; !ok {
				return nil, fmt.Errorf("no transition for (%q, %q): %w", s, a, ErrInvalidArgument)
			}
		}
	}
	return m, nil
}

// FromStateTable builds a model whose next-state distribution depends on the
// state only, with rewards supplied by reward.
func FromStateTable(states []State, actions []Action, table map[State]map[State]float64, reward RewardFunc) (*Model, error) {
	if reward == nil {
		return nil, fmt.Errorf("reward function is required: %w", ErrInvalidArgument)
	}
	if err := checkLabels(states, actions); err != nil {
		return nil, err
	}
	for s, row := range table {
		if !slices.Contains(states, s) {
			return nil, fmt.Errorf("transition from undefined state %q: %w", s, ErrInvalidArgument)
		}
		for next := range row {
			if !slices.Contains(states, next) {
				return nil, fmt.Errorf("transition from %q to undefined state %q: %w", s, next, ErrInvalidArgument)
			}
		}
	}

	transitions := make(map[Key][]Outcome, len(states)*len(actions))
	for _, s := range states {
		row, ok := table[s]
		if !ok {
			return nil, fmt.Errorf("no transitions from state %q: %w", s, ErrInvalidArgument)
		}
		for _, a := range actions {
			outcomes := make([]Outcome, 0, len(row))
			// Outcomes follow state order so sums are reproducible
			for _, next := range states {
				p, ok := row[next]
				if !ok {
					continue
				}
				outcomes = append(outcomes, Outcome{Probability: p, Next: next, Reward: reward(s, a, next)})
			}
			transitions[Key{s, a}] = outcomes
		}
	}
	return NewModel(states, actions, transitions)
}

func (m *Model) States() []State {
	return slices.Clone(m.states)
}

func (m *Model) Actions() []Action {
	return slices.Clone(m.actions)
}

// Outcomes returns the outcomes of taking action in state, nil if the pair is unknown.
func (m *Model) Outcomes(state State, action Action) []Outcome {
	return slices.Clone(m.transitions[Key{state, action}])
}

func (m *Model) HasState(state State) bool {
	return slices.Contains(m.states, state)
}

func (m *Model) HasAction(action Action) bool {
	return slices.Contains(m.actions, action)
}

// backup is the expected one-step return of action in state under values.
func (m *Model) backup(state State, action Action, values Values, gamma float64) float64 {
	q := 0.0
	for _, o := range m.transitions[Key{state, action}] {
		q += o.Probability * (o.Reward + gamma*values[o.Next])
	}
	return q
}

func checkLabels(states []State, actions []Action) error {
	if len(states) == 0 || len(actions) == 0 {
		return fmt.Errorf("model needs at least one state and one action: %w", ErrInvalidArgument)
	}
	for i, s := range states {
		if slices.Index(states, s) != i {
			return fmt.Errorf("duplicate state %q: %w", s, ErrInvalidArgument)
		}
	}
	for i, a := range actions {
		if slices.Index(actions, a) != i {
			return fmt.Errorf("duplicate action %q: %w", a, ErrInvalidArgument)
		}
	}
	return nil
}

func checkOutcomes(key Key, outcomes []Outcome, states []State) error {
	if len(outcomes) == 0 {
		return fmt.Errorf("no outcomes for (%q, %q): %w", key.State, key.Action, ErrInvalidArgument)
	}
	sum := 0.0
	for _, o := range outcomes {
		if !slices.Contains(states, o.Next) {
			return fmt.Errorf("(%q, %q) leads to undefined state %q: %w", key.State, key.Action, o.Next, ErrInvalidArgument)
		}
		if !(o.Probability >= 0) || math.IsInf(o.Probability, 0) {
			return fmt.Errorf("(%q, %q) has probability %v: %w", key.State, key.Action, o.Probability, ErrInvalidArgument)
		}
		if math.IsNaN(o.Reward) || math.IsInf(o.Reward, 0) {
			return fmt.Errorf("(%q, %q) has reward %v: %w", key.State, key.Action, o.Reward, ErrInvalidArgument)
		}
		sum += o.Probability
	}
	if math.Abs(sum-1) > Tolerance {
		return fmt.Errorf("probabilities of (%q, %q) sum to %v: %w", key.State, key.Action, sum, ErrInvalidArgument)
	}
	return nil
}
