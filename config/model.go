package config

import (
	"fmt"
	"os"

	"banditlab/mdp"

	"gopkg.in/yaml.v3"
)

// Model is the file form of an MDP. Either Transitions, or StateTable with
// Rewards, describes the dynamics.
type Model struct {
	States      []string                      `yaml:"states"`
	Actions     []string                      `yaml:"actions"`
	Transitions []Transition                  `yaml:"transitions,omitempty"`
	StateTable  map[string]map[string]float64 `yaml:"state_table,omitempty"`
	Rewards     []Reward                      `yaml:"rewards,omitempty"`
}

type Transition struct {
	State    string    `yaml:"state"`
	Action   string    `yaml:"action"`
	Outcomes []Outcome `yaml:"outcomes"`
}

type Outcome struct {
	Probability float64 `yaml:"probability"`
	Next        string  `yaml:"next"`
	Reward      float64 `yaml:"reward"`
}

// Reward pays Value for taking Action in State. An empty Next matches every next state.
type Reward struct {
	State  string  `yaml:"state"`
	Action string  `yaml:"action"`
	Next   string  `yaml:"next,omitempty"`
	Value  float64 `yaml:"value"`
}

func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", path, err)
	}
	return &m, nil
}

func (m *Model) Build() (*mdp.Model, error) {
	states := make([]mdp.State, len(m.States))
	for i, s := range m.States {
		states[i] = mdp.State(s)
	}
	actions := make([]mdp.Action, len(m.Actions))
	for i, a := range m.Actions {
		actions[i] = mdp.Action(a)
	}

	if len(m.Transitions) > 0 {
		if len(m.StateTable) > 0 {
			return nil, fmt.Errorf("model sets both transitions and a state table: %w", mdp.ErrInvalidArgument)
		}
		transitions := make(map[mdp.Key][]mdp.Outcome, len(m.Transitions))
		for _, t := range m.Transitions {
			key := mdp.Key{State: mdp.State(t.State), Action: mdp.Action(t.Action)}
			if _, ok := transitions[key]; ok {
				return nil, fmt.Errorf("duplicate transition for (%q, %q): %w", t.State, t.Action, mdp.ErrInvalidArgument)
			}
			outcomes := make([]mdp.Outcome, len(t.Outcomes))
			for i, o := range t.Outcomes {
				outcomes[i] = mdp.Outcome{Probability: o.Probability, Next: mdp.State(o.Next), Reward: o.Reward}
			}
			transitions[key] = outcomes
		}
		return mdp.NewModel(states, actions, transitions)
	}

	table := make(map[mdp.State]map[mdp.State]float64, len(m.StateTable))
	for s, row := range m.StateTable {
		table[mdp.State(s)] = make(map[mdp.State]float64, len(row))
		for next, p := range row {
			table[mdp.State(s)][mdp.State(next)] = p
		}
	}
	return mdp.FromStateTable(states, actions, table, m.rewardFunc())
}

// rewardFunc prefers an exact (state, action, next) entry over a wildcard one; unlisted transitions pay 0.
func (m *Model) rewardFunc() mdp.RewardFunc {
	type key struct{ state, action, next string }
	rewards := make(map[key]float64, len(m.Rewards))
	for _, r := range m.Rewards {
		rewards[key{r.State, r.Action, r.Next}] = r.Value
	}
	return func(state mdp.State, action mdp.Action, next mdp.State) float64 {
		if v, ok := rewards[key{string(state), string(action), string(next)}]; ok {
			return v
		}
		return rewards[key{string(state), string(action), ""}]
	}
}
