package config

import (
	"os"
	"path/filepath"
	"testing"

	"banditlab/bandit"
	"banditlab/mdp"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("overriding defaults", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `
bandit:
  steps: 200
  strategies:
    - id: 1
      name: epsilon-greedy
      epsilon: 0.2
mdp:
  world: fantasy
  threshold: 0.0001
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		require.Equal(t, 200, cfg.Bandit.Steps)
		require.Equal(t, 20, cfg.Bandit.Runs, "Unset fields should keep their defaults")
		require.Len(t, cfg.Bandit.Strategies, 1, "Strategies should be replaced, not merged")
		require.NotNil(t, cfg.Bandit.Strategies[0].Epsilon)
		require.Equal(t, 0.2, *cfg.Bandit.Strategies[0].Epsilon)
		require.Equal(t, WorldFantasy, cfg.MDP.World)
		require.Equal(t, 0.0001, cfg.MDP.Threshold)
		require.Equal(t, 0.9, cfg.MDP.Discount)
	})

	t.Run("reporting missing and malformed files", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)

		_, err = Load(writeFile(t, "bad.yaml", "bandit: [1, 2"))
		require.Error(t, err)
	})
}

func TestBanditEnvironment(t *testing.T) {
	t.Run("drawing means from the seed", func(t *testing.T) {
		b := Default().Bandit
		first, err := b.Environment()
		require.NoError(t, err)
		second, err := b.Environment()
		require.NoError(t, err)

		require.Equal(t, 5, first.Arms())
		require.Equal(t, first.Means(), second.Means())
	})

	t.Run("using explicit means", func(t *testing.T) {
		b := Bandit{Means: []float64{0.1, 0.7}}
		env, err := b.Environment()
		require.NoError(t, err)

		require.Equal(t, 2, env.Arms())
		require.Equal(t, []float64{0.1, 0.1}, env.StdDevs(), "Std-devs should default")
	})

	t.Run("sizing the bandit from means in a file", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "means.yaml", `
bandit:
  means: [0.1, 0.7, 0.3]
`))
		require.NoError(t, err)
		env, err := cfg.Bandit.Environment()
		require.NoError(t, err)

		require.Equal(t, 3, env.Arms(), "Arm count should follow the means")
		require.Equal(t, []float64{0.1, 0.7, 0.3}, env.Means())
		require.Equal(t, []float64{0.1, 0.1, 0.1}, env.StdDevs())
	})

	t.Run("keeping std-devs when means are drawn", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "stddevs.yaml", `
bandit:
  std_devs: [5, 5, 5, 5]
`))
		require.NoError(t, err)
		env, err := cfg.Bandit.Environment()
		require.NoError(t, err)

		require.Equal(t, 4, env.Arms(), "Arm count should follow the std-devs")
		require.Equal(t, []float64{5, 5, 5, 5}, env.StdDevs(), "Configured std-devs should not be dropped")
		for _, mean := range env.Means() {
			require.True(t, mean >= 0 && mean < 1, "Drawn means should lie in [0, 1)")
		}

		drawn, err := Bandit{Arms: 4, Seed: cfg.Bandit.Seed}.Environment()
		require.NoError(t, err)
		require.Equal(t, drawn.Means(), env.Means(), "Means should be drawn from the seed either way")
	})

	t.Run("rejecting inconsistent arms", func(t *testing.T) {
		b := Bandit{Arms: 3, Means: []float64{0.1, 0.7}}
		_, err := b.Environment()
		require.ErrorIs(t, err, bandit.ErrInvalidArgument)

		b = Bandit{Arms: 5, StdDevs: []float64{1, 1, 1}}
		_, err = b.Environment()
		require.ErrorIs(t, err, bandit.ErrInvalidArgument, "Std-devs must match the arm count")
	})
}

func TestStrategyFor(t *testing.T) {
	t.Run("building the default strategies", func(t *testing.T) {
		for _, c := range Default().Bandit.Strategies {
			strategy, err := StrategyFor(c)
			require.NoError(t, err, "Default strategy %s should build", c.Name)
			require.Contains(t, strategy.Name(), c.Name)
		}
	})

	t.Run("filling unset parameters", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "strategies.yaml", `
bandit:
  strategies:
    - id: 1
      name: epsilon-greedy
    - id: 2
      name: explore-then-exploit
    - id: 3
      name: epsilon-greedy
      epsilon: 0
`))
		require.NoError(t, err)
		require.Nil(t, cfg.Bandit.Strategies[0].Epsilon, "Absent parameters should stay unset")

		greedy, err := StrategyFor(cfg.Bandit.Strategies[0])
		require.NoError(t, err)
		require.Equal(t, "epsilon-greedy(0.1)", greedy.Name(), "Epsilon should default to 0.1")

		explore, err := StrategyFor(cfg.Bandit.Strategies[1])
		require.NoError(t, err)
		require.Equal(t, "explore-then-exploit(100)", explore.Name(), "Exploration should default to 100 steps")

		zero, err := StrategyFor(cfg.Bandit.Strategies[2])
		require.NoError(t, err)
		require.Equal(t, "epsilon-greedy(0)", zero.Name(), "An explicit zero should be kept")
	})
}

func TestModelBuild(t *testing.T) {
	t.Run("building from transitions", func(t *testing.T) {
		path := writeFile(t, "model.yaml", `
states: [a, b]
actions: [go]
transitions:
  - state: a
    action: go
    outcomes:
      - {probability: 1, next: b, reward: 1}
  - state: b
    action: go
    outcomes:
      - {probability: 1, next: a, reward: 0}
`)
		model, err := LoadModel(path)
		require.NoError(t, err)
		m, err := model.Build()
		require.NoError(t, err)

		require.Equal(t, []mdp.Outcome{{Probability: 1, Next: "b", Reward: 1}}, m.Outcomes("a", "go"))
	})

	t.Run("building from a state table with rewards", func(t *testing.T) {
		model := &Model{
			States:     []string{"Rainy", "Sunny"},
			Actions:    []string{"Umbrella", "No Umbrella"},
			StateTable: map[string]map[string]float64{"Rainy": {"Rainy": 0.6, "Sunny": 0.4}, "Sunny": {"Sunny": 1}},
			Rewards: []Reward{
				{State: "Rainy", Action: "No Umbrella", Value: -10},
				{State: "Rainy", Action: "No Umbrella", Next: "Sunny", Value: -5},
			},
		}
		m, err := model.Build()
		require.NoError(t, err)

		require.Equal(t, []mdp.Outcome{
			{Probability: 0.6, Next: "Rainy", Reward: -10},
			{Probability: 0.4, Next: "Sunny", Reward: -5},
		}, m.Outcomes("Rainy", "No Umbrella"), "Exact rewards should beat wildcard ones")
		require.Equal(t, 0.0, m.Outcomes("Sunny", "Umbrella")[0].Reward, "Unlisted rewards are 0")

		solution, err := mdp.ValueIteration(m)
		require.NoError(t, err)
		require.Equal(t, mdp.Action("Umbrella"), solution.Policy["Rainy"])
	})

	t.Run("rejecting ambiguous models", func(t *testing.T) {
		model := &Model{
			States:      []string{"a"},
			Actions:     []string{"go"},
			Transitions: []Transition{{State: "a", Action: "go", Outcomes: []Outcome{{Probability: 1, Next: "a"}}}},
			StateTable:  map[string]map[string]float64{"a": {"a": 1}},
		}
		_, err := model.Build()
		require.ErrorIs(t, err, mdp.ErrInvalidArgument)
	})
}

func TestMDPBuild(t *testing.T) {
	t.Run("picking built-in worlds", func(t *testing.T) {
		m, err := MDP{World: WorldFantasy}.Build()
		require.NoError(t, err)
		require.True(t, m.HasState("Dungeon"))

		m, err = MDP{}.Build()
		require.NoError(t, err)
		require.True(t, m.HasState("Rainy"), "Weather should be the default world")

		_, err = MDP{World: "atlantis"}.Build()
		require.ErrorIs(t, err, mdp.ErrInvalidArgument)
	})

	t.Run("converting the evaluation policy", func(t *testing.T) {
		cfg := MDP{World: WorldWeather, Policy: map[string]map[string]float64{
			"Rainy":  {"Umbrella": 1},
			"Sunny":  {"No Umbrella": 1},
			"Cloudy": {"Umbrella": 0.5, "No Umbrella": 0.5},
		}}
		m, err := cfg.Build()
		require.NoError(t, err)

		policy := cfg.EvaluationPolicy(m)
		require.NoError(t, policy.Validate(m))
		require.Equal(t, 1.0, policy["Rainy"]["Umbrella"])

		require.Equal(t, mdp.UniformPolicy(m), MDP{}.EvaluationPolicy(m))
	})
}
