// Package config loads experiment settings and MDP models from YAML.
package config

import (
	"fmt"
	"os"

	"banditlab/bandit"
	"banditlab/experiments/metrics"
	"banditlab/mdp"
	"banditlab/meta"

	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Bandit Bandit `yaml:"bandit"`
	MDP    MDP    `yaml:"mdp"`
}

// Bandit configures a strategy comparison. Means are drawn from Seed when omitted.
type Bandit struct {
	Arms       int                      `yaml:"arms"`
	Means      []float64                `yaml:"means,omitempty"`
	StdDevs    []float64                `yaml:"std_devs,omitempty"`
	Steps      int                      `yaml:"steps"`
	Runs       int                      `yaml:"runs"`
	Seed       uint64                   `yaml:"seed"`
	Goroutines int                      `yaml:"goroutines"`
	Strategies []metrics.StrategyConfig `yaml:"strategies"`
}

// MDP configures the solvers. Model takes precedence over ModelFile, which
// takes precedence over World.
type MDP struct {
	World     string                        `yaml:"world"`
	ModelFile string                        `yaml:"model_file,omitempty"`
	Model     *Model                        `yaml:"model,omitempty"`
	Policy    map[string]map[string]float64 `yaml:"policy,omitempty"`
	Discount  float64                       `yaml:"discount"`
	Threshold float64                       `yaml:"threshold"`
	MaxSweeps int                           `yaml:"max_sweeps"`
}

const (
	WorldFantasy = "fantasy"
	WorldWeather = "weather"
)

// Default compares the five strategies on five arms over a thousand steps.
// Arms stays zero so that means or std-devs from a file decide the arm count.
func Default() *Config {
	epsilon, explore := meta.DefaultEpsilon, meta.DefaultExplore
	return &Config{
		Bandit: Bandit{
			Steps:      meta.DefaultSteps,
			Runs:       meta.DefaultRuns,
			Seed:       meta.DefaultSeed,
			Goroutines: meta.GO_ROUTINES,
			Strategies: []metrics.StrategyConfig{
				{ID: 1, Name: bandit.NameExploitation},
				{ID: 2, Name: bandit.NameExploration},
				{ID: 3, Name: bandit.NameExploreThenExploit, Explore: &explore},
				{ID: 4, Name: bandit.NameEpsilonGreedy, Epsilon: &epsilon},
				{ID: 5, Name: bandit.NameUCB},
			},
		},
		MDP: MDP{
			World:     WorldWeather,
			Discount:  meta.DefaultDiscount,
			Threshold: meta.DefaultThreshold,
			MaxSweeps: meta.MaxSweeps,
		},
	}
}

// Load reads path over the defaults, so a file only names what it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Environment builds the configured bandit, drawing means from Seed if none
// are given. The arm count comes from Arms, else from Means or StdDevs, else
// meta.DefaultArms.
func (b Bandit) Environment() (*bandit.Environment, error) {
	arms := b.Arms
	switch {
	case arms != 0:
	case len(b.Means) > 0:
		arms = len(b.Means)
	case len(b.StdDevs) > 0:
		arms = len(b.StdDevs)
	default:
		arms = meta.DefaultArms
	}

	means := b.Means
	if len(means) == 0 {
		env, err := bandit.RandomEnvironment(arms, rand.NewSource(b.Seed))
		if err != nil {
			return nil, err
		}
		if len(b.StdDevs) == 0 {
			return env, nil
		}
		means = env.Means()
	}
	stdDevs := b.StdDevs
	if len(stdDevs) == 0 {
		stdDevs = make([]float64, len(means))
		for i := range stdDevs {
			stdDevs[i] = meta.DefaultStdDev
		}
	}
	return bandit.NewEnvironment(arms, means, stdDevs)
}

// StrategyFor builds the strategy described by c, filling unset parameters
// from meta.
func StrategyFor(c metrics.StrategyConfig) (bandit.Strategy, error) {
	params := bandit.Params{Epsilon: meta.DefaultEpsilon, Explore: meta.DefaultExplore}
	if c.Epsilon != nil {
		params.Epsilon = *c.Epsilon
	}
	if c.Explore != nil {
		params.Explore = *c.Explore
	}
	return bandit.ParseStrategy(c.Name, params)
}

// Build returns the configured model.
func (m MDP) Build() (*mdp.Model, error) {
	if m.Model != nil {
		return m.Model.Build()
	}
	if m.ModelFile != "" {
		model, err := LoadModel(m.ModelFile)
		if err != nil {
			return nil, err
		}
		return model.Build()
	}
	switch m.World {
	case WorldFantasy:
		return mdp.Fantasy(), nil
	case WorldWeather, "":
		return mdp.Weather(), nil
	default:
		return nil, fmt.Errorf("unknown world %q: %w", m.World, mdp.ErrInvalidArgument)
	}
}

// EvaluationPolicy returns the configured policy, uniform when none is set.
func (m MDP) EvaluationPolicy(model *mdp.Model) mdp.Policy {
	if len(m.Policy) == 0 {
		return mdp.UniformPolicy(model)
	}
	policy := make(mdp.Policy, len(m.Policy))
	for s, dist := range m.Policy {
		policy[mdp.State(s)] = make(map[mdp.Action]float64, len(dist))
		for a, p := range dist {
			policy[mdp.State(s)][mdp.Action(a)] = p
		}
	}
	return policy
}

// Options turns the solver settings into mdp options.
func (m MDP) Options() []mdp.Option {
	return []mdp.Option{
		mdp.WithDiscount(m.Discount),
		mdp.WithThreshold(m.Threshold),
		mdp.WithMaxSweeps(m.MaxSweeps),
	}
}
