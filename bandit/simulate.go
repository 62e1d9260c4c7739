package bandit

import (
	"fmt"

	"banditlab/experiments/metrics"
	"banditlab/meta"

	"golang.org/x/exp/rand"
)

// Trajectory holds the cumulative reward after every step of a run.
type Trajectory []float64

// Final is the cumulative reward after the last step.
func (t Trajectory) Final() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1]
}

// Rewards recovers the per-step rewards.
func (t Trajectory) Rewards() []float64 {
	rewards := make([]float64, len(t))
	previous := 0.0
	for i, total := range t {
		rewards[i] = total - previous
		previous = total
	}
	return rewards
}

type Option func(r *run)

type run struct {
	src     rand.Source
	metrics metrics.Collector
}

// WithSeed gives the run a fresh source seeded with seed.
func WithSeed(seed uint64) Option {
	return func(r *run) {
		r.src = rand.NewSource(seed)
	}
}

// WithSource lets the run draw from src. Runs sharing a source are not independent.
func WithSource(src rand.Source) Option {
	return func(r *run) {
		if src != nil {
			r.src = src
		}
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(r *run) {
		if collector != nil {
			r.metrics = collector
		}
	}
}

// Simulate runs strategy on env for steps steps and returns the cumulative rewards.
func Simulate(strategy Strategy, env *Environment, steps int, options ...Option) (Trajectory, error) {
	trajectory, _, err := SimulateStats(strategy, env, steps, options...)
	return trajectory, err
}

// SimulateStats is Simulate that also hands back the run's final statistics.
func SimulateStats(strategy Strategy, env *Environment, steps int, options ...Option) (Trajectory, *Stats, error) {
	if strategy == nil || env == nil {
		return nil, nil, fmt.Errorf("strategy and environment are required: %w", ErrInvalidArgument)
	}
	if steps < 1 {
		return nil, nil, fmt.Errorf("step budget %d must be positive: %w", steps, ErrInvalidArgument)
	}
	if err := strategy.validate(steps); err != nil {
		return nil, nil, err
	}

	r := &run{ // Default values
		src:     rand.NewSource(meta.DefaultSeed),
		metrics: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(r)
	}
	rng := rand.New(r.src)

	stats := newStats(env.Arms())
	trajectory := make(Trajectory, 0, steps)
	total := 0.0

	r.metrics.Start(strategy.Name(), env.Arms())
	for step := 0; step < steps; step++ {
		arm := strategy.Select(stats, step, rng)
		reward, err := env.Pull(r.src, arm)
		if err != nil {
			return nil, nil, fmt.Errorf("%s at step %d: %w", strategy.Name(), step, err)
		}
		stats.record(arm, reward)
		total += reward
		trajectory = append(trajectory, total)
		r.metrics.AddPull(arm)
	}

	return trajectory, stats, nil
}

// Regret is the reward an oracle pulling the best arm every step would
// expect, minus what the trajectory achieved.
func Regret(env *Environment, steps int, trajectory Trajectory) (float64, error) {
	if env == nil {
		return 0, fmt.Errorf("environment is required: %w", ErrInvalidArgument)
	}
	if steps < 1 || len(trajectory) != steps {
		return 0, fmt.Errorf("trajectory of length %d for step budget %d: %w", len(trajectory), steps, ErrInvalidArgument)
	}
	_, best := env.Best()
	return float64(steps)*best - trajectory.Final(), nil
}
