package bandit

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Strategy picks the arm to pull at a step from the run's statistics.
type Strategy interface {
	Name() string
	Select(stats *Stats, step int, rng *rand.Rand) int
	// validate checks the strategy's parameters against a step budget
	validate(steps int) error
}

// Params carries the tunables of the parameterised strategies.
type Params struct {
	Epsilon float64
	Explore int
}

const (
	NameExploitation       = "exploitation"
	NameExploration        = "exploration"
	NameEpsilonGreedy      = "epsilon-greedy"
	NameExploreThenExploit = "explore-then-exploit"
	NameUCB                = "ucb"
)

// ParseStrategy builds the strategy registered under name.
func ParseStrategy(name string, params Params) (Strategy, error) {
	switch name {
	case NameExploitation:
		return Exploitation(), nil
	case NameExploration:
		return Exploration(), nil
	case NameEpsilonGreedy:
		return EpsilonGreedy(params.Epsilon)
	case NameExploreThenExploit:
		return ExploreThenExploit(params.Explore)
	case NameUCB:
		return UCB(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", name, ErrInvalidArgument)
	}
}

type exploitation struct{}

// Exploitation always pulls the arm with the best estimate.
func Exploitation() Strategy {
	return exploitation{}
}

func (exploitation) Name() string { return NameExploitation }

func (exploitation) Select(stats *Stats, step int, rng *rand.Rand) int {
	return stats.Greedy()
}

func (exploitation) validate(steps int) error { return nil }

type exploration struct{}

// Exploration pulls a uniformly random arm every step.
func Exploration() Strategy {
	return exploration{}
}

func (exploration) Name() string { return NameExploration }

func (exploration) Select(stats *Stats, step int, rng *rand.Rand) int {
	return rng.Intn(stats.Arms())
}

func (exploration) validate(steps int) error { return nil }

type epsilonGreedy struct {
	epsilon float64
}

// EpsilonGreedy explores with probability epsilon and exploits otherwise.
func EpsilonGreedy(epsilon float64) (Strategy, error) {
	if !(epsilon >= 0 && epsilon <= 1) {
		return nil, fmt.Errorf("epsilon %v outside [0, 1]: %w", epsilon, ErrInvalidArgument)
	}
	return epsilonGreedy{epsilon: epsilon}, nil
}

func (e epsilonGreedy) Name() string {
	return fmt.Sprintf("%s(%g)", NameEpsilonGreedy, e.epsilon)
}

func (e epsilonGreedy) Select(stats *Stats, step int, rng *rand.Rand) int {
	// The coin is flipped every step, even for epsilon 0
	if rng.Float64() < e.epsilon {
		return rng.Intn(stats.Arms())
	}
	return stats.Greedy()
}

func (e epsilonGreedy) validate(steps int) error { return nil }

type exploreThenExploit struct {
	explore int
}

// ExploreThenExploit explores for the first explore steps, then exploits.
func ExploreThenExploit(explore int) (Strategy, error) {
	if explore < 0 {
		return nil, fmt.Errorf("exploration length %d is negative: %w", explore, ErrInvalidArgument)
	}
	return exploreThenExploit{explore: explore}, nil
}

func (e exploreThenExploit) Name() string {
	return fmt.Sprintf("%s(%d)", NameExploreThenExploit, e.explore)
}

func (e exploreThenExploit) Select(stats *Stats, step int, rng *rand.Rand) int {
	if step < e.explore {
		return rng.Intn(stats.Arms())
	}
	return stats.Greedy()
}

func (e exploreThenExploit) validate(steps int) error {
	if e.explore > steps {
		return fmt.Errorf("exploration length %d exceeds step budget %d: %w", e.explore, steps, ErrInvalidArgument)
	}
	return nil
}

type ucb struct{}

// UCB pulls every arm once in index order, then the arm with the highest
// upper confidence bound.
func UCB() Strategy {
	return ucb{}
}

func (ucb) Name() string { return NameUCB }

func (ucb) Select(stats *Stats, step int, rng *rand.Rand) int {
	if step < stats.Arms() {
		return step
	}

	c2LnN := CSquared * math.Log(float64(step+1))
	scores := make([]float64, stats.Arms())
	for arm := range scores {
		scores[arm] = ucb1(stats.Sum(arm), float64(stats.Count(arm))+Smoothing, c2LnN)
	}
	return floats.MaxIdx(scores)
}

func (ucb) validate(steps int) error { return nil }
