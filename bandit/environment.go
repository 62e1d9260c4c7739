package bandit

import (
	"fmt"
	"math"

	"banditlab/meta"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Environment is a bandit whose arms pay Gaussian rewards around fixed means.
// It is immutable after construction and safe for concurrent pulls as long as
// every caller brings its own source.
type Environment struct {
	means   []float64
	stdDevs []float64
}

func NewEnvironment(arms int, means, stdDevs []float64) (*Environment, error) {
	if arms < 1 {
		return nil, fmt.Errorf("arm count %d must be positive: %w", arms, ErrInvalidArgument)
	}
	if len(means) != arms || len(stdDevs) != arms {
		return nil, fmt.Errorf("got %d means and %d std-devs for %d arms: %w", len(means), len(stdDevs), arms, ErrInvalidArgument)
	}
	for arm := 0; arm < arms; arm++ {
		if math.IsNaN(means[arm]) || math.IsInf(means[arm], 0) {
			return nil, fmt.Errorf("mean of arm %d is %v: %w", arm, means[arm], ErrInvalidArgument)
		}
		if !(stdDevs[arm] >= 0) || math.IsInf(stdDevs[arm], 0) {
			return nil, fmt.Errorf("std-dev of arm %d is %v: %w", arm, stdDevs[arm], ErrInvalidArgument)
		}
	}

	e := &Environment{
		means:   make([]float64, arms),
		stdDevs: make([]float64, arms),
	}
	copy(e.means, means)
	copy(e.stdDevs, stdDevs)
	return e, nil
}

// RandomEnvironment draws every mean once from Uniform(0, 1); std-devs are meta.DefaultStdDev.
func RandomEnvironment(arms int, src rand.Source) (*Environment, error) {
	if arms < 1 {
		return nil, fmt.Errorf("arm count %d must be positive: %w", arms, ErrInvalidArgument)
	}
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: src}
	means := make([]float64, arms)
	stdDevs := make([]float64, arms)
	for arm := range means {
		means[arm] = uniform.Rand()
		stdDevs[arm] = meta.DefaultStdDev
	}
	return NewEnvironment(arms, means, stdDevs)
}

func (e *Environment) Arms() int {
	return len(e.means)
}

func (e *Environment) Means() []float64 {
	return append([]float64(nil), e.means...)
}

func (e *Environment) StdDevs() []float64 {
	return append([]float64(nil), e.stdDevs...)
}

// Best returns the oracle arm and its mean, the lowest index on ties.
func (e *Environment) Best() (int, float64) {
	arm := floats.MaxIdx(e.means)
	return arm, e.means[arm]
}

// Pull draws one reward for arm from src.
func (e *Environment) Pull(src rand.Source, arm int) (float64, error) {
	if arm < 0 || arm >= len(e.means) {
		return 0, fmt.Errorf("arm %d outside [0, %d): %w", arm, len(e.means), ErrInvalidArgument)
	}
	normal := distuv.Normal{Mu: e.means[arm], Sigma: e.stdDevs[arm], Src: src}
	return normal.Rand(), nil
}
