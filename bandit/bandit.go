// Package bandit simulates stochastic multi-armed bandits and the strategies
// that trade exploration against exploitation on them.
package bandit

import (
	"errors"
	"math"
)

// ErrInvalidArgument reports an out-of-range arm, parameter or budget.
var ErrInvalidArgument = errors.New("invalid argument")

// Smoothing is added to every pull count before dividing, including after
// the first pull, so unpulled arms estimate to 0.
const Smoothing = 1e-5

const CSquared = 2.0 // Exploration constant

// ucb1 = rewards/visits + sqrt(c^2*ln(N)/visits)
func ucb1(rewards float64, visits float64, c2LnN float64) float64 {
	if visits == 0 { // Prevent division by zero
		panic("cannot compute UCB1: 0 visits")
	}

	return rewards/visits + math.Sqrt(c2LnN/visits)
}
