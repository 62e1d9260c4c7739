// meta/meta.go
package meta

// DefaultSeed seeds a run's random source when none is given.
const DefaultSeed = 42

// DefaultArms is the number of arms of the illustrative bandit.
const DefaultArms = 5

// DefaultStdDev is the per-arm standard deviation of the illustrative bandit.
const DefaultStdDev = 0.1

// DefaultSteps is the step budget of a bandit run.
const DefaultSteps = 1000

// DefaultExplore is the exploration length of explore-then-exploit.
const DefaultExplore = 100

// DefaultEpsilon is the exploration probability of epsilon-greedy.
const DefaultEpsilon = 0.1

// DefaultRuns is the number of seeded repetitions per strategy.
const DefaultRuns = 20

// GO_ROUTINES defines the number of goroutines to use.
const GO_ROUTINES = 8

// DefaultDiscount is the MDP discount factor.
const DefaultDiscount = 0.9

// DefaultThreshold is the convergence threshold of the MDP solvers.
const DefaultThreshold = 1e-6

// MaxSweeps caps the number of sweeps of the MDP solvers.
const MaxSweeps = 100000
