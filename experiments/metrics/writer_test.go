package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func readTable(t *testing.T, dir, name string) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, name))
	require.NoError(t, err, "%s should exist", name)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err, "%s should be valid CSV", name)
	return rows
}

func TestWriter(t *testing.T) {
	t.Run("creating a run directory", func(t *testing.T) {
		root := t.TempDir()
		w, err := NewWriter(root, "bandit")
		require.NoError(t, err)

		rel, err := filepath.Rel(filepath.Join(root, "bandit"), w.Dir())
		require.NoError(t, err)
		require.NotContains(t, rel, string(filepath.Separator), "run directory should sit directly under the experiment name")
		info, err := os.Stat(w.Dir())
		require.NoError(t, err)
		require.True(t, info.IsDir())

		other, err := NewWriter(root, "bandit")
		require.NoError(t, err)
		require.NotEqual(t, w.Dir(), other.Dir(), "each writer should get its own directory")
	})

	t.Run("writing strategy configs and run records", func(t *testing.T) {
		w, err := NewWriter(t.TempDir(), "bandit")
		require.NoError(t, err)

		epsilon, explore := 0.1, 100
		require.NoError(t, w.WriteStrategyConfigs([]StrategyConfig{
			{ID: 1, Name: "epsilon-greedy", Epsilon: &epsilon},
			{ID: 2, Name: "explore-then-exploit", Explore: &explore},
			{ID: 3, Name: "ucb"},
		}))
		require.Equal(t, [][]string{
			{"id", "name", "epsilon", "explore"},
			{"1", "epsilon-greedy", "0.1", ""},
			{"2", "explore-then-exploit", "", "100"},
			{"3", "ucb", "", ""},
		}, readTable(t, w.Dir(), "strategy_configs.csv"), "Unset parameters should be blank")

		require.NoError(t, w.WriteRunRecords([]RunRecord{
			{Strategy: 1, Run: 1, Seed: 43, Reward: 12.5, Regret: 0.75, Duration: 2 * time.Millisecond},
		}))
		require.Equal(t, [][]string{
			{"strategy", "run", "seed", "reward", "regret", "duration"},
			{"1", "1", "43", "12.5", "0.75", "2ms"},
		}, readTable(t, w.Dir(), "run_records.csv"))
	})

	t.Run("writing trajectories", func(t *testing.T) {
		w, err := NewWriter(t.TempDir(), "bandit")
		require.NoError(t, err)

		require.NoError(t, w.WriteTrajectories([]string{"ucb", "exploration"}, [][]float64{{1, 2.5}, {0.5}}))
		require.Equal(t, [][]string{
			{"step", "ucb", "exploration"},
			{"1", "1", "0.5"},
			{"2", "2.5", ""},
		}, readTable(t, w.Dir(), "trajectories.csv"))

		require.Error(t, w.WriteTrajectories([]string{"ucb"}, nil), "names and trajectories must match")
	})

	t.Run("writing values and policy", func(t *testing.T) {
		w, err := NewWriter(t.TempDir(), "mdp")
		require.NoError(t, err)

		require.NoError(t, w.WriteValues([]ValueRecord{{Solver: "value-iteration", State: "Sunny", Value: 8.5}}))
		require.Equal(t, [][]string{
			{"solver", "state", "value"},
			{"value-iteration", "Sunny", "8.5"},
		}, readTable(t, w.Dir(), "values.csv"))

		require.NoError(t, w.WritePolicy([]PolicyRecord{{State: "Rainy", Action: "Umbrella"}}))
		require.Equal(t, [][]string{
			{"state", "action"},
			{"Rainy", "Umbrella"},
		}, readTable(t, w.Dir(), "policy.csv"))
	})
}
