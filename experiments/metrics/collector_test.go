package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counting pulls per arm", func(t *testing.T) {
		c := NewCollector()
		c.Start("ucb", 3)
		for _, arm := range []int{0, 2, 2, 1, 2} {
			c.AddPull(arm)
		}
		m := c.Complete()

		require.Equal(t, "ucb", m.Label, "label should be kept")
		require.Equal(t, 5, m.Steps, "every pull should count as a step")
		require.Equal(t, []int{1, 1, 3}, m.Pulls, "pulls should be counted per arm")
		require.Zero(t, m.Sweeps, "a bandit run has no sweeps")
		require.False(t, m.StartTime.IsZero(), "start time should be set")
	})

	t.Run("recording sweeps and the last delta", func(t *testing.T) {
		c := NewCollector()
		c.Start("value-iteration", 0)
		c.AddSweep(1.5)
		c.AddSweep(0.25)
		m := c.Complete()

		require.Equal(t, 2, m.Sweeps, "two sweeps were added")
		require.Equal(t, 0.25, m.Delta, "delta should be the last sweep's")
		require.Empty(t, m.Pulls, "a solver run has no pulls")
	})

	t.Run("resetting on start", func(t *testing.T) {
		c := NewCollector()
		c.Start("first", 2)
		c.AddPull(0)
		c.AddSweep(1)
		c.Start("second", 2)
		m := c.Complete()

		require.Equal(t, "second", m.Label)
		require.Zero(t, m.Steps, "steps should be reset")
		require.Equal(t, []int{0, 0}, m.Pulls, "pulls should be reset")
		require.Zero(t, m.Sweeps, "sweeps should be reset")
	})

	t.Run("counting concurrent pulls", func(t *testing.T) {
		c := NewCollector()
		c.Start("concurrent", 4)
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					c.AddPull(i % 4)
				}
			}()
		}
		wg.Wait()
		m := c.Complete()

		require.Equal(t, 800, m.Steps, "no pull should be lost")
		require.Equal(t, []int{200, 200, 200, 200}, m.Pulls)
	})

	t.Run("ignoring everything in the dummy collector", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start("ignored", 2)
		c.AddPull(1)
		c.AddSweep(1)
		require.Equal(t, RunMetric{}, c.Complete(), "dummy collector should record nothing")
	})
}
