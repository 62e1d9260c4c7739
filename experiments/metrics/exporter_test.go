package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestExporter(t *testing.T) {
	t.Run("observing bandit runs", func(t *testing.T) {
		e := NewExporter()
		e.Observe(RunMetric{Label: "ucb", Steps: 10, Pulls: []int{3, 7}, Duration: time.Millisecond})
		e.Observe(RunMetric{Label: "ucb", Steps: 10, Pulls: []int{1, 9}, Duration: time.Millisecond})

		require.Equal(t, 20.0, testutil.ToFloat64(e.steps.WithLabelValues("ucb")), "steps should add up over runs")
		require.Equal(t, 4.0, testutil.ToFloat64(e.pulls.WithLabelValues("ucb", "0")))
		require.Equal(t, 16.0, testutil.ToFloat64(e.pulls.WithLabelValues("ucb", "1")))
		require.Equal(t, 0, testutil.CollectAndCount(e.sweeps), "no solver series expected")
	})

	t.Run("observing solver runs", func(t *testing.T) {
		e := NewExporter()
		e.Observe(RunMetric{Label: "value-iteration", Sweeps: 42, Delta: 1e-7})

		require.Equal(t, 42.0, testutil.ToFloat64(e.sweeps.WithLabelValues("value-iteration")))
		require.Equal(t, 0, testutil.CollectAndCount(e.steps), "no bandit series expected")
	})

	t.Run("skipping unlabelled metrics", func(t *testing.T) {
		e := NewExporter()
		e.Observe(RunMetric{})
		require.Equal(t, 0, testutil.CollectAndCount(e.duration), "dummy metrics should not be observed")
	})

	t.Run("setting regret", func(t *testing.T) {
		e := NewExporter()
		e.SetRegret("exploration", 120.5)
		e.SetRegret("exploration", 110.25)
		require.Equal(t, 110.25, testutil.ToFloat64(e.regret.WithLabelValues("exploration")), "regret is a gauge")
	})

	t.Run("writing a text file", func(t *testing.T) {
		e := NewExporter()
		e.SetRegret("ucb", 3)
		path := filepath.Join(t.TempDir(), "metrics.prom")

		require.NoError(t, e.WriteFile(path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(data), `banditlab_bandit_regret{strategy="ucb"} 3`)
	})
}
