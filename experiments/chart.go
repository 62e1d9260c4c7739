package experiments

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const ChartFile = "comparison.html"

// WriteChart renders the mean cumulative reward of every strategy and their
// mean regret into dir, returning the file path.
func WriteChart(dir string, report *BanditReport) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeInfographic,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Cumulative reward",
			Subtitle: fmt.Sprintf("%d arms, mean over runs", len(report.Means)),
		}),
	)

	steps := make([]string, report.Steps)
	for i := range steps {
		steps[i] = strconv.Itoa(i + 1)
	}
	line.SetXAxis(steps)
	for _, s := range report.Strategies {
		items := make([]opts.LineData, len(s.Mean))
		for i, v := range s.Mean {
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, items)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeInfographic,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Mean regret",
		}),
	)
	names := make([]string, len(report.Strategies))
	regrets := make([]opts.BarData, len(report.Strategies))
	for i, s := range report.Strategies {
		names[i] = s.Name
		regrets[i] = opts.BarData{Value: s.MeanRegret}
	}
	bar.SetXAxis(names).AddSeries("regret", regrets)

	page := components.NewPage()
	page.AddCharts(line, bar)

	path := filepath.Join(dir, ChartFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return path, nil
}
