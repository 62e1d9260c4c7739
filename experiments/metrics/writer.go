package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// StrategyConfig identifies one strategy of a bandit experiment. Nil
// parameters fall back to the defaults in meta.
type StrategyConfig struct {
	ID      int      `yaml:"id"`
	Name    string   `yaml:"name"`
	Epsilon *float64 `yaml:"epsilon,omitempty"`
	Explore *int     `yaml:"explore,omitempty"`
}

type RunRecord struct {
	Strategy int // StrategyConfig.ID
	Run      int
	Seed     uint64
	Reward   float64 // Final cumulative reward
	Regret   float64
	Duration time.Duration
}

type ValueRecord struct {
	Solver string
	State  string
	Value  float64
}

type PolicyRecord struct {
	State  string
	Action string
}

type Writer struct {
	baseDir string
}

func NewWriter(root, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp and a short run id
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	id := uuid.New().String()[:8]
	baseDir := filepath.Join(root, name, timestamp+"-"+id)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteStrategyConfigs(configs []StrategyConfig) error {
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Name,
			formatOptional(config.Epsilon, formatFloat),
			formatOptional(config.Explore, strconv.Itoa),
		})
	}
	return w.writeTable("strategy_configs.csv", []string{"id", "name", "epsilon", "explore"}, rows)
}

func (w *Writer) WriteRunRecords(records []RunRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Strategy),
			strconv.Itoa(record.Run),
			strconv.FormatUint(record.Seed, 10),
			formatFloat(record.Reward),
			formatFloat(record.Regret),
			record.Duration.String(),
		})
	}
	return w.writeTable("run_records.csv", []string{"strategy", "run", "seed", "reward", "regret", "duration"}, rows)
}

// WriteTrajectories stores one column of cumulative reward per strategy, one row per step.
func (w *Writer) WriteTrajectories(names []string, trajectories [][]float64) error {
	if len(names) != len(trajectories) {
		return fmt.Errorf("got %d trajectories for %d strategies", len(trajectories), len(names))
	}
	steps := 0
	for _, trajectory := range trajectories {
		steps = max(steps, len(trajectory))
	}

	rows := make([][]string, 0, steps)
	for step := 0; step < steps; step++ {
		row := []string{strconv.Itoa(step + 1)}
		for _, trajectory := range trajectories {
			if step < len(trajectory) {
				row = append(row, formatFloat(trajectory[step]))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return w.writeTable("trajectories.csv", append([]string{"step"}, names...), rows)
}

func (w *Writer) WriteValues(records []ValueRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{record.Solver, record.State, formatFloat(record.Value)})
	}
	return w.writeTable("values.csv", []string{"solver", "state", "value"}, rows)
}

func (w *Writer) WritePolicy(records []PolicyRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{record.State, record.Action})
	}
	return w.writeTable("policy.csv", []string{"state", "action"}, rows)
}

func (w *Writer) writeTable(name string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	// Write header
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}

	// Write each row
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", name, err)
	}
	return nil
}

// formatOptional leaves unset parameters blank.
func formatOptional[T any](v *T, format func(T) string) string {
	if v == nil {
		return ""
	}
	return format(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
