package metrics

import (
	"sync"
	"time"
)

// RunMetric summarises one simulation run or one solver invocation.
type RunMetric struct {
	Label     string
	Steps     int
	Pulls     []int // Per arm, empty for solvers
	Sweeps    int
	Delta     float64 // Last sweep's max value change
	StartTime time.Time
	Duration  time.Duration
}

type Collector interface {
	Start(label string, arms int)
	AddPull(arm int)
	AddSweep(delta float64)
	Complete() RunMetric
}

type collector struct {
	mu        sync.Mutex
	label     string
	startTime time.Time
	steps     int
	pulls     []int
	sweeps    int
	delta     float64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(label string, arms int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.label = label
	m.startTime = time.Now()
	m.steps = 0
	m.pulls = make([]int, arms)
	m.sweeps = 0
	m.delta = 0
}

func (m *collector) AddPull(arm int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.steps++
	if arm >= 0 && arm < len(m.pulls) {
		m.pulls[arm]++
	}
}

func (m *collector) AddSweep(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweeps++
	m.delta = delta
}

func (m *collector) Complete() RunMetric {
	m.mu.Lock()
	defer m.mu.Unlock()

	pulls := make([]int, len(m.pulls))
	copy(pulls, m.pulls)
	return RunMetric{
		Label:     m.label,
		Steps:     m.steps,
		Pulls:     pulls,
		Sweeps:    m.sweeps,
		Delta:     m.delta,
		StartTime: m.startTime,
		Duration:  time.Since(m.startTime),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(label string, arms int) {}
func (m *dummyCollector) AddPull(arm int)              {}
func (m *dummyCollector) AddSweep(delta float64)       {}
func (m *dummyCollector) Complete() RunMetric          { return RunMetric{} }
