package experiments

import (
	"context"
	"fmt"

	"banditlab/bandit"
	"banditlab/config"
	"banditlab/experiments/metrics"
	"banditlab/mdp"
	"banditlab/meta"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Option func(r *runner)

type runner struct {
	goroutines int
	output     string // Root directory for reports, none if empty
	chart      bool
	exporter   *metrics.Exporter
}

func WithGoroutines(goroutines int) Option {
	return func(r *runner) {
		if goroutines > 0 {
			r.goroutines = goroutines
		}
	}
}

// WithOutput writes CSV reports under root.
func WithOutput(root string) Option {
	return func(r *runner) {
		r.output = root
	}
}

// WithChart adds an HTML comparison chart to the bandit reports. It needs WithOutput.
func WithChart() Option {
	return func(r *runner) {
		r.chart = true
	}
}

func WithExporter(exporter *metrics.Exporter) Option {
	return func(r *runner) {
		r.exporter = exporter
	}
}

func newRunner(options []Option) *runner {
	r := &runner{goroutines: meta.GO_ROUTINES}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *runner) observe(metric metrics.RunMetric) {
	if r.exporter != nil {
		r.exporter.Observe(metric)
	}
}

// StrategyReport aggregates the repeated runs of one strategy.
type StrategyReport struct {
	Config      metrics.StrategyConfig
	Name        string
	Mean        bandit.Trajectory // Mean cumulative reward per step
	Regrets     []float64         // Per run
	MeanRegret  float64
	RegretStdev float64
}

type BanditReport struct {
	Means      []float64
	BestArm    int
	Steps      int
	Strategies []StrategyReport
	Records    []metrics.RunRecord
	Dir        string // Report directory, empty if nothing was written
}

type runResult struct {
	trajectory bandit.Trajectory
	record     metrics.RunRecord
}

// RunBanditExperiment runs every configured strategy cfg.Runs times on one
// environment and compares their regret. Run i of every strategy uses the
// same seed.
func RunBanditExperiment(ctx context.Context, cfg config.Bandit, options ...Option) (*BanditReport, error) {
	r := newRunner(options)
	if r.chart && r.output == "" {
		return nil, fmt.Errorf("chart needs an output directory: %w", bandit.ErrInvalidArgument)
	}

	env, err := cfg.Environment()
	if err != nil {
		return nil, err
	}
	if cfg.Runs < 1 {
		return nil, fmt.Errorf("run count %d must be positive: %w", cfg.Runs, bandit.ErrInvalidArgument)
	}
	if len(cfg.Strategies) == 0 {
		return nil, fmt.Errorf("no strategies configured: %w", bandit.ErrInvalidArgument)
	}
	strategies := make([]bandit.Strategy, len(cfg.Strategies))
	for i, c := range cfg.Strategies {
		if strategies[i], err = config.StrategyFor(c); err != nil {
			return nil, err
		}
	}

	bestArm, bestMean := env.Best()
	log.Info().Msgf("starting bandit experiment with %d arms (best arm %d, mean %.3f)...", env.Arms(), bestArm, bestMean)

	// Each (strategy, run) writes only its own slot
	results := make([][]runResult, len(strategies))
	for i := range results {
		results[i] = make([]runResult, cfg.Runs)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.goroutines)
	for si, strategy := range strategies {
		si, strategy := si, strategy
		for run := 0; run < cfg.Runs; run++ {
			run := run
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				seed := cfg.Seed + 1 + uint64(run)
				collector := metrics.NewCollector()
				trajectory, err := bandit.Simulate(strategy, env, cfg.Steps, bandit.WithSeed(seed), bandit.WithCollector(collector))
				if err != nil {
					return err
				}
				regret, err := bandit.Regret(env, cfg.Steps, trajectory)
				if err != nil {
					return err
				}
				metric := collector.Complete()
				r.observe(metric)

				results[si][run] = runResult{
					trajectory: trajectory,
					record: metrics.RunRecord{
						Strategy: cfg.Strategies[si].ID,
						Run:      run + 1,
						Seed:     seed,
						Reward:   trajectory.Final(),
						Regret:   regret,
						Duration: metric.Duration,
					},
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &BanditReport{Means: env.Means(), BestArm: bestArm, Steps: cfg.Steps}
	for si, strategy := range strategies {
		sr := StrategyReport{
			Config:  cfg.Strategies[si],
			Name:    strategy.Name(),
			Mean:    make(bandit.Trajectory, cfg.Steps),
			Regrets: make([]float64, cfg.Runs),
		}
		for run, result := range results[si] {
			floats.Add(sr.Mean, result.trajectory)
			sr.Regrets[run] = result.record.Regret
			report.Records = append(report.Records, result.record)
		}
		floats.Scale(1/float64(cfg.Runs), sr.Mean)
		sr.MeanRegret, sr.RegretStdev = stat.MeanStdDev(sr.Regrets, nil)
		if cfg.Runs == 1 {
			sr.RegretStdev = 0
		}
		if r.exporter != nil {
			r.exporter.SetRegret(sr.Name, sr.MeanRegret)
		}
		log.Info().Msgf("regret - %s: %.2f (stdev %.2f over %d runs)", sr.Name, sr.MeanRegret, sr.RegretStdev, cfg.Runs)
		report.Strategies = append(report.Strategies, sr)
	}

	log.Info().Msg("completed bandit experiment")

	if r.output != "" {
		if err := r.writeBanditReport(report, cfg.Strategies); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (r *runner) writeBanditReport(report *BanditReport, configs []metrics.StrategyConfig) error {
	writer, err := metrics.NewWriter(r.output, "bandit")
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	report.Dir = writer.Dir()

	if err := writer.WriteStrategyConfigs(configs); err != nil {
		return fmt.Errorf("failed to store strategy configs: %w", err)
	}
	log.Info().Msg("stored strategy configs")

	if err := writer.WriteRunRecords(report.Records); err != nil {
		return fmt.Errorf("failed to write run records: %w", err)
	}
	log.Info().Msg("stored run records")

	names := make([]string, len(report.Strategies))
	trajectories := make([][]float64, len(report.Strategies))
	for i, s := range report.Strategies {
		names[i] = s.Name
		trajectories[i] = s.Mean
	}
	if err := writer.WriteTrajectories(names, trajectories); err != nil {
		return fmt.Errorf("failed to write trajectories: %w", err)
	}
	log.Info().Msg("stored trajectories")

	if r.chart {
		path, err := WriteChart(writer.Dir(), report)
		if err != nil {
			return err
		}
		log.Info().Msgf("stored chart at %s", path)
	}
	return nil
}

type MDPReport struct {
	States     []mdp.State
	Evaluation mdp.Result
	Solution   mdp.Solution
	Dir        string
}

// RunMDPExperiment evaluates the configured policy and solves the configured
// model by value iteration, side by side.
func RunMDPExperiment(ctx context.Context, cfg config.MDP, options ...Option) (*MDPReport, error) {
	r := newRunner(options)

	model, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	policy := cfg.EvaluationPolicy(model)
	report := &MDPReport{States: model.States()}

	log.Info().Msgf("starting mdp experiment with %d states and %d actions...", len(model.States()), len(model.Actions()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		collector := metrics.NewCollector()
		result, err := mdp.Evaluate(model, policy, append(cfg.Options(), mdp.WithCollector(collector))...)
		if err != nil {
			return fmt.Errorf("policy evaluation: %w", err)
		}
		r.observe(collector.Complete())
		report.Evaluation = result
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		collector := metrics.NewCollector()
		solution, err := mdp.ValueIteration(model, append(cfg.Options(), mdp.WithCollector(collector))...)
		if err != nil {
			return fmt.Errorf("value iteration: %w", err)
		}
		r.observe(collector.Complete())
		report.Solution = solution
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().Msgf("policy evaluation converged after %d sweeps", report.Evaluation.Sweeps)
	for _, s := range report.States {
		log.Info().Msgf("V(%s) = %.2f", s, report.Evaluation.Values[s])
	}
	log.Info().Msgf("value iteration converged after %d sweeps", report.Solution.Sweeps)
	for _, s := range report.States {
		log.Info().Msgf("V*(%s) = %.2f, policy: %s", s, report.Solution.Values[s], report.Solution.Policy[s])
	}

	if r.output != "" {
		if err := r.writeMDPReport(report); err != nil {
			return nil, err
		}
	}
	log.Info().Msg("completed mdp experiment")
	return report, nil
}

func (r *runner) writeMDPReport(report *MDPReport) error {
	writer, err := metrics.NewWriter(r.output, "mdp")
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	report.Dir = writer.Dir()

	values := make([]metrics.ValueRecord, 0, 2*len(report.States))
	policy := make([]metrics.PolicyRecord, 0, len(report.States))
	for _, s := range report.States {
		values = append(values, metrics.ValueRecord{Solver: "policy-evaluation", State: string(s), Value: report.Evaluation.Values[s]})
	}
	for _, s := range report.States {
		values = append(values, metrics.ValueRecord{Solver: "value-iteration", State: string(s), Value: report.Solution.Values[s]})
		policy = append(policy, metrics.PolicyRecord{State: string(s), Action: string(report.Solution.Policy[s])})
	}

	if err := writer.WriteValues(values); err != nil {
		return fmt.Errorf("failed to write values: %w", err)
	}
	log.Info().Msg("stored values")

	if err := writer.WritePolicy(policy); err != nil {
		return fmt.Errorf("failed to write policy: %w", err)
	}
	log.Info().Msg("stored policy")
	return nil
}

