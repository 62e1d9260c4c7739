package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"banditlab/config"
	"banditlab/experiments"
	"banditlab/experiments/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	outputDir  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "banditlab",
		Short:        "Multi-armed bandit and MDP experiments",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Experiment config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "out", "o", "experiments", "Directory for reports, none if empty")

	rootCmd.AddCommand(banditCmd())
	rootCmd.AddCommand(mdpCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("experiment failed")
		stop()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

func banditCmd() *cobra.Command {
	var (
		seed        uint64
		steps       int
		runs        int
		goroutines  int
		chart       bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "bandit",
		Short: "Compare bandit strategies on one environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("seed") {
				cfg.Bandit.Seed = seed
			}
			if flags.Changed("steps") {
				cfg.Bandit.Steps = steps
			}
			if flags.Changed("runs") {
				cfg.Bandit.Runs = runs
			}
			if flags.Changed("goroutines") {
				cfg.Bandit.Goroutines = goroutines
			}

			options := []experiments.Option{
				experiments.WithGoroutines(cfg.Bandit.Goroutines),
				experiments.WithOutput(outputDir),
			}
			if chart {
				if outputDir == "" {
					return fmt.Errorf("--chart needs --out")
				}
				options = append(options, experiments.WithChart())
			}
			var exporter *metrics.Exporter
			if metricsFile != "" {
				exporter = metrics.NewExporter()
				options = append(options, experiments.WithExporter(exporter))
			}

			start := time.Now()
			report, err := experiments.RunBanditExperiment(cmd.Context(), cfg.Bandit, options...)
			if err != nil {
				return err
			}
			log.Info().Msgf("bandit experiment took %s", time.Since(start).Round(time.Millisecond))
			if report.Dir != "" {
				log.Info().Msgf("reports stored in %s", report.Dir)
			}

			if exporter != nil {
				if err := exporter.WriteFile(metricsFile); err != nil {
					return err
				}
				log.Info().Msgf("metrics stored in %s", metricsFile)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for the environment and runs")
	cmd.Flags().IntVar(&steps, "steps", 0, "Pulls per run")
	cmd.Flags().IntVar(&runs, "runs", 0, "Runs per strategy")
	cmd.Flags().IntVar(&goroutines, "goroutines", 0, "Concurrent runs")
	cmd.Flags().BoolVar(&chart, "chart", false, "Render an HTML comparison chart (requires --out)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	return cmd
}

func mdpCmd() *cobra.Command {
	var (
		world     string
		modelFile string
		discount  float64
		threshold float64
		maxSweeps int
	)

	cmd := &cobra.Command{
		Use:   "mdp",
		Short: "Evaluate a policy and solve an MDP by value iteration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("world") {
				cfg.MDP.World = world
				cfg.MDP.Model = nil
				cfg.MDP.ModelFile = ""
				cfg.MDP.Policy = nil
			}
			if flags.Changed("model") {
				cfg.MDP.ModelFile = modelFile
				cfg.MDP.Model = nil
				cfg.MDP.Policy = nil
			}
			if flags.Changed("discount") {
				cfg.MDP.Discount = discount
			}
			if flags.Changed("threshold") {
				cfg.MDP.Threshold = threshold
			}
			if flags.Changed("max-sweeps") {
				cfg.MDP.MaxSweeps = maxSweeps
			}

			report, err := experiments.RunMDPExperiment(cmd.Context(), cfg.MDP, experiments.WithOutput(outputDir))
			if err != nil {
				return err
			}
			if report.Dir != "" {
				log.Info().Msgf("reports stored in %s", report.Dir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&world, "world", "", "Built-in world (fantasy, weather)")
	cmd.Flags().StringVar(&modelFile, "model", "", "Model file (YAML)")
	cmd.Flags().Float64Var(&discount, "discount", 0, "Discount factor in (0, 1]")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Convergence threshold")
	cmd.Flags().IntVar(&maxSweeps, "max-sweeps", 0, "Sweep cap")
	return cmd
}
