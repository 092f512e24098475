package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/asicflow/flowpilot/internal/executor"
	"github.com/asicflow/flowpilot/internal/flow"
	"github.com/asicflow/flowpilot/internal/history"
	"github.com/asicflow/flowpilot/internal/report"
	"github.com/asicflow/flowpilot/internal/tuner"
	"github.com/asicflow/flowpilot/pkg/config"
	"github.com/asicflow/flowpilot/pkg/logger"
	"github.com/asicflow/flowpilot/pkg/models"
	"github.com/asicflow/flowpilot/pkg/utils"
)

func main() {
	var configPath string
	var logLevel string
	var collectOnly bool

	flag.StringVar(&configPath, "config", "flowpilot.yaml", "path to the controller configuration file")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.BoolVar(&collectOnly, "collect", false, "parse the latest run's reports and exit without running the flow")
	flag.Parse()

	// .env is optional; it can carry FLOW_ROOT for local setups.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	if collectOnly {
		os.Exit(collect(cfg.DesignPath))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg))
}

// run wires the runner, executor, tuner and history store together and
// drives one tuning run. It returns the process exit code.
func run(ctx context.Context, cfg *config.Config) int {
	runTag := utils.GenerateRunTag()
	logger.Info("starting run", "design", cfg.DesignPath, "run_tag", runTag, "mode", cfg.Runner.Mode)

	var runner executor.StageRunner
	switch cfg.Runner.Mode {
	case config.RunnerModeDetached:
		runner = executor.NewWatchRunner(utils.NewConstantBackoff(cfg.Runner.Poll()))
	default:
		// {flow_root} resolves at startup; {design}/{tag}/{stage} resolve
		// per invocation inside the runner.
		command := make([]string, len(cfg.Runner.Command))
		for i, arg := range cfg.Runner.Command {
			command[i] = strings.ReplaceAll(arg, "{flow_root}", cfg.FlowRoot)
		}
		runner = executor.NewExecRunner(command)
	}
	exec := executor.New(cfg.DesignPath, runTag, runner, cfg.Runner.Timeout())

	tn, err := tuner.NewForDesign(cfg.DesignPath)
	if err != nil {
		logger.Error("loading design config", "error", err)
		return 1
	}

	opts := flow.Options{RunTag: runTag, MaxIterations: cfg.MaxIterations}
	if cfg.History != nil {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logger.Error("opening history store", "path", cfg.History.Path, "error", err)
			return 1
		}
		defer store.Close()
		opts.Recorder = store
	}

	summary, err := flow.New(exec, tn, opts).Run(ctx)
	if err != nil {
		logger.Error("run aborted", "error", err)
		return 1
	}
	if summary.Outcome != models.OutcomeSuccess {
		return 1
	}
	return 0
}

// collect parses whatever reports the latest run directory holds and
// logs the metrics, without invoking the toolchain.
func collect(designPath string) int {
	runDir, err := executor.LatestRunDir(designPath)
	if err != nil {
		logger.Error("locating latest run", "design", designPath, "error", err)
		return 1
	}
	logger.Info("collecting reports", "run_dir", runDir)

	metrics, errs := report.CollectAll(runDir)
	for _, e := range errs {
		logger.Warn("report issue", "detail", e)
	}
	if metrics.Area != nil {
		logger.Info("area metrics",
			"cells", metrics.Area.TotalCells, "total_area", metrics.Area.TotalArea)
	}
	if metrics.Timing != nil {
		logger.Info("timing metrics",
			"wns", metrics.Timing.WNS, "tns", metrics.Timing.TNS,
			"critical_path", metrics.Timing.CriticalPathDelay)
	}
	if metrics.Routing != nil {
		logger.Info("routing metrics", "drc_violations", metrics.Routing.DRCViolations)
	}
	return 0
}
