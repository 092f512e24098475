// Package flow drives the tuning loop: run the pipeline stages in order,
// stop at the first failure, surface bottleneck findings, apply the one
// automatic adjustment wired for the failed stage, and retry until the
// pipeline succeeds or the iteration budget is exhausted.
package flow

import (
	"context"
	"fmt"

	"github.com/asicflow/flowpilot/internal/analyzer"
	"github.com/asicflow/flowpilot/internal/tuner"
	"github.com/asicflow/flowpilot/pkg/logger"
	"github.com/asicflow/flowpilot/pkg/models"
)

// State is the controller's position in its per-iteration state machine.
type State string

const (
	StateRunningStage  State = "running_stage"
	StateAnalyzing     State = "analyzing"
	StateTuning        State = "tuning"
	StateDoneSuccess   State = "done_success"
	StateDoneExhausted State = "done_exhausted"
)

const defaultMaxIterations = 3

// StageExecutor runs one pipeline stage to completion. Satisfied by
// *executor.Executor; tests inject a scripted fake.
type StageExecutor interface {
	RunStage(ctx context.Context, stage models.Stage) models.StageResult
}

// Recorder persists stage attempts. Satisfied by *history.Store.
type Recorder interface {
	Record(models.StageAttempt) (models.StageAttempt, error)
}

// tunerActions maps a failed stage kind to the automatic adjustment the
// controller applies before retrying. Adding a correction is a table
// edit. Only a routing failure has one wired: synthesis and placement
// findings stay advisory and their failures consume an iteration with no
// corrective action.
var tunerActions = map[models.Stage]func(*tuner.Tuner) error{
	models.StageRouting: (*tuner.Tuner).AdjustForRoutingCongestion,
}

// Options configures a Controller.
type Options struct {
	// RunTag labels every attempt of this run.
	RunTag string
	// MaxIterations bounds the loop; zero means the default of 3.
	MaxIterations int
	// Recorder, when set, persists every stage attempt.
	Recorder Recorder
}

// Controller owns one tuning run. It is single-threaded: stages are
// strictly sequential and the tuner's configuration is the only state
// carried across iterations.
type Controller struct {
	executor      StageExecutor
	tuner         *tuner.Tuner
	recorder      Recorder
	runTag        string
	maxIterations int

	state    State
	attempts []models.StageAttempt
	results  []models.StageResult
}

// New creates a controller over the given executor and tuner.
func New(exec StageExecutor, tn *tuner.Tuner, opts Options) *Controller {
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	return &Controller{
		executor:      exec,
		tuner:         tn,
		recorder:      opts.Recorder,
		runTag:        opts.RunTag,
		maxIterations: maxIterations,
		state:         StateRunningStage,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return c.state
}

// Results returns every stage result in execution order across the whole
// run, one entry per attempt, not deduplicated across iterations.
func (c *Controller) Results() []models.StageResult {
	return c.results
}

// Run executes the tuning loop and returns the aggregated summary.
// Exhausting the iteration budget is a normal terminal outcome, not an
// error; the only errors returned are adjustment-persistence failures.
func (c *Controller) Run(ctx context.Context) (*models.RunSummary, error) {
	outcome := models.OutcomeExhausted

	iteration := 0
	for iteration < c.maxIterations {
		iteration++
		logger.Info("iteration started",
			"run_tag", c.runTag, "iteration", iteration, "max_iterations", c.maxIterations)

		failedStage, failed := c.runStages(ctx, iteration)
		if !failed {
			outcome = models.OutcomeSuccess
			logger.Info("pipeline completed successfully", "iteration", iteration)
			break
		}

		c.state = StateTuning
		action, ok := tunerActions[failedStage]
		if !ok {
			logger.Warn("no automatic adjustment wired for failed stage; iteration consumed",
				"stage", failedStage, "iteration", iteration)
			continue
		}
		logger.Info("applying automatic adjustment", "stage", failedStage, "iteration", iteration)
		if err := action(c.tuner); err != nil {
			return nil, fmt.Errorf("adjusting after %s failure: %w", failedStage, err)
		}
	}

	if outcome == models.OutcomeSuccess {
		c.state = StateDoneSuccess
	} else {
		c.state = StateDoneExhausted
		logger.Warn("iteration budget exhausted", "iterations", iteration)
	}

	summary := c.buildSummary(iteration, outcome)
	logSummary(summary)
	return summary, nil
}

// runStages runs the pipeline stages in their fixed order, stopping at
// the first failure. Successful stages are analyzed and their findings
// surfaced; surfacing never mutates configuration.
func (c *Controller) runStages(ctx context.Context, iteration int) (models.Stage, bool) {
	for i, stage := range models.Stages() {
		c.state = StateRunningStage
		logger.Debug("running stage", "iteration", iteration, "index", i, "stage", stage)

		result := c.executor.RunStage(ctx, stage)
		c.results = append(c.results, result)
		c.recordAttempt(iteration, result)

		if !result.Success {
			logger.Warn("stage failed", "iteration", iteration, "stage", stage, "errors", result.Errors)
			return stage, true
		}

		c.state = StateAnalyzing
		for _, suggestion := range analyzer.Analyze(result) {
			logger.Warn("bottleneck finding",
				"stage", stage, "severity", suggestion.Severity, "suggestion", suggestion.Message)
		}
	}
	return "", false
}

// recordAttempt appends the attempt to the in-memory history and, when a
// recorder is configured, persists it. A persistence failure is logged
// and never aborts the run.
func (c *Controller) recordAttempt(iteration int, result models.StageResult) {
	attempt := models.StageAttempt{
		RunTag:    c.runTag,
		Iteration: iteration,
		Stage:     result.Stage,
		Success:   result.Success,
		Duration:  result.Duration,
		Errors:    result.Errors,
	}
	if c.recorder != nil {
		stored, err := c.recorder.Record(attempt)
		if err != nil {
			logger.Error("failed to record stage attempt", "stage", result.Stage, "error", err)
		} else {
			attempt = stored
		}
	}
	c.attempts = append(c.attempts, attempt)
}
