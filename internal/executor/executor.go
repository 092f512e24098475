// Package executor runs pipeline stages through an external stage runner
// and assembles StageResults from the reports each run leaves on disk.
// Stage execution is strictly sequential: each stage depends on the
// previous stage's on-disk output.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/asicflow/flowpilot/internal/report"
	"github.com/asicflow/flowpilot/pkg/logger"
	"github.com/asicflow/flowpilot/pkg/models"
)

var (
	// ErrNoRuns means the design has no run directories yet.
	ErrNoRuns = errors.New("no run directories found")
	// ErrNoCommand means an exec runner was built without a command.
	ErrNoCommand = errors.New("runner command is empty")
)

// StageRunner is the external collaborator that executes one pipeline
// stage out-of-process. On a nil return the relevant report files exist
// under a discoverable run directory (or the stage produced none). A
// non-nil error is a stage failure, not a parse failure.
type StageRunner interface {
	RunStage(ctx context.Context, designPath, runTag string, stage models.Stage) error
}

// Executor drives single stage invocations for one design.
type Executor struct {
	designPath string
	runner     StageRunner
	runTag     string
	// timeout bounds one stage invocation; zero means unbounded, in
	// which case a stage that never returns stalls the whole run.
	timeout time.Duration
}

// New creates an executor for the design rooted at designPath.
func New(designPath, runTag string, runner StageRunner, timeout time.Duration) *Executor {
	return &Executor{
		designPath: designPath,
		runner:     runner,
		runTag:     runTag,
		timeout:    timeout,
	}
}

// RunStage invokes one stage through the external runner, blocks until it
// reports completion, locates the newest run directory, and builds a
// StageResult from whatever metrics the run produced. When no run
// directory exists the result carries only success and duration.
func (e *Executor) RunStage(ctx context.Context, stage models.Stage) models.StageResult {
	logger.Info("running stage", "stage", stage, "design", e.designPath, "tag", e.runTag)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	runErr := e.runner.RunStage(ctx, e.designPath, e.runTag, stage)
	duration := time.Since(start)

	result := models.StageResult{
		Stage:    stage,
		Success:  runErr == nil,
		Duration: duration,
	}
	if runErr != nil {
		result.Errors = append(result.Errors, runErr.Error())
		logger.Warn("stage failed", "stage", stage, "duration", duration, "error", runErr)
	}

	runDir, err := e.LatestRunDir()
	if err != nil {
		return result
	}
	result.RunDir = runDir

	collected, parseErrs := report.Collect(runDir, stage)
	result.Timing = collected.Timing
	result.Area = collected.Area
	result.Routing = collected.Routing
	result.Errors = append(result.Errors, parseErrs...)

	return result
}

// LatestRunDir returns the most recently modified run directory under the
// design's runs root, or ErrNoRuns when none exists. Equal modification
// times are broken lexicographically, later name wins.
func (e *Executor) LatestRunDir() (string, error) {
	return LatestRunDir(e.designPath)
}

// LatestRunDir finds the newest run directory under designPath/runs.
func LatestRunDir(designPath string) (string, error) {
	runsDir := filepath.Join(designPath, "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoRuns, runsDir)
	}

	var (
		bestName string
		bestTime time.Time
		found    bool
	)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		switch {
		case !found:
			bestName, bestTime, found = entry.Name(), info.ModTime(), true
		case info.ModTime().After(bestTime):
			bestName, bestTime = entry.Name(), info.ModTime()
		case info.ModTime().Equal(bestTime) && entry.Name() > bestName:
			bestName = entry.Name()
		}
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrNoRuns, runsDir)
	}
	return filepath.Join(runsDir, bestName), nil
}
