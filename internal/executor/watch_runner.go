package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/asicflow/flowpilot/internal/report"
	"github.com/asicflow/flowpilot/pkg/logger"
	"github.com/asicflow/flowpilot/pkg/models"
	"github.com/asicflow/flowpilot/pkg/utils"
)

// WatchRunner waits for an externally driven flow to produce a stage's
// report files instead of invoking the toolchain itself. Callers bound the
// wait with a context deadline; without one, a flow that never produces
// the reports stalls the controller, which is exactly the gap the
// executor-level stage timeout closes.
type WatchRunner struct {
	poll utils.BackoffStrategy
}

// NewWatchRunner creates a detached stage runner. poll is the fallback
// polling strategy used when filesystem events are missed; nil means a
// linear ramp from 500ms up to 5s.
func NewWatchRunner(poll utils.BackoffStrategy) *WatchRunner {
	if poll == nil {
		poll = utils.NewLinearBackoff(500*time.Millisecond, 5*time.Second)
	}
	return &WatchRunner{poll: poll}
}

// RunStage blocks until the stage's expected report files exist under the
// design's newest run directory, or the context ends. Stages that produce
// no supported reports complete immediately; the external flow's own
// sequencing is the only signal available for them.
func (w *WatchRunner) RunStage(ctx context.Context, designPath, runTag string, stage models.Stage) error {
	expected := report.Expected(stage)
	if len(expected) == 0 {
		return nil
	}

	runDir, err := w.awaitRunDir(ctx, designPath)
	if err != nil {
		return err
	}
	logger.Debug("watching for stage reports", "stage", stage, "run_dir", runDir)
	return w.awaitFiles(ctx, runDir, expected)
}

// awaitRunDir waits until the design has at least one run directory.
func (w *WatchRunner) awaitRunDir(ctx context.Context, designPath string) (string, error) {
	for attempt := 0; ; attempt++ {
		runDir, err := LatestRunDir(designPath)
		if err == nil {
			return runDir, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for a run directory under %s: %w", designPath, ctx.Err())
		case <-time.After(w.poll.NextDelay(attempt)):
		}
	}
}

// awaitFiles waits until every relative path exists under runDir,
// combining fsnotify events on the run root with backoff polling. The
// poll covers files created in subdirectories the watch cannot see.
func (w *WatchRunner) awaitFiles(ctx context.Context, runDir string, relPaths []string) error {
	var events <-chan fsnotify.Event
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer watcher.Close()
		if addErr := watcher.Add(runDir); addErr == nil {
			events = watcher.Events
		}
	}

	for attempt := 0; ; attempt++ {
		if allExist(runDir, relPaths) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for stage reports under %s: %w", runDir, ctx.Err())
		case <-events:
		case <-time.After(w.poll.NextDelay(attempt)):
		}
	}
}

func allExist(runDir string, relPaths []string) bool {
	for _, rel := range relPaths {
		info, err := os.Stat(filepath.Join(runDir, rel))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}
