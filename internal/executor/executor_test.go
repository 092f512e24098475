package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/asicflow/flowpilot/internal/report"
	"github.com/asicflow/flowpilot/pkg/models"
)

// fakeRunner scripts stage outcomes and optionally writes report files,
// standing in for the external toolchain.
type fakeRunner struct {
	err     error
	reports map[string]string // relative path -> content, written under designPath/runs/RUN_TEST
	blockCtx bool              // block until ctx is done
	calls    []models.Stage
}

func (f *fakeRunner) RunStage(ctx context.Context, designPath, runTag string, stage models.Stage) error {
	f.calls = append(f.calls, stage)
	if f.blockCtx {
		<-ctx.Done()
		return ctx.Err()
	}
	for rel, content := range f.reports {
		path := filepath.Join(designPath, "runs", "RUN_TEST", rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return f.err
}

func TestRunStageSuccessWithMetrics(t *testing.T) {
	design := t.TempDir()
	runner := &fakeRunner{reports: map[string]string{
		report.RoutingDRCReport: "[INFO] Total DRC violations: 2\n",
	}}
	e := New(design, "RUN_TEST", runner, 0)

	res := e.RunStage(context.Background(), models.StageRouting)
	if !res.Success {
		t.Fatalf("expected success, got errors: %v", res.Errors)
	}
	if res.Stage != models.StageRouting {
		t.Fatalf("expected routing stage result, got %s", res.Stage)
	}
	if res.Routing == nil || res.Routing.DRCViolations != 2 {
		t.Fatalf("expected parsed routing metrics, got %+v", res.Routing)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Found 2 DRC violations" {
		t.Fatalf("expected DRC summary error, got %v", res.Errors)
	}
	if res.RunDir == "" {
		t.Fatalf("expected run dir to be recorded")
	}
}

func TestRunStageFailureKeepsErrorText(t *testing.T) {
	design := t.TempDir()
	runner := &fakeRunner{err: errors.New("global placement failed: overflow 0.42 exceeds target")}
	e := New(design, "RUN_TEST", runner, 0)

	res := e.RunStage(context.Background(), models.StagePlacement)
	if res.Success {
		t.Fatalf("expected failure result")
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "overflow") {
		t.Fatalf("expected runner error text to be preserved, got %v", res.Errors)
	}
}

func TestRunStageNoRunDirIsMinimalResult(t *testing.T) {
	design := t.TempDir()
	e := New(design, "RUN_TEST", &fakeRunner{}, 0)

	res := e.RunStage(context.Background(), models.StageFloorplan)
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Errors)
	}
	if res.Timing != nil || res.Area != nil || res.Routing != nil {
		t.Fatalf("expected minimal result without metrics, got %+v", res)
	}
	if res.Duration < 0 {
		t.Fatalf("expected non-negative duration")
	}
}

func TestRunStageTimeout(t *testing.T) {
	design := t.TempDir()
	e := New(design, "RUN_TEST", &fakeRunner{blockCtx: true}, 20*time.Millisecond)

	res := e.RunStage(context.Background(), models.StageSynthesis)
	if res.Success {
		t.Fatalf("expected timeout to fail the stage")
	}
	if len(res.Errors) == 0 || !strings.Contains(res.Errors[0], "context deadline exceeded") {
		t.Fatalf("expected deadline error, got %v", res.Errors)
	}
}

func TestLatestRunDir(t *testing.T) {
	design := t.TempDir()
	runsDir := filepath.Join(design, "runs")
	older := filepath.Join(runsDir, "RUN_2024.01.01_10.00.00")
	newer := filepath.Join(runsDir, "RUN_2024.01.01_11.00.00")
	for _, dir := range []string{older, newer} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create run dir: %v", err)
		}
	}
	base := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, base, base); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(newer, base.Add(time.Minute), base.Add(time.Minute)); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got, err := LatestRunDir(design)
	if err != nil {
		t.Fatalf("expected run dir, got error: %v", err)
	}
	if got != newer {
		t.Fatalf("expected %s, got %s", newer, got)
	}
}

func TestLatestRunDirTieBrokenByName(t *testing.T) {
	design := t.TempDir()
	runsDir := filepath.Join(design, "runs")
	a := filepath.Join(runsDir, "RUN_A")
	b := filepath.Join(runsDir, "RUN_B")
	for _, dir := range []string{a, b} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create run dir: %v", err)
		}
	}
	at := time.Now().Add(-time.Hour)
	for _, dir := range []string{a, b} {
		if err := os.Chtimes(dir, at, at); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	got, err := LatestRunDir(design)
	if err != nil {
		t.Fatalf("expected run dir, got error: %v", err)
	}
	if got != b {
		t.Fatalf("expected lexicographically later dir on mtime tie, got %s", got)
	}
}

func TestLatestRunDirMissing(t *testing.T) {
	if _, err := LatestRunDir(t.TempDir()); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}

	// An empty runs dir is also "no runs".
	design := t.TempDir()
	if err := os.MkdirAll(filepath.Join(design, "runs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := LatestRunDir(design); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns for empty runs dir, got %v", err)
	}
}

func TestExpandCommand(t *testing.T) {
	argv := expandCommand(
		[]string{"./flow.tcl", "-design", "{design}", "-tag", "{tag}", "-run", "{stage}"},
		"/work/counter", "RUN_TEST", models.StageCTS,
	)
	want := []string{"./flow.tcl", "-design", "/work/counter", "-tag", "RUN_TEST", "-run", "cts"}
	if len(argv) != len(want) {
		t.Fatalf("expected %d args, got %d", len(want), len(argv))
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Fatalf("arg %d: expected %q, got %q", i, want[i], argv[i])
		}
	}
}

func TestExecRunnerEmptyCommand(t *testing.T) {
	r := NewExecRunner(nil)
	if err := r.RunStage(context.Background(), t.TempDir(), "RUN_TEST", models.StageSynthesis); !errors.Is(err, ErrNoCommand) {
		t.Fatalf("expected ErrNoCommand, got %v", err)
	}
}

func TestOutputTail(t *testing.T) {
	out := []byte("line1\n\nline2\nline3\nline4\nline5\nline6\n")
	tail := outputTail(out, 3)
	if tail != "line4 | line5 | line6" {
		t.Fatalf("expected last three lines, got %q", tail)
	}
}
