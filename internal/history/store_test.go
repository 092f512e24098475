package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/asicflow/flowpilot/pkg/models"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openStore(t)

	first, err := s.Record(models.StageAttempt{
		RunTag:    "RUN_2024.01.01_12.00.00",
		Iteration: 1,
		Stage:     models.StageSynthesis,
		Success:   true,
		Duration:  1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected an ID to be assigned")
	}

	if _, err := s.Record(models.StageAttempt{
		RunTag:    "RUN_2024.01.01_12.00.00",
		Iteration: 1,
		Stage:     models.StageRouting,
		Success:   false,
		Duration:  42 * time.Second,
		Errors:    []string{"Found 5 DRC violations"},
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	attempts, err := s.Attempts("RUN_2024.01.01_12.00.00")
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if attempts[0].Stage != models.StageSynthesis || attempts[1].Stage != models.StageRouting {
		t.Fatalf("expected insertion order, got %s then %s", attempts[0].Stage, attempts[1].Stage)
	}
	if attempts[1].Success {
		t.Fatalf("expected routing attempt to be a failure")
	}
	if attempts[1].Duration != 42*time.Second {
		t.Fatalf("expected 42s duration, got %v", attempts[1].Duration)
	}
	if len(attempts[1].Errors) != 1 || attempts[1].Errors[0] != "Found 5 DRC violations" {
		t.Fatalf("expected errors to round-trip, got %v", attempts[1].Errors)
	}
}

func TestAttemptsScopedByRunTag(t *testing.T) {
	s := openStore(t)

	for _, tag := range []string{"RUN_A", "RUN_B"} {
		if _, err := s.Record(models.StageAttempt{
			RunTag: tag, Iteration: 1, Stage: models.StageSynthesis, Success: true,
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	attempts, err := s.Attempts("RUN_A")
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(attempts) != 1 || attempts[0].RunTag != "RUN_A" {
		t.Fatalf("expected only RUN_A attempts, got %v", attempts)
	}
}

func TestAttemptsEmpty(t *testing.T) {
	s := openStore(t)
	attempts, err := s.Attempts("RUN_NONE")
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(attempts) != 0 {
		t.Fatalf("expected no attempts, got %d", len(attempts))
	}
}
