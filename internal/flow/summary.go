package flow

import (
	"github.com/montanaflynn/stats"

	"github.com/asicflow/flowpilot/pkg/logger"
	"github.com/asicflow/flowpilot/pkg/models"
	"github.com/asicflow/flowpilot/pkg/utils"
)

// buildSummary aggregates every attempt of the run into a RunSummary.
func (c *Controller) buildSummary(iterations int, outcome models.Outcome) *models.RunSummary {
	return &models.RunSummary{
		RunTag:     c.runTag,
		Outcome:    outcome,
		Iterations: iterations,
		Stages:     len(c.attempts),
		Attempts:   c.attempts,
		Durations:  durationStats(c.attempts),
	}
}

// durationStats computes mean, median and max attempt durations in
// seconds. An empty attempt list yields zeroes.
func durationStats(attempts []models.StageAttempt) models.DurationStats {
	if len(attempts) == 0 {
		return models.DurationStats{}
	}
	seconds := make([]float64, len(attempts))
	for i, attempt := range attempts {
		seconds[i] = attempt.Duration.Seconds()
	}
	mean, _ := stats.Mean(seconds)
	median, _ := stats.Median(seconds)
	max, _ := stats.Max(seconds)
	return models.DurationStats{Mean: mean, Median: median, Max: max}
}

// logSummary emits the run summary: one line per attempt plus totals.
func logSummary(summary *models.RunSummary) {
	for _, attempt := range summary.Attempts {
		status := "PASS"
		if !attempt.Success {
			status = "FAIL"
		}
		logger.Info("stage attempt",
			"iteration", attempt.Iteration,
			"stage", attempt.Stage,
			"status", status,
			"duration", utils.FormatDuration(attempt.Duration))
	}
	logger.Info("run summary",
		"run_tag", summary.RunTag,
		"outcome", summary.Outcome,
		"iterations", summary.Iterations,
		"stage_attempts", summary.Stages,
		"mean_stage_seconds", summary.Durations.Mean,
		"max_stage_seconds", summary.Durations.Max)
}
