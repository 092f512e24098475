// Package analyzer classifies stage results into bottleneck findings and
// proposes bounded parameter adjustments. Rules are pure functions of one
// StageResult, keyed by stage kind; the suggestions are advisory text.
// Which adjustments are actually applied automatically is decided by the
// iteration controller, not here.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/asicflow/flowpilot/internal/tuner"
	"github.com/asicflow/flowpilot/pkg/models"
)

// Severity ranks a suggestion.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Suggestion is one bottleneck finding with a proposed adjustment.
type Suggestion struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Rule evaluates one stage result and yields zero or more suggestions.
type Rule func(models.StageResult) []Suggestion

// LargeDesignCellCount is the cell count above which a design is
// considered large enough to strain routing.
const LargeDesignCellCount = 10000

// rules maps each stage kind to its rule set, in evaluation order.
// Adding a stage's rules is a table edit, not a branch edit.
var rules = map[models.Stage][]Rule{
	models.StageSynthesis: {synthesisTimingRule, synthesisAreaRule},
	models.StagePlacement: {placementOverflowRule, placementCongestionRule},
	models.StageRouting:   {routingDRCRule, routingAntennaRule},
}

// Analyze runs the stage-specific rules over a result and returns their
// suggestions in rule order. Stages without rules yield nothing.
func Analyze(result models.StageResult) []Suggestion {
	var out []Suggestion
	for _, rule := range rules[result.Stage] {
		out = append(out, rule(result)...)
	}
	return out
}

func synthesisTimingRule(result models.StageResult) []Suggestion {
	if result.Timing == nil || !result.Timing.HasViolations() {
		return nil
	}
	period := result.Timing.ClockPeriod
	return []Suggestion{{
		Severity: SeverityWarning,
		Message: fmt.Sprintf(
			"Timing violations detected (WNS=%.3fns): increase %s from %g to %.1f and set %s to '%s'",
			result.Timing.WNS, tuner.KeyClockPeriod, period, period*tuner.ClockRelaxFactor,
			tuner.KeySynthStrategy, tuner.DelayStrategy),
	}}
}

func synthesisAreaRule(result models.StageResult) []Suggestion {
	if result.Area == nil || result.Area.TotalCells <= LargeDesignCellCount {
		return nil
	}
	return []Suggestion{{
		Severity: SeverityWarning,
		Message: fmt.Sprintf(
			"Large design (%d cells): reduce %s to 40-45%% to ease routing",
			result.Area.TotalCells, tuner.KeyCoreUtil),
	}}
}

func placementOverflowRule(result models.StageResult) []Suggestion {
	var out []Suggestion
	for _, errText := range result.Errors {
		if strings.Contains(strings.ToLower(errText), "overflow") {
			out = append(out, Suggestion{
				Severity: SeverityWarning,
				Message: fmt.Sprintf(
					"Placement overflow detected: reduce %s by 0.05-0.10 and %s by 5-10%%",
					tuner.KeyPlacementDensity, tuner.KeyCoreUtil),
			})
		}
	}
	return out
}

func placementCongestionRule(result models.StageResult) []Suggestion {
	var out []Suggestion
	for _, errText := range result.Errors {
		if strings.Contains(strings.ToLower(errText), "congestion") {
			out = append(out, Suggestion{
				Severity: SeverityWarning,
				Message: fmt.Sprintf(
					"Routing congestion predicted: reduce %s to 0.45-0.50 and increase %s to 0.15-0.20",
					tuner.KeyPlacementDensity, tuner.KeyRoutingAdjustment),
			})
		}
	}
	return out
}

func routingDRCRule(result models.StageResult) []Suggestion {
	if result.Routing == nil || result.Routing.DRCViolations == 0 {
		return nil
	}
	return []Suggestion{{
		Severity: SeverityCritical,
		Message: fmt.Sprintf(
			"%d DRC violations found: reduce %s to 0.40-0.45, %s to 35-40%%, and increase %s to 0.20",
			result.Routing.DRCViolations, tuner.KeyPlacementDensity, tuner.KeyCoreUtil,
			tuner.KeyRoutingAdjustment),
	}}
}

func routingAntennaRule(result models.StageResult) []Suggestion {
	if result.Routing == nil || result.Routing.AntennaViolations == 0 {
		return nil
	}
	return []Suggestion{{
		Severity: SeverityWarning,
		Message: fmt.Sprintf(
			"%d antenna violations: ensure %s=3 in the design config",
			result.Routing.AntennaViolations, tuner.KeyDiodeInsertion),
	}}
}
