package report

import (
	"os"
	"path/filepath"

	"github.com/asicflow/flowpilot/pkg/models"
)

// StageMetrics bundles the metrics families derivable from one run
// directory. A nil family means the stage does not produce that report.
type StageMetrics struct {
	Timing  *models.TimingMetrics
	Area    *models.AreaMetrics
	Routing *models.RoutingMetrics
}

// Collect parses the reports the given stage kind produces under runDir
// and returns the extracted metrics plus any recoverable parse errors.
// Stages without a supported report family return empty metrics and no
// errors.
func Collect(runDir string, stage models.Stage) (StageMetrics, []string) {
	var sm StageMetrics
	var errs []string

	switch stage {
	case models.StageSynthesis:
		area, areaErrs := ParseSynthStat(filepath.Join(runDir, SynthStatReport))
		sm.Area = &area
		errs = append(errs, areaErrs...)

		timing, timingErrs := ParseSTA(filepath.Join(runDir, TimingReport))
		sm.Timing = &timing
		errs = append(errs, timingErrs...)

	case models.StageRouting:
		routing, routingErrs := ParseDRC(filepath.Join(runDir, RoutingDRCReport))
		sm.Routing = &routing
		errs = append(errs, routingErrs...)
	}

	return sm, errs
}

// CollectAll parses every report family present under runDir. Unlike
// Collect, absent report files are silently skipped: this is a survey of
// whatever a run left behind, not a per-stage contract.
func CollectAll(runDir string) (StageMetrics, []string) {
	var sm StageMetrics
	var errs []string

	if statPath := filepath.Join(runDir, SynthStatReport); fileExists(statPath) {
		area, areaErrs := ParseSynthStat(statPath)
		sm.Area = &area
		errs = append(errs, areaErrs...)
	}
	if staPath := filepath.Join(runDir, TimingReport); fileExists(staPath) {
		timing, timingErrs := ParseSTA(staPath)
		sm.Timing = &timing
		errs = append(errs, timingErrs...)
	}
	if drcPath := filepath.Join(runDir, RoutingDRCReport); fileExists(drcPath) {
		routing, routingErrs := ParseDRC(drcPath)
		sm.Routing = &routing
		errs = append(errs, routingErrs...)
	}

	return sm, errs
}

// Expected returns the report files a stage is expected to produce,
// relative to its run directory. Stages without a supported report family
// return nil.
func Expected(stage models.Stage) []string {
	switch stage {
	case models.StageSynthesis:
		return []string{SynthStatReport, TimingReport}
	case models.StageRouting:
		return []string{RoutingDRCReport}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
