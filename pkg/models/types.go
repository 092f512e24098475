// Package models defines the normalized value objects shared across the
// pipeline: stage identifiers, per-family quality metrics, and per-attempt
// stage results. Parsers construct these from raw tool reports; analyzers
// and the iteration controller only ever see these types.
package models

import "time"

// Stage identifies one ordered phase of the build pipeline.
type Stage string

const (
	StageSynthesis Stage = "synthesis"
	StageFloorplan Stage = "floorplan"
	StagePlacement Stage = "placement"
	StageCTS       Stage = "cts"
	StageRouting   Stage = "routing"
	StageSignoff   Stage = "signoff"
)

// Stages returns all pipeline stages in execution order. Each stage depends
// on the previous stage's on-disk output, so this order is fixed.
func Stages() []Stage {
	return []Stage{
		StageSynthesis,
		StageFloorplan,
		StagePlacement,
		StageCTS,
		StageRouting,
		StageSignoff,
	}
}

// Valid reports whether s is one of the known pipeline stages.
func (s Stage) Valid() bool {
	switch s {
	case StageSynthesis, StageFloorplan, StagePlacement, StageCTS, StageRouting, StageSignoff:
		return true
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}

// TimingMeasured records which TimingMetrics fields were actually extracted
// from a report, so a legitimate zero is never conflated with "not measured".
type TimingMeasured struct {
	WNS               bool `json:"wns"`
	TNS               bool `json:"tns"`
	WHS               bool `json:"whs"`
	THS               bool `json:"ths"`
	CriticalPathDelay bool `json:"critical_path_delay"`
	ClockPeriod       bool `json:"clock_period"`
}

// TimingMetrics holds static-timing analysis results. Values are in the
// report's time units (nanoseconds for the supported report formats).
// Constructed once by a parser and never mutated afterwards.
type TimingMetrics struct {
	WNS               float64        `json:"wns"`
	TNS               float64        `json:"tns"`
	WHS               float64        `json:"whs"`
	THS               float64        `json:"ths"`
	CriticalPathDelay float64        `json:"critical_path_delay"`
	ClockPeriod       float64        `json:"clock_period"`
	Measured          TimingMeasured `json:"measured"`
}

// HasViolations reports whether any setup or hold constraint is violated.
// Hold slack only counts when it was actually measured; the base report
// format cannot derive it.
func (m TimingMetrics) HasViolations() bool {
	if m.WNS < 0 {
		return true
	}
	return m.Measured.WHS && m.WHS < 0
}

// AreaMeasured records which AreaMetrics fields were extracted from a report.
type AreaMeasured struct {
	TotalCells  bool `json:"total_cells"`
	TotalArea   bool `json:"total_area"`
	CoreArea    bool `json:"core_area"`
	DieArea     bool `json:"die_area"`
	Utilization bool `json:"utilization"`
}

// AreaMetrics holds area utilization results. Core/die area and utilization
// cannot be derived from synthesis-stage reports and stay unmeasured there.
type AreaMetrics struct {
	TotalCells  int          `json:"total_cells"`
	TotalArea   float64      `json:"total_area"`
	CoreArea    float64      `json:"core_area"`
	DieArea     float64      `json:"die_area"`
	Utilization float64      `json:"utilization"` // percentage, 0-100
	Measured    AreaMeasured `json:"measured"`
}

// RoutingMeasured records which RoutingMetrics fields were extracted from a
// report.
type RoutingMeasured struct {
	DRCViolations     bool `json:"drc_violations"`
	AntennaViolations bool `json:"antenna_violations"`
	WireLength        bool `json:"wire_length"`
	ViaCount          bool `json:"via_count"`
	CongestionScore   bool `json:"congestion_score"`
}

// RoutingMetrics holds routing quality results. A zero in an unmeasured
// field means "not measured", not "verified zero".
type RoutingMetrics struct {
	DRCViolations     int             `json:"drc_violations"`
	AntennaViolations int             `json:"antenna_violations"`
	WireLength        float64         `json:"wire_length"`
	ViaCount          int             `json:"via_count"`
	CongestionScore   float64         `json:"congestion_score"`
	Measured          RoutingMeasured `json:"measured"`
}

// StageResult is the outcome of one stage attempt. At most one metrics
// family is populated, depending on the stage kind. Created once per attempt
// and appended to the run history; never mutated after construction.
type StageResult struct {
	Stage    Stage           `json:"stage"`
	Success  bool            `json:"success"`
	Duration time.Duration   `json:"duration"`
	RunDir   string          `json:"run_dir,omitempty"`
	Timing   *TimingMetrics  `json:"timing,omitempty"`
	Area     *AreaMetrics    `json:"area,omitempty"`
	Routing  *RoutingMetrics `json:"routing,omitempty"`
	Errors   []string        `json:"errors,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Outcome is the terminal state of a full run.
type Outcome string

const (
	// OutcomeSuccess means every stage of an iteration passed.
	OutcomeSuccess Outcome = "success"
	// OutcomeExhausted means the iteration budget ran out before success.
	// This is a normal terminal outcome, not an error.
	OutcomeExhausted Outcome = "exhausted"
)

// StageAttempt is the persisted record of a single stage attempt.
type StageAttempt struct {
	ID        string        `json:"id"`
	RunTag    string        `json:"run_tag"`
	Iteration int           `json:"iteration"`
	Stage     Stage         `json:"stage"`
	Success   bool          `json:"success"`
	Duration  time.Duration `json:"duration"`
	Errors    []string      `json:"errors,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// DurationStats aggregates stage durations across a run, in seconds.
type DurationStats struct {
	Mean   float64 `json:"mean_s"`
	Median float64 `json:"median_s"`
	Max    float64 `json:"max_s"`
}

// RunSummary is the aggregated result of a full tuning run: every stage
// attempt in execution order across all iterations, not deduplicated.
type RunSummary struct {
	RunTag     string         `json:"run_tag"`
	Outcome    Outcome        `json:"outcome"`
	Iterations int            `json:"iterations"`
	Stages     int            `json:"stages"`
	Attempts   []StageAttempt `json:"attempts"`
	Durations  DurationStats  `json:"durations"`
}
