// Package tuner owns the persisted design configuration and the bounded
// parameter adjustments that close the loop between an observed failure
// and the next attempt. The in-memory copy is loaded once at construction
// and is the single source of truth across adjustments within a run; every
// adjustment rewrites the whole store (last writer wins, single writer).
package tuner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/asicflow/flowpilot/pkg/logger"
	"github.com/asicflow/flowpilot/pkg/utils"
)

// Design configuration keys recognized by the tuner.
const (
	KeyClockPeriod       = "CLOCK_PERIOD"
	KeySynthStrategy     = "SYNTH_STRATEGY"
	KeyPlacementDensity  = "PL_TARGET_DENSITY"
	KeyCoreUtil          = "FP_CORE_UTIL"
	KeyRoutingAdjustment = "GLB_RT_ADJUSTMENT"
	KeyDiodeInsertion    = "DIODE_INSERTION_STRATEGY"
)

// Defaults used when a key is absent from the store, and the bounds the
// adjustment formulas never cross.
const (
	DefaultClockPeriod      = 10.0
	DefaultPlacementDensity = 0.55
	DefaultCoreUtil         = 50.0

	MinPlacementDensity = 0.40
	MinCoreUtil         = 35.0

	// ClockRelaxFactor is the multiplicative clock-period relaxation
	// applied per timing adjustment.
	ClockRelaxFactor = 1.2
	// DensityStep and CoreUtilStep are the subtractive congestion steps.
	DensityStep  = 0.10
	CoreUtilStep = 10.0
	// CongestionRoutingAdjustment is set absolutely, not relatively.
	CongestionRoutingAdjustment = 0.20
	// DelayStrategy is the delay-oriented synthesis strategy.
	DelayStrategy = "DELAY 0"
)

// ConfigFileName is the design configuration file under the design root.
const ConfigFileName = "config.json"

// Tuner owns one design configuration store.
type Tuner struct {
	path   string
	config map[string]any
}

// New loads the design configuration eagerly from path. The store must
// exist; the tuner never invents a configuration from nothing.
func New(path string) (*Tuner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design config %s: %w", path, err)
	}
	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse design config %s: %w", path, err)
	}
	return &Tuner{path: path, config: cfg}, nil
}

// NewForDesign loads the configuration store of the design rooted at
// designPath.
func NewForDesign(designPath string) (*Tuner, error) {
	return New(filepath.Join(designPath, ConfigFileName))
}

// Float returns the numeric value for key, or def when the key is absent
// or not numeric.
func (t *Tuner) Float(key string, def float64) float64 {
	v, ok := t.config[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}

// String returns the string value for key, or def otherwise.
func (t *Tuner) String(key, def string) string {
	if s, ok := t.config[key].(string); ok {
		return s
	}
	return def
}

// AdjustForTimingViolation relaxes the clock period by 20% and switches
// synthesis to the delay-oriented strategy, then persists the store.
func (t *Tuner) AdjustForTimingViolation() error {
	period := t.Float(KeyClockPeriod, DefaultClockPeriod)
	relaxed := period * ClockRelaxFactor

	t.config[KeyClockPeriod] = relaxed
	t.config[KeySynthStrategy] = DelayStrategy

	logger.Info("adjusted for timing violation",
		"clock_period_from", period, "clock_period_to", relaxed,
		"synth_strategy", DelayStrategy)
	return t.save()
}

// AdjustForRoutingCongestion lowers placement density and core utilization
// by one bounded step and sets the routing adjustment factor absolutely,
// then persists the store. Repeated calls never cross the floors.
func (t *Tuner) AdjustForRoutingCongestion() error {
	density := t.Float(KeyPlacementDensity, DefaultPlacementDensity)
	newDensity := utils.MaxFloat64(MinPlacementDensity, density-DensityStep)

	util := t.Float(KeyCoreUtil, DefaultCoreUtil)
	newUtil := utils.MaxFloat64(MinCoreUtil, util-CoreUtilStep)

	t.config[KeyPlacementDensity] = newDensity
	t.config[KeyCoreUtil] = newUtil
	t.config[KeyRoutingAdjustment] = CongestionRoutingAdjustment

	logger.Info("adjusted for routing congestion",
		"pl_target_density_from", density, "pl_target_density_to", newDensity,
		"fp_core_util_from", util, "fp_core_util_to", newUtil,
		"glb_rt_adjustment", CongestionRoutingAdjustment)
	return t.save()
}

// save rewrites the whole store atomically: marshal to a temp file in the
// same directory, then rename over the original.
func (t *Tuner) save() error {
	data, err := json.MarshalIndent(t.config, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal design config: %w", err)
	}

	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write design config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp config file: %w", err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace design config %s: %w", t.path, err)
	}
	return nil
}
