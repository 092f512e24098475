// Package config loads and validates the pipeline controller configuration.
// This is flowpilot's own configuration (which design to build, how to invoke
// the toolchain, iteration budget); the design configuration mutated by the
// tuner lives in the design's config.json and is owned by internal/tuner.
package config

import "time"

// Config is the top-level pipeline controller configuration.
type Config struct {
	LogLevel      string         `yaml:"log_level"`
	DesignPath    string         `yaml:"design_path"`
	FlowRoot      string         `yaml:"flow_root,omitempty"`
	MaxIterations int            `yaml:"max_iterations"`
	Runner        RunnerConfig   `yaml:"runner"`
	History       *HistoryConfig `yaml:"history,omitempty"`
}

// RunnerConfig describes how stages are executed.
type RunnerConfig struct {
	// Mode selects the stage runner: "exec" invokes the toolchain as a
	// subprocess, "detached" waits for an externally driven flow to
	// produce its reports.
	Mode string `yaml:"mode"`
	// Command is the argv template for exec mode. {flow_root} is
	// substituted at startup; {design}, {tag} and {stage} per invocation.
	Command []string `yaml:"command,omitempty"`
	// StageTimeout bounds a single stage invocation (e.g. "45m").
	// Empty means no bound: a stage that never returns stalls the run.
	StageTimeout string `yaml:"stage_timeout,omitempty"`
	// PollInterval is the detached-mode fallback polling interval
	// (e.g. "2s") used when filesystem events are missed.
	PollInterval string `yaml:"poll_interval,omitempty"`
}

// HistoryConfig configures the persistent stage-attempt log.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Timeout returns the parsed stage timeout, or zero when unbounded.
// Validation guarantees the string parses.
func (r *RunnerConfig) Timeout() time.Duration {
	if r.StageTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(r.StageTimeout)
	if err != nil {
		return 0
	}
	return d
}

// Poll returns the parsed detached-mode poll interval, defaulting to 2s.
func (r *RunnerConfig) Poll() time.Duration {
	if r.PollInterval == "" {
		return 2 * time.Second
	}
	d, err := time.ParseDuration(r.PollInterval)
	if err != nil {
		return 2 * time.Second
	}
	return d
}
