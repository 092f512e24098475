package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// DefaultMaxIterations bounds the tuning loop when the config does
	// not say otherwise.
	DefaultMaxIterations = 3

	// RunnerModeExec runs each stage as a toolchain subprocess.
	RunnerModeExec = "exec"
	// RunnerModeDetached waits for an externally driven flow.
	RunnerModeDetached = "detached"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills unset fields with their documented defaults.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.Runner.Mode == "" {
		cfg.Runner.Mode = RunnerModeExec
	}
	if cfg.FlowRoot == "" {
		cfg.FlowRoot = os.Getenv("FLOW_ROOT")
	}
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.DesignPath == "" {
		return fmt.Errorf("design_path is required")
	}
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", cfg.MaxIterations)
	}

	switch cfg.Runner.Mode {
	case RunnerModeExec:
		if len(cfg.Runner.Command) == 0 {
			return fmt.Errorf("runner.command is required in exec mode")
		}
	case RunnerModeDetached:
	default:
		return fmt.Errorf("invalid runner.mode: %s (must be %s or %s)", cfg.Runner.Mode, RunnerModeExec, RunnerModeDetached)
	}

	if cfg.Runner.StageTimeout != "" {
		if _, err := time.ParseDuration(cfg.Runner.StageTimeout); err != nil {
			return fmt.Errorf("invalid runner.stage_timeout: %w", err)
		}
	}
	if cfg.Runner.PollInterval != "" {
		d, err := time.ParseDuration(cfg.Runner.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid runner.poll_interval: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("runner.poll_interval must be positive, got %s", cfg.Runner.PollInterval)
		}
	}

	if cfg.History != nil && cfg.History.Path == "" {
		return fmt.Errorf("history.path is required when history is configured")
	}

	return nil
}
