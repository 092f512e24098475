package config

import (
	"strings"
	"testing"
	"time"
)

const validYAML = `
log_level: info
design_path: /work/designs/counter
max_iterations: 3
runner:
  mode: exec
  command: ["./flow.tcl", "-design", "{design}", "-tag", "{tag}", "-run", "{stage}"]
  stage_timeout: 45m
`

func TestParseConfigYAMLValid(t *testing.T) {
	cfg, err := ParseConfigYAMLString(validYAML)
	if err != nil {
		t.Fatalf("expected valid config, got error: %v", err)
	}
	if cfg.DesignPath != "/work/designs/counter" {
		t.Fatalf("expected design path to round-trip, got %s", cfg.DesignPath)
	}
	if cfg.MaxIterations != 3 {
		t.Fatalf("expected 3 iterations, got %d", cfg.MaxIterations)
	}
	if cfg.Runner.Timeout() != 45*time.Minute {
		t.Fatalf("expected 45m stage timeout, got %v", cfg.Runner.Timeout())
	}
}

func TestParseConfigYAMLDefaults(t *testing.T) {
	cfg, err := ParseConfigYAMLString(`
design_path: /work/designs/counter
runner:
  mode: detached
`)
	if err != nil {
		t.Fatalf("expected valid config, got error: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.MaxIterations != DefaultMaxIterations {
		t.Fatalf("expected default max iterations %d, got %d", DefaultMaxIterations, cfg.MaxIterations)
	}
	if cfg.Runner.Timeout() != 0 {
		t.Fatalf("expected unbounded stage timeout by default, got %v", cfg.Runner.Timeout())
	}
	if cfg.Runner.Poll() != 2*time.Second {
		t.Fatalf("expected default 2s poll interval, got %v", cfg.Runner.Poll())
	}
}

func TestParseConfigYAMLInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing design path",
			yaml:    "runner:\n  mode: detached\n",
			wantErr: "design_path",
		},
		{
			name:    "bad log level",
			yaml:    "log_level: loud\ndesign_path: /d\nrunner:\n  mode: detached\n",
			wantErr: "invalid log_level",
		},
		{
			name:    "negative iterations",
			yaml:    "design_path: /d\nmax_iterations: -1\nrunner:\n  mode: detached\n",
			wantErr: "max_iterations",
		},
		{
			name:    "unknown runner mode",
			yaml:    "design_path: /d\nrunner:\n  mode: teleport\n",
			wantErr: "runner.mode",
		},
		{
			name:    "exec mode without command",
			yaml:    "design_path: /d\nrunner:\n  mode: exec\n",
			wantErr: "runner.command",
		},
		{
			name:    "bad stage timeout",
			yaml:    "design_path: /d\nrunner:\n  mode: detached\n  stage_timeout: soon\n",
			wantErr: "stage_timeout",
		},
		{
			name:    "history without path",
			yaml:    "design_path: /d\nrunner:\n  mode: detached\nhistory: {}\n",
			wantErr: "history.path",
		},
		{
			name:    "not yaml",
			yaml:    "{{{",
			wantErr: "parse config yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfigYAMLString(tt.yaml)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}
