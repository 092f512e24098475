package executor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/asicflow/flowpilot/pkg/models"
)

// ExecRunner invokes the toolchain as a subprocess per stage, in the
// flow.tcl -design <path> -tag <tag> -run <stage> shape. The command is
// an argv template; the placeholders {design}, {tag} and {stage} are
// substituted per invocation.
type ExecRunner struct {
	command []string
}

// NewExecRunner creates a subprocess stage runner from an argv template.
func NewExecRunner(command []string) *ExecRunner {
	return &ExecRunner{command: command}
}

// RunStage runs the templated command and blocks until it exits. The tail
// of the combined output is folded into the returned error so failure
// text (e.g. overflow or congestion messages) reaches the analyzer.
func (r *ExecRunner) RunStage(ctx context.Context, designPath, runTag string, stage models.Stage) error {
	if len(r.command) == 0 {
		return ErrNoCommand
	}

	argv := expandCommand(r.command, designPath, runTag, stage)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = designPath

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("stage %s failed: %w: %s", stage, err, outputTail(output, 5))
	}
	return nil
}

// expandCommand substitutes the per-invocation placeholders in an argv
// template.
func expandCommand(template []string, designPath, runTag string, stage models.Stage) []string {
	replacer := strings.NewReplacer(
		"{design}", designPath,
		"{tag}", runTag,
		"{stage}", stage.String(),
	)
	argv := make([]string, len(template))
	for i, arg := range template {
		argv[i] = replacer.Replace(arg)
	}
	return argv
}

// outputTail returns the last n non-empty lines of subprocess output.
func outputTail(output []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			kept = append([]string{line}, kept...)
		}
	}
	return strings.Join(kept, " | ")
}
