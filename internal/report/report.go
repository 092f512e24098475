// Package report parses the toolchain's per-stage text reports into the
// normalized metrics model. Reports are free-text tool output with no
// guaranteed schema, so every parser degrades gracefully: a missing file
// yields zero-valued metrics plus a descriptive error string, and fields
// whose patterns do not match are left at their unmeasured defaults.
// Partial extraction is the common case during iterative tuning, not the
// exception.
package report

import "os"

// Fixed report locations under a run directory, as produced by the
// external toolchain.
const (
	SynthStatReport  = "reports/synthesis/1-synthesis.AREA_0.stat.rpt"
	TimingReport     = "reports/synthesis/sta.rpt"
	RoutingDRCReport = "reports/routing/drc_violations.rpt"
)

// readReport returns the report contents, or ok=false when the file does
// not exist or cannot be read.
func readReport(path string) (content string, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}
