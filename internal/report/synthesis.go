package report

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/asicflow/flowpilot/pkg/models"
)

var (
	cellCountPattern = regexp.MustCompile(`Number of cells:\s+(\d+)`)
	chipAreaPattern  = regexp.MustCompile(`Chip area for module.*?:\s+([\d.]+)`)
)

// ParseSynthStat parses a synthesis statistics report into area metrics.
//
// Example report format:
//
//	=== counter ===
//	   Number of wires:                 15
//	   Number of cells:                 10
//	     sky130_fd_sc_hd__dff_1          8
//	     sky130_fd_sc_hd__xor2_1         2
//
//	Chip area for module '\counter': 50.123000
//
// Core area, die area and utilization cannot be derived from a synthesis
// report and stay unmeasured. A missing pattern leaves its field at the
// zero default without reporting an error; only a missing file is an error.
func ParseSynthStat(path string) (models.AreaMetrics, []string) {
	var m models.AreaMetrics

	content, ok := readReport(path)
	if !ok {
		return m, []string{fmt.Sprintf("synthesis report not found: %s", path)}
	}

	if match := cellCountPattern.FindStringSubmatch(content); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			m.TotalCells = n
			m.Measured.TotalCells = true
		}
	}

	if match := chipAreaPattern.FindStringSubmatch(content); match != nil {
		if area, err := strconv.ParseFloat(match[1], 64); err == nil {
			m.TotalArea = area
			m.Measured.TotalArea = true
		}
	}

	return m, nil
}
