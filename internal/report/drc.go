package report

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/asicflow/flowpilot/pkg/models"
)

var (
	drcTotalPattern = regexp.MustCompile(`Total DRC violations:\s+(\d+)`)
	errorTagPattern = regexp.MustCompile(`\[ERROR\]`)
)

// ParseDRC parses a routing DRC violation report into routing metrics.
//
// Example report format:
//
//	[INFO] Total DRC violations: 5
//	[ERROR] Metal spacing violation at (100, 200)
//	[ERROR] Via enclosure violation at (150, 250)
//
// An explicit "Total DRC violations" count is preferred; when absent, the
// [ERROR]-tagged lines are counted instead. Antenna violations, wire
// length, via count and congestion are not derivable from this report
// format and stay unmeasured; a zero there means "not measured", not
// "verified zero".
func ParseDRC(path string) (models.RoutingMetrics, []string) {
	var m models.RoutingMetrics

	content, ok := readReport(path)
	if !ok {
		return m, []string{fmt.Sprintf("routing report not found: %s", path)}
	}

	var errors []string

	if match := drcTotalPattern.FindStringSubmatch(content); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			m.DRCViolations = n
			m.Measured.DRCViolations = true
		}
	} else {
		m.DRCViolations = len(errorTagPattern.FindAllString(content, -1))
		m.Measured.DRCViolations = true
	}

	if m.DRCViolations > 0 {
		errors = append(errors, fmt.Sprintf("Found %d DRC violations", m.DRCViolations))
	}

	return m, errors
}
