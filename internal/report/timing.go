package report

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/asicflow/flowpilot/pkg/models"
)

// AssumedClockPeriod is the placeholder clock period (ns) used when the
// report does not state one. It is a working assumption, never marked as
// measured.
const AssumedClockPeriod = 10.0

var slackPattern = regexp.MustCompile(`slack \((MET|VIOLATED)\)\s+(-?[\d.]+)`)

// ParseSTA parses a static-timing analysis report into timing metrics.
//
// The parser scans for every "slack (MET|VIOLATED) <value>" line across the
// report. WNS is the minimum of all matched slacks (most negative = worst);
// TNS is the sum of the strictly negative ones. Hold slack and the clock
// period are not derivable from this report format: they keep placeholder
// values and stay unmeasured rather than fabricating precision the report
// does not provide.
func ParseSTA(path string) (models.TimingMetrics, []string) {
	m := models.TimingMetrics{
		ClockPeriod:       AssumedClockPeriod,
		CriticalPathDelay: AssumedClockPeriod,
	}

	content, ok := readReport(path)
	if !ok {
		return m, []string{fmt.Sprintf("timing report not found: %s", path)}
	}

	wns := 0.0
	tns := 0.0
	found := false
	for _, match := range slackPattern.FindAllStringSubmatch(content, -1) {
		slack, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			continue
		}
		if !found || slack < wns {
			wns = slack
		}
		found = true
		if slack < 0 {
			tns += slack
		}
	}
	if found {
		m.WNS = wns
		m.TNS = tns
		m.Measured.WNS = true
		m.Measured.TNS = true
	}

	// Derived from the assumed period, so it stays unmeasured too.
	if m.WNS > 0 {
		m.CriticalPathDelay = AssumedClockPeriod - m.WNS
	}

	return m, nil
}
