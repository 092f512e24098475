package utils

import (
	"fmt"
	"time"
)

// runTagLayout matches the toolchain's run directory naming, e.g.
// RUN_2024.01.01_12.00.00.
const runTagLayout = "2006.01.02_15.04.05"

// GenerateRunTag generates a run tag with a timestamp in the toolchain's
// run-directory naming convention.
func GenerateRunTag() string {
	return GenerateRunTagAt(time.Now())
}

// GenerateRunTagAt generates a run tag for the given time.
func GenerateRunTagAt(t time.Time) string {
	return fmt.Sprintf("RUN_%s", t.Format(runTagLayout))
}
