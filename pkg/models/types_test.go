package models

import "testing"

func TestStagesOrder(t *testing.T) {
	want := []Stage{
		StageSynthesis,
		StageFloorplan,
		StagePlacement,
		StageCTS,
		StageRouting,
		StageSignoff,
	}
	got := Stages()
	if len(got) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(got))
	}
	for i, s := range want {
		if got[i] != s {
			t.Fatalf("stage %d: expected %s, got %s", i, s, got[i])
		}
	}
}

func TestStageValid(t *testing.T) {
	for _, s := range Stages() {
		if !s.Valid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if Stage("layout").Valid() {
		t.Fatalf("expected unknown stage to be invalid")
	}
}

func TestTimingHasViolations(t *testing.T) {
	tests := []struct {
		name string
		m    TimingMetrics
		want bool
	}{
		{
			name: "no violations",
			m:    TimingMetrics{WNS: 1.05, Measured: TimingMeasured{WNS: true}},
			want: false,
		},
		{
			name: "negative setup slack",
			m:    TimingMetrics{WNS: -0.42, Measured: TimingMeasured{WNS: true}},
			want: true,
		},
		{
			name: "negative hold slack when measured",
			m:    TimingMetrics{WNS: 0.5, WHS: -0.1, Measured: TimingMeasured{WNS: true, WHS: true}},
			want: true,
		},
		{
			name: "negative hold slack ignored when unmeasured",
			m:    TimingMetrics{WNS: 0.5, WHS: -0.1, Measured: TimingMeasured{WNS: true}},
			want: false,
		},
		{
			name: "zero slack is met",
			m:    TimingMetrics{WNS: 0, Measured: TimingMeasured{WNS: true}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.HasViolations(); got != tt.want {
				t.Fatalf("HasViolations() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnmeasuredZeroIsNotVerifiedZero(t *testing.T) {
	// A zero-valued routing metrics object with no measurements must be
	// distinguishable from a report that really measured zero violations.
	var unmeasured RoutingMetrics
	if unmeasured.Measured.DRCViolations {
		t.Fatalf("zero value must not claim a measurement")
	}

	measured := RoutingMetrics{DRCViolations: 0, Measured: RoutingMeasured{DRCViolations: true}}
	if !measured.Measured.DRCViolations {
		t.Fatalf("expected DRC count to be marked measured")
	}
}
