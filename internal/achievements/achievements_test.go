package achievements

import (
	"math"
	"testing"
	"time"

	"github.com/abhisek/guru/internal/skill"
)

func ids(as []Achievement) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func contains(as []Achievement, id string) bool {
	for _, a := range as {
		if a.ID == id {
			return true
		}
	}
	return false
}

var now = time.UnixMilli(1_700_000_000_000)

func TestEvaluate_NothingOnEmptyProgress(t *testing.T) {
	got := Evaluate(Facts{}, nil, now)
	if len(got) != 0 {
		t.Errorf("got %v, want none", ids(got))
	}
}

func TestEvaluate_FirstStage(t *testing.T) {
	got := Evaluate(Facts{CompletedStages: 1}, nil, now)
	if !contains(got, FirstStage) {
		t.Fatalf("got %v, want %s", ids(got), FirstStage)
	}
	if got[0].UnlockedAt != now.UnixMilli() {
		t.Errorf("UnlockedAt = %d, want %d", got[0].UnlockedAt, now.UnixMilli())
	}
	if got[0].Icon == "" || got[0].Name == "" {
		t.Error("achievement missing display fields")
	}
}

func TestEvaluate_Precision(t *testing.T) {
	tests := []struct {
		name string
		m    skill.Metrics
		want bool
	}{
		{"below", skill.Metrics{PressureConsistency: 0.949}, false},
		{"exact", skill.Metrics{AngularPrecision: 0.95}, true},
		{"order", skill.Metrics{StrokeOrderCompliance: 1}, true},
		{"nan ignored", skill.Metrics{VelocityConsistency: math.NaN()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contains(Evaluate(Facts{Metrics: tt.m}, nil, now), Precision)
			if got != tt.want {
				t.Errorf("precision awarded = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_FlowIsStrict(t *testing.T) {
	if contains(Evaluate(Facts{Metrics: skill.Metrics{FlowStateIndex: 0.90}}, nil, now), FlowState) {
		t.Error("flow 0.90 should not award")
	}
	if !contains(Evaluate(Facts{Metrics: skill.Metrics{FlowStateIndex: 0.91}}, nil, now), FlowState) {
		t.Error("flow 0.91 should award")
	}
}

func TestEvaluate_PracticeTime(t *testing.T) {
	if contains(Evaluate(Facts{TotalPracticeTime: 59 * time.Minute}, nil, now), Dedicated) {
		t.Error("59 minutes should not award")
	}
	if !contains(Evaluate(Facts{TotalPracticeTime: time.Hour}, nil, now), Dedicated) {
		t.Error("one hour should award")
	}
}

func TestEvaluate_AllStages(t *testing.T) {
	got := Evaluate(Facts{CompletedStages: 5}, nil, now)
	if !contains(got, GuruMastery) || !contains(got, FirstStage) {
		t.Errorf("got %v, want first-stage and guru-mastery", ids(got))
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	f := Facts{
		CompletedStages:   5,
		TotalPracticeTime: 2 * time.Hour,
		Metrics:           skill.Metrics{PressureConsistency: 1, FlowStateIndex: 1},
	}
	first := Evaluate(f, nil, now)
	if len(first) != len(Rules()) {
		t.Fatalf("got %d achievements, want %d", len(first), len(Rules()))
	}

	earned := Merge(nil, first)
	again := Evaluate(f, earned, now.Add(time.Hour))
	if len(again) != 0 {
		t.Errorf("second evaluation awarded %v", ids(again))
	}
}

func TestMerge_KeepsFirstByID(t *testing.T) {
	earned := []Achievement{{ID: FirstStage, UnlockedAt: 1}}
	merged := Merge(earned, []Achievement{{ID: FirstStage, UnlockedAt: 2}, {ID: Precision, UnlockedAt: 2}})
	if len(merged) != 2 {
		t.Fatalf("merged = %v", ids(merged))
	}
	if merged[0].UnlockedAt != 1 {
		t.Errorf("original unlock time replaced: %d", merged[0].UnlockedAt)
	}
	if len(earned) != 1 {
		t.Error("Merge mutated its input")
	}
}

func TestRules_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range Rules() {
		if seen[r.ID] {
			t.Errorf("duplicate rule id %s", r.ID)
		}
		seen[r.ID] = true
	}
}
