package recommendation

import (
	"testing"
	"time"
)

func TestSetCosts_DerivesSavings(t *testing.T) {
	tests := []struct {
		name        string
		current     float64
		recommended float64
		wantSavings float64
		wantPct     float64
		wantAnnual  float64
	}{
		{"rightsizing", 500, 350, 150, 30, 1800},
		{"termination", 50, 0, 50, 100, 600},
		{"zero cost", 0, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &CostOptimizationRecommendation{}
			rec.SetCosts(tt.current, tt.recommended)

			if rec.SavingsAmount != rec.CurrentCost-rec.RecommendedCost {
				t.Errorf("SavingsAmount %v != current - recommended", rec.SavingsAmount)
			}
			if rec.SavingsAmount != tt.wantSavings {
				t.Errorf("SavingsAmount = %v, want %v", rec.SavingsAmount, tt.wantSavings)
			}
			if rec.SavingsPercentage != tt.wantPct {
				t.Errorf("SavingsPercentage = %v, want %v", rec.SavingsPercentage, tt.wantPct)
			}
			if rec.AnnualSavings != tt.wantAnnual {
				t.Errorf("AnnualSavings = %v, want %v", rec.AnnualSavings, tt.wantAnnual)
			}
		})
	}
}

func TestOptions_Includes(t *testing.T) {
	all := Options{}
	if !all.Includes(TypeReservedInstance) {
		t.Error("empty IncludeTypes should include every type")
	}

	some := Options{IncludeTypes: []Type{TypeIdleResource}}
	if !some.Includes(TypeIdleResource) {
		t.Error("Includes(idle_resource) = false, want true")
	}
	if some.Includes(TypeRightsizing) {
		t.Error("Includes(rightsizing) = true, want false")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusImplemented, true},
		{StatusPending, StatusDismissed, true},
		{StatusDismissed, StatusPending, true},
		{StatusImplemented, StatusPending, false},
		{StatusExpired, StatusInProgress, false},
		{StatusImplemented, StatusImplemented, true},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestClone_IsDeep(t *testing.T) {
	now := time.Now()
	rec := &CostOptimizationRecommendation{
		ID:                   "r1",
		CurrentConfiguration: map[string]string{"pricing": "on_demand"},
		ImplementationSteps:  []string{"a", "b"},
		ImplementedAt:        &now,
	}

	c := rec.Clone()
	c.CurrentConfiguration["pricing"] = "reserved"
	c.ImplementationSteps[0] = "z"
	*c.ImplementedAt = now.Add(time.Hour)

	if rec.CurrentConfiguration["pricing"] != "on_demand" {
		t.Error("Clone() shares CurrentConfiguration")
	}
	if rec.ImplementationSteps[0] != "a" {
		t.Error("Clone() shares ImplementationSteps")
	}
	if !rec.ImplementedAt.Equal(now) {
		t.Error("Clone() shares ImplementedAt")
	}
}

func TestStatus_IsOpen(t *testing.T) {
	if !StatusPending.IsOpen() || !StatusInProgress.IsOpen() {
		t.Error("pending and in_progress should be open")
	}
	if StatusImplemented.IsOpen() || StatusDismissed.IsOpen() || StatusExpired.IsOpen() {
		t.Error("implemented, dismissed and expired should not be open")
	}
}
