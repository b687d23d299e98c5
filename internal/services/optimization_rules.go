package services

import (
	"fmt"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
)

// Rule thresholds and savings rates
const (
	rightsizingUtilizationCeiling = 20.0
	rightsizingSavingsRate        = 0.30

	idleCPUCeiling     = 5.0
	idleNetworkCeiling = 1000.0

	reservedInstanceSavingsRate = 0.40
)

// optimizationRule inspects one resource and proposes at most one recommendation
type optimizationRule interface {
	Type() recommendation.Type
	Evaluate(u *cost.ResourceUtilization, totalCost float64) *recommendation.CostOptimizationRecommendation
}

// defaultRules returns the analyzers in the order their recommendations are emitted
func defaultRules() []optimizationRule {
	return []optimizationRule{
		rightsizingRule{},
		idleResourceRule{},
		reservedInstanceRule{},
	}
}

// rightsizingRule flags resources whose CPU and memory both sit well below capacity
type rightsizingRule struct{}

func (rightsizingRule) Type() recommendation.Type { return recommendation.TypeRightsizing }

func (rightsizingRule) Evaluate(u *cost.ResourceUtilization, totalCost float64) *recommendation.CostOptimizationRecommendation {
	cpu, mem := u.CPUAverage(), u.MemoryAverage()
	if cpu >= rightsizingUtilizationCeiling || mem >= rightsizingUtilizationCeiling {
		return nil
	}

	rec := &recommendation.CostOptimizationRecommendation{
		Type:        recommendation.TypeRightsizing,
		Title:       fmt.Sprintf("Rightsize underutilized resource %s", u.ResourceID),
		Description: fmt.Sprintf("Average CPU %.1f%% and memory %.1f%% suggest this resource is oversized.", cpu, mem),
		CurrentConfiguration: map[string]string{
			"cpu_average":    fmt.Sprintf("%.1f", cpu),
			"memory_average": fmt.Sprintf("%.1f", mem),
		},
		RecommendedConfiguration: map[string]string{
			"action": "downsize",
			"target": "next smaller instance size",
		},
		Confidence: recommendation.LevelHigh,
		Effort:     recommendation.LevelMedium,
		Impact:     recommendation.LevelMedium,
		Category:   recommendation.CategoryRightsizing,
		ImplementationSteps: []string{
			"Review peak utilization over the last 30 days",
			"Select the next smaller instance size",
			"Schedule a maintenance window",
			"Resize the resource and monitor performance",
		},
		Justification: fmt.Sprintf("CPU and memory both averaged below %.0f%% over the analysis period.", rightsizingUtilizationCeiling),
	}
	rec.SetCosts(totalCost, totalCost-totalCost*rightsizingSavingsRate)
	return rec
}

// idleResourceRule flags resources doing essentially no work
type idleResourceRule struct{}

func (idleResourceRule) Type() recommendation.Type { return recommendation.TypeIdleResource }

func (idleResourceRule) Evaluate(u *cost.ResourceUtilization, totalCost float64) *recommendation.CostOptimizationRecommendation {
	cpu, in, out := u.CPUAverage(), u.NetworkIn(), u.NetworkOut()
	if cpu >= idleCPUCeiling || in >= idleNetworkCeiling || out >= idleNetworkCeiling {
		return nil
	}

	rec := &recommendation.CostOptimizationRecommendation{
		Type:        recommendation.TypeIdleResource,
		Title:       fmt.Sprintf("Terminate idle resource %s", u.ResourceID),
		Description: fmt.Sprintf("Average CPU %.1f%% with negligible network traffic indicates the resource is idle.", cpu),
		CurrentConfiguration: map[string]string{
			"cpu_average":      fmt.Sprintf("%.1f", cpu),
			"network_inbound":  fmt.Sprintf("%.0f", in),
			"network_outbound": fmt.Sprintf("%.0f", out),
		},
		RecommendedConfiguration: map[string]string{
			"action": "terminate",
		},
		Confidence: recommendation.LevelMedium,
		Effort:     recommendation.LevelLow,
		Impact:     recommendation.LevelHigh,
		Category:   recommendation.CategoryUnusedResources,
		ImplementationSteps: []string{
			"Confirm with the owner that the resource is unused",
			"Snapshot or back up any data worth keeping",
			"Terminate the resource",
		},
		Justification: fmt.Sprintf("CPU averaged below %.0f%% and network traffic stayed below %.0f in both directions.", idleCPUCeiling, idleNetworkCeiling),
	}
	rec.SetCosts(totalCost, 0)
	return rec
}

// reservedInstanceRule proposes reserved capacity for every costed resource.
// It does not yet check usage consistency.
type reservedInstanceRule struct{}

func (reservedInstanceRule) Type() recommendation.Type { return recommendation.TypeReservedInstance }

func (reservedInstanceRule) Evaluate(u *cost.ResourceUtilization, totalCost float64) *recommendation.CostOptimizationRecommendation {
	rec := &recommendation.CostOptimizationRecommendation{
		Type:        recommendation.TypeReservedInstance,
		Title:       fmt.Sprintf("Purchase reserved capacity for %s", u.ResourceID),
		Description: "Committing to reserved capacity lowers the effective rate for steady workloads.",
		CurrentConfiguration: map[string]string{
			"pricing": "on_demand",
		},
		RecommendedConfiguration: map[string]string{
			"pricing": "reserved",
			"term":    "1 year",
		},
		Confidence: recommendation.LevelHigh,
		Effort:     recommendation.LevelLow,
		Impact:     recommendation.LevelHigh,
		Category:   recommendation.CategoryReservedInstances,
		ImplementationSteps: []string{
			"Confirm the workload will run for the full term",
			"Choose term length and payment option",
			"Purchase the reservation",
		},
		Justification: fmt.Sprintf("Reserved pricing is typically about %.0f%% cheaper than on-demand.", reservedInstanceSavingsRate*100),
	}
	rec.SetCosts(totalCost, totalCost-totalCost*reservedInstanceSavingsRate)
	return rec
}
