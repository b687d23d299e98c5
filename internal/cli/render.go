package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pratik-mahalle/costengine/pkg/client"
)

// toWire converts an engine value into its API form; both share JSON field names
func toWire(src, dst interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func renderAnomalies(w io.Writer, anomalies []client.Anomaly) error {
	if isStructured() {
		return printOutput(w, anomalies)
	}
	if len(anomalies) == 0 {
		fmt.Fprintln(w, "No anomalies found.")
		return nil
	}

	table := NewTable(w, "ID", "RESOURCE", "DAY", "SEVERITY", "EXPECTED", "ACTUAL", "STD DEVS", "STATUS")
	for _, a := range anomalies {
		table.AddRow(
			truncate(a.ID, 12),
			truncate(a.ResourceID, 30),
			a.StartDate.Format("2006-01-02"),
			formatSeverity(a.Severity),
			formatMoney(a.ExpectedCost),
			formatMoney(a.ActualCost),
			strconv.FormatFloat(a.DeviationStdDevs, 'f', 2, 64),
			formatStatus(a.Status),
		)
	}
	table.Render()
	fmt.Fprintf(w, "\n%d anomalies\n", len(anomalies))
	return nil
}

func renderAnomaly(w io.Writer, a *client.Anomaly) error {
	if isStructured() {
		return printOutput(w, a)
	}
	fmt.Fprintf(w, "ID:          %s\n", a.ID)
	fmt.Fprintf(w, "Resource:    %s\n", a.ResourceID)
	if a.ServiceType != "" {
		fmt.Fprintf(w, "Service:     %s\n", a.ServiceType)
	}
	fmt.Fprintf(w, "Day:         %s\n", a.StartDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Severity:    %s\n", formatSeverity(a.Severity))
	fmt.Fprintf(w, "Status:      %s\n", formatStatus(a.Status))
	fmt.Fprintf(w, "Expected:    %s\n", formatMoney(a.ExpectedCost))
	fmt.Fprintf(w, "Actual:      %s\n", formatMoney(a.ActualCost))
	fmt.Fprintf(w, "Deviation:   %s (%.1f%%, %.2f std devs)\n", formatMoney(a.Deviation), a.DeviationPercentage, a.DeviationStdDevs)
	if a.ResolvedBy != "" {
		fmt.Fprintf(w, "Resolved by: %s\n", a.ResolvedBy)
	}
	if a.Resolution != "" {
		fmt.Fprintf(w, "Resolution:  %s\n", a.Resolution)
	}
	return nil
}

func renderRecommendations(w io.Writer, recs []client.Recommendation) error {
	if isStructured() {
		return printOutput(w, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No recommendations found.")
		return nil
	}

	table := NewTable(w, "ID", "RESOURCE", "TYPE", "SAVINGS", "ANNUAL", "CONFIDENCE", "STATUS")
	var total float64
	for _, r := range recs {
		table.AddRow(
			truncate(r.ID, 12),
			truncate(r.ResourceID, 30),
			r.Type,
			formatMoney(r.SavingsAmount),
			formatMoney(r.AnnualSavings),
			r.Confidence,
			formatStatus(r.Status),
		)
		total += r.SavingsAmount
	}
	table.Render()
	fmt.Fprintf(w, "\n%d recommendations, %s potential monthly savings\n", len(recs), formatMoney(total))
	return nil
}

func renderRecommendation(w io.Writer, r *client.Recommendation) error {
	if isStructured() {
		return printOutput(w, r)
	}
	fmt.Fprintf(w, "ID:          %s\n", r.ID)
	fmt.Fprintf(w, "Title:       %s\n", r.Title)
	fmt.Fprintf(w, "Resource:    %s\n", r.ResourceID)
	fmt.Fprintf(w, "Type:        %s\n", r.Type)
	fmt.Fprintf(w, "Status:      %s\n", formatStatus(r.Status))
	fmt.Fprintf(w, "Cost:        %s -> %s\n", formatMoney(r.CurrentCost), formatMoney(r.RecommendedCost))
	fmt.Fprintf(w, "Savings:     %s (%.1f%%), %s per year\n", formatMoney(r.SavingsAmount), r.SavingsPercentage, formatMoney(r.AnnualSavings))
	fmt.Fprintf(w, "Confidence:  %s  Effort: %s  Impact: %s\n", r.Confidence, r.Effort, r.Impact)
	if r.Description != "" {
		fmt.Fprintf(w, "\n%s\n", r.Description)
	}
	if len(r.ImplementationSteps) > 0 {
		fmt.Fprintln(w, "\nSteps:")
		for i, step := range r.ImplementationSteps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}
	return nil
}

func renderJobs(w io.Writer, jobs []client.Job) error {
	if isStructured() {
		return printOutput(w, jobs)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs found.")
		return nil
	}

	table := NewTable(w, "ID", "STATUS", "STARTED", "RESOURCES", "RECOMMENDATIONS", "SAVINGS")
	for _, j := range jobs {
		table.AddRow(
			truncate(j.ID, 12),
			formatStatus(j.Status),
			j.StartedAt.Format("2006-01-02 15:04"),
			strconv.Itoa(j.ResourcesAnalyzed),
			strconv.Itoa(j.RecommendationsGenerated),
			formatMoney(j.PotentialSavings),
		)
	}
	table.Render()
	return nil
}

func renderJob(w io.Writer, j *client.Job) error {
	if isStructured() {
		return printOutput(w, j)
	}
	fmt.Fprintf(w, "ID:              %s\n", j.ID)
	fmt.Fprintf(w, "Status:          %s\n", formatStatus(j.Status))
	fmt.Fprintf(w, "Started:         %s\n", j.StartedAt.Format("2006-01-02 15:04:05"))
	if j.CompletedAt != nil {
		fmt.Fprintf(w, "Completed:       %s\n", j.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Resources:       %d\n", j.ResourcesAnalyzed)
	fmt.Fprintf(w, "Recommendations: %d\n", j.RecommendationsGenerated)
	fmt.Fprintf(w, "Savings:         %s\n", formatMoney(j.PotentialSavings))
	if j.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:           %s\n", j.ErrorMessage)
	}
	return nil
}

func renderSummary(w io.Writer, s *client.Summary) error {
	if isStructured() {
		return printOutput(w, s)
	}
	fmt.Fprintf(w, "Organization:      %s\n", s.OrganizationID)
	fmt.Fprintf(w, "Period:            %s to %s\n", s.PeriodStart.Format("2006-01-02"), s.PeriodEnd.Format("2006-01-02"))
	fmt.Fprintf(w, "Total cost:        %s\n", formatMoney(s.TotalCost))
	fmt.Fprintf(w, "Potential savings: %s (%.1f%%)\n", formatMoney(s.PotentialSavings), s.SavingsPercentage)
	fmt.Fprintf(w, "Recommendations:   %d\n", s.RecommendationCount)

	if len(s.SavingsByType) > 0 {
		fmt.Fprintln(w)
		table := NewTable(w, "TYPE", "SAVINGS")
		for _, k := range sortedKeys(s.SavingsByType) {
			table.AddRow(k, formatMoney(s.SavingsByType[k]))
		}
		table.Render()
	}

	if len(s.TopWastefulResources) > 0 {
		fmt.Fprintln(w)
		table := NewTable(w, "RESOURCE", "COST", "WASTED", "WASTED %")
		for _, r := range s.TopWastefulResources {
			table.AddRow(
				truncate(r.ResourceID, 30),
				formatMoney(r.CurrentCost),
				formatMoney(r.WastedCost),
				fmt.Sprintf("%.1f%%", r.WastedPercentage),
			)
		}
		table.Render()
	}
	return nil
}
