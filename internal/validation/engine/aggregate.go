package engine

import (
	"securedeal/internal/validation/models"
)

// Aggregate folds field results into the overall verdict and the run
// statistics. The fold is order-independent: the verdict is the worst status
// present, with GREEN as the empty baseline.
func Aggregate(results []models.FieldResult) (models.Status, models.Statistics) {
	status := models.StatusGreen
	var stats models.Statistics

	for _, r := range results {
		status = status.Worst(r.Status)

		switch r.Outcome {
		case models.OutcomeMatch:
			stats.TotalExecuted++
			stats.Passed++
		case models.OutcomeMismatch:
			stats.TotalExecuted++
			stats.Failed++
		case models.OutcomeError:
			stats.TotalExecuted++
			stats.Errors++
		case models.OutcomeSkipped:
			stats.Skipped++
			continue
		}

		if r.Status == models.StatusGreen {
			continue
		}
		switch r.Severity {
		case models.SeverityCritical:
			stats.CriticalIssues++
		case models.SeverityWarning:
			stats.WarningIssues++
		}
	}
	return status, stats
}
