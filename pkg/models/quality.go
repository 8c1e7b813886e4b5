package models

// Severity classifies how serious a failed quality check is.
type Severity string

const (
	SeverityError   Severity = "error"   // Structural defect, graph must be reworked
	SeverityWarning Severity = "warning" // Modelling smell, graph is usable
	SeverityInfo    Severity = "info"    // Advisory only
)

// CheckItem is the outcome of a single validator rule.
type CheckItem struct {
	ID       string   `json:"id"       yaml:"id"`
	Category string   `json:"category" yaml:"category"`
	Rule     string   `json:"rule"     yaml:"rule"`
	Passed   bool     `json:"passed"   yaml:"passed"`
	Details  string   `json:"details"  yaml:"details"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// QualityCheckResult is the scored report produced by the validator.
type QualityCheckResult struct {
	Score   int          `json:"score"   yaml:"score"`
	Items   []*CheckItem `json:"items"   yaml:"items"`
	Summary string       `json:"summary" yaml:"summary"`
}

// Failed returns the failed checks of the given severity.
func (r *QualityCheckResult) Failed(severity Severity) []*CheckItem {
	var failed []*CheckItem

	for _, item := range r.Items {
		if !item.Passed && item.Severity == severity {
			failed = append(failed, item)
		}
	}

	return failed
}

// HasErrors reports whether any error-severity check failed.
func (r *QualityCheckResult) HasErrors() bool {
	return len(r.Failed(SeverityError)) > 0
}

// ItemByID returns the first check with the given id, or nil.
func (r *QualityCheckResult) ItemByID(id string) *CheckItem {
	for _, item := range r.Items {
		if item.ID == id {
			return item
		}
	}

	return nil
}
