package domain

// TimestampLayout formats report scan times and "Generated on" lines.
const TimestampLayout = "2006-01-02 15:04:05"

// FixResult is the outcome of one remediation step.
type FixResult struct {
	Fixer   string `json:"fixer"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Command string `json:"command,omitempty"`
	DryRun  bool   `json:"dry_run"`
}

// FixOptions controls how fixers run.
type FixOptions struct {
	DryRun  bool `json:"dry_run"`
	AutoYes bool `json:"auto_yes"`
}

// FixSummary counts fix outcomes.
type FixSummary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func SummarizeFixes(results []FixResult) FixSummary {
	var s FixSummary
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
