package model

// Record is a single benchmark row as decoded from the dataset. Field names
// and shapes vary per benchmark.
type Record map[string]any

// VerbalizedQuery is the rendered form of one benchmark record
type VerbalizedQuery struct {
	ID    any     `json:"id"`
	Input string  `json:"input"`
	Label string  `json:"label"` // Label actually substituted into the query
	Query *string `json:"query"` // nil when blanks and answers could not be aligned
}

// Renderable reports whether a query was produced
func (q VerbalizedQuery) Renderable() bool {
	return q.Query != nil
}

// AuditResult is the outcome of auditing one record
type AuditResult struct {
	RunID     string          `json:"run_id"`
	Benchmark string          `json:"benchmark"`
	Index     int             `json:"index"` // Position in the loaded sample
	Query     VerbalizedQuery `json:"query"`
	Backend   string          `json:"backend,omitempty"`
	Skipped   bool            `json:"skipped"`
	Present   bool            `json:"present"`
	Error     string          `json:"error,omitempty"`
}

// AuditSummary counts outcomes across a run
type AuditSummary struct {
	RunID     string `json:"run_id"`
	Benchmark string `json:"benchmark"`
	Total     int    `json:"total"`
	Present   int    `json:"present"`
	Absent    int    `json:"absent"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
}

// Summarize tallies a slice of results
func Summarize(runID, benchmark string, results []AuditResult) AuditSummary {
	s := AuditSummary{RunID: runID, Benchmark: benchmark, Total: len(results)}
	for _, r := range results {
		switch {
		case r.Error != "":
			s.Errors++
		case r.Skipped:
			s.Skipped++
		case r.Present:
			s.Present++
		default:
			s.Absent++
		}
	}
	return s
}
