package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ppiankov/leakprobe/internal/model"
	"github.com/ppiankov/leakprobe/internal/verbalize"
)

// Verbalizer renders records into queries
type Verbalizer interface {
	Verbalize(benchmark string, rec model.Record) (model.VerbalizedQuery, error)
}

// PresenceChecker decides whether a query appears in the archive
type PresenceChecker interface {
	IsPresent(ctx context.Context, target string) (bool, error)
	Backend() string
}

// Auditor verbalizes a record and checks its query
type Auditor struct {
	verbalizer Verbalizer
	checker    PresenceChecker
	runID      string
	logger     *slog.Logger
}

// NewAuditor creates an auditor
func NewAuditor(v Verbalizer, c PresenceChecker, runID string, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Auditor{verbalizer: v, checker: c, runID: runID, logger: logger}
}

// Audit processes one record. Configuration errors and cancellation are
// returned; extraction and presence failures are recorded on the result.
func (a *Auditor) Audit(ctx context.Context, benchmark string, index int, rec model.Record) (model.AuditResult, error) {
	res := model.AuditResult{
		RunID:     a.runID,
		Benchmark: benchmark,
		Index:     index,
		Backend:   a.checker.Backend(),
	}

	q, err := a.verbalizer.Verbalize(benchmark, rec)
	if errors.Is(err, verbalize.ErrConfiguration) {
		return model.AuditResult{}, err
	}
	if err != nil {
		a.logger.Warn("extraction failed", "benchmark", benchmark, "index", index, "error", err)
		res.Error = err.Error()
		return res, nil
	}
	res.Query = q

	if !q.Renderable() {
		res.Skipped = true
		return res, nil
	}

	present, err := a.checker.IsPresent(ctx, *q.Query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.AuditResult{}, ctxErr
		}
		a.logger.Warn("presence check failed", "benchmark", benchmark, "index", index, "error", err)
		res.Error = err.Error()
		return res, nil
	}

	res.Present = present
	a.logger.Debug("audited record", "benchmark", benchmark, "index", index, "present", present)
	return res, nil
}
