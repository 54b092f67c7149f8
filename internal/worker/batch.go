package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/leakprobe/internal/model"
)

// Auditor audits a single record. A returned error is fatal for the whole
// batch; per-record failures belong in the result.
type Auditor interface {
	Audit(ctx context.Context, benchmark string, index int, rec model.Record) (model.AuditResult, error)
}

// AuditJob audits one record
type AuditJob struct {
	Benchmark string
	Index     int
	Record    model.Record
	Auditor   Auditor
}

// Execute runs the audit
func (j *AuditJob) Execute(ctx context.Context) Result {
	res, err := j.Auditor.Audit(ctx, j.Benchmark, j.Index, j.Record)
	return &AuditJobResult{Result: res, Err: err}
}

// AuditJobResult carries an audit result through the pool
type AuditJobResult struct {
	Result model.AuditResult
	Err    error
}

// GetError returns the fatal error, if any
func (r *AuditJobResult) GetError() error {
	return r.Err
}

// BatchProcessor audits records concurrently
type BatchProcessor struct {
	auditor     Auditor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(auditor Auditor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		auditor:     auditor,
		concurrency: concurrency,
	}
}

// ProcessRecords audits every record and returns results ordered by index.
// The first fatal error cancels the remaining work and is returned.
func (b *BatchProcessor) ProcessRecords(ctx context.Context, benchmark string, records []model.Record) ([]model.AuditResult, error) {
	if len(records) == 0 {
		return []model.AuditResult{}, nil
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, rec := range records {
			job := &AuditJob{Benchmark: benchmark, Index: i, Record: rec, Auditor: b.auditor}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	results := make([]model.AuditResult, 0, len(records))
	var fatal error
	for r := range pool.Results() {
		jr := r.(*AuditJobResult)
		if jr.Err != nil {
			if fatal == nil {
				fatal = jr.Err
				pool.Shutdown()
			}
			continue
		}
		results = append(results, jr.Result)
	}

	if fatal != nil {
		return nil, fatal
	}
	if err := ctx.Err(); err != nil && len(results) < len(records) {
		return nil, fmt.Errorf("batch interrupted after %d of %d records: %w", len(results), len(records), err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results, nil
}

// ReadLines reads non-empty, non-comment lines from a file, deduplicated in
// first-seen order
func ReadLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}
