package worker

import (
	"context"
	"sort"
)

// PresenceChecker answers whether a query appears in an archive
type PresenceChecker interface {
	IsPresent(ctx context.Context, target string) (bool, error)
}

// CheckJob checks one query
type CheckJob struct {
	Index   int
	Query   string
	Checker PresenceChecker
}

// Execute runs the check
func (j *CheckJob) Execute(ctx context.Context) Result {
	present, err := j.Checker.IsPresent(ctx, j.Query)
	return &CheckResult{Index: j.Index, Query: j.Query, Present: present, Err: err}
}

// CheckResult is the verdict for one query
type CheckResult struct {
	Index   int
	Query   string
	Present bool
	Err     error
}

// GetError returns the check error, if any
func (r *CheckResult) GetError() error {
	return r.Err
}

// CheckQueries checks queries concurrently and returns verdicts in input
// order. Queries not started before ctx ends are missing from the result.
func CheckQueries(ctx context.Context, checker PresenceChecker, queries []string, concurrency int) []CheckResult {
	if len(queries) == 0 {
		return nil
	}

	pool := NewPool(ctx, concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, q := range queries {
			if !pool.Submit(&CheckJob{Index: i, Query: q, Checker: checker}) {
				return
			}
		}
	}()

	raw := pool.Wait()
	results := make([]CheckResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, *r.(*CheckResult))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}
