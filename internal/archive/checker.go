package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/leakprobe/internal/model"
)

// Checker selects between the cumulative and snapshot backends. The two are
// alternatives; their verdicts are never combined.
type Checker struct {
	cumulative   *CumulativeIndex
	snapshots    *SnapshotIndex
	backend      string
	checkTimeout time.Duration
}

// NewChecker creates a checker. snapshots may be nil when the commoncrawl
// backend is not in use.
func NewChecker(cumulative *CumulativeIndex, snapshots *SnapshotIndex, backend string, checkTimeout time.Duration) (*Checker, error) {
	switch backend {
	case "", model.BackendWayback:
		backend = model.BackendWayback
		if cumulative == nil {
			return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, backend)
		}
	case model.BackendCommonCrawl:
		if snapshots == nil {
			return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, backend)
		}
	default:
		return nil, fmt.Errorf("unknown archive backend %q", backend)
	}

	return &Checker{
		cumulative:   cumulative,
		snapshots:    snapshots,
		backend:      backend,
		checkTimeout: checkTimeout,
	}, nil
}

// Backend returns the name of the backend used by IsPresent
func (c *Checker) Backend() string {
	return c.backend
}

// IsPresent checks target against the selected backend, bounded by the
// configured check timeout
func (c *Checker) IsPresent(ctx context.Context, target string) (bool, error) {
	if c.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.checkTimeout)
		defer cancel()
	}

	if c.backend == model.BackendCommonCrawl {
		return c.CheckViaSnapshots(ctx, target)
	}
	return c.CheckViaCumulativeIndex(ctx, target)
}

// CheckViaSnapshots ORs presence across every snapshot in the time range
func (c *Checker) CheckViaSnapshots(ctx context.Context, target string) (bool, error) {
	if c.snapshots == nil {
		return false, fmt.Errorf("%w: %s", ErrBackendUnavailable, model.BackendCommonCrawl)
	}
	return c.snapshots.Check(ctx, target)
}

// CheckViaCumulativeIndex asks the cumulative index once
func (c *Checker) CheckViaCumulativeIndex(ctx context.Context, target string) (bool, error) {
	if c.cumulative == nil {
		return false, fmt.Errorf("%w: %s", ErrBackendUnavailable, model.BackendWayback)
	}
	return c.cumulative.Check(ctx, target)
}
