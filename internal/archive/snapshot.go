package archive

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ppiankov/leakprobe/internal/model"
)

// SnapshotIndex answers presence questions against the time-sliced Common
// Crawl indexes. The snapshot set is fixed at construction.
type SnapshotIndex struct {
	client    *client
	baseURL   string
	timeRange TimeRange
	snapshots []Snapshot
	logger    *slog.Logger
}

// NewSnapshotIndex fetches the catalog and keeps the snapshots within r.
// No index is returned if the catalog cannot be fetched or decoded.
func NewSnapshotIndex(ctx context.Context, httpCfg model.HTTPConfig, archiveCfg model.ArchiveConfig, r TimeRange, opts ...Option) (*SnapshotIndex, error) {
	o := buildOptions(httpCfg, opts)
	c := newClient(httpCfg, o)

	all, err := fetchCatalog(ctx, c, archiveCfg.CatalogURL)
	if err != nil {
		return nil, err
	}
	inRange := FilterSnapshots(all, r, o.logger)
	o.logger.Debug("loaded snapshot catalog", "total", len(all), "in_range", len(inRange), "range", r.String())

	return &SnapshotIndex{
		client:    c,
		baseURL:   strings.TrimSuffix(archiveCfg.SnapshotIndexURL, "/"),
		timeRange: r,
		snapshots: inRange,
		logger:    o.logger,
	}, nil
}

// Snapshots returns the snapshots consulted by Check, in catalog order
func (s *SnapshotIndex) Snapshots() []Snapshot {
	out := make([]Snapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

// Check reports whether target appears in any snapshot. Failed or malformed
// lookups count as absent for that snapshot. An error is returned only when
// ctx ends before every snapshot was consulted.
func (s *SnapshotIndex) Check(ctx context.Context, target string) (bool, error) {
	for i, snap := range s.snapshots {
		if err := ctx.Err(); err != nil {
			return false, &PresenceCheckError{
				Backend: model.BackendCommonCrawl,
				URL:     target,
				Err:     fmt.Errorf("stopped after %d of %d snapshots: %w", i, len(s.snapshots), err),
			}
		}
		found, err := s.lookup(ctx, snap, target)
		if err != nil && ctx.Err() != nil {
			return false, &PresenceCheckError{
				Backend: model.BackendCommonCrawl,
				URL:     target,
				Err:     fmt.Errorf("stopped during snapshot %d of %d (%s): %w", i+1, len(s.snapshots), snap.ID, ctx.Err()),
			}
		}
		if err != nil {
			s.logger.Warn("snapshot lookup absorbed", "snapshot", snap.ID, "url", target, "error", err)
			continue
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

func (s *SnapshotIndex) endpoint(snap Snapshot) string {
	if snap.CDXAPI != "" {
		return snap.CDXAPI
	}
	return s.baseURL + "/" + snap.ID + "-index"
}

func (s *SnapshotIndex) lookup(ctx context.Context, snap Snapshot, target string) (bool, error) {
	resp, err := s.client.get(ctx, s.endpoint(snap), url.Values{
		"url":    {target},
		"output": {"json"},
	})
	if err != nil {
		return false, err
	}
	// The index answers 404 when nothing was captured
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if !resp.ok() {
		return false, fmt.Errorf("status %d", resp.StatusCode)
	}

	if resp.Truncated {
		s.logger.Debug("snapshot answer truncated", "snapshot", snap.ID, "url", target, "bytes", len(resp.Body))
	}
	records, err := decodeLines(resp.Body, resp.Truncated)
	if err != nil {
		return false, err
	}
	return records > 0, nil
}

// decodeLines counts the JSON objects in a newline-delimited body. For a
// truncated body the trailing partial line is dropped.
func decodeLines(body []byte, truncated bool) (int, error) {
	if truncated {
		body = body[:bytes.LastIndexByte(body, '\n')+1]
	}
	count := 0
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), len(body)+1)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			return 0, fmt.Errorf("%w: line %d: %w", ErrDecode, count+1, err)
		}
		if len(rec) > 0 {
			count++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, errors.Join(ErrDecode, err)
	}
	return count, nil
}
