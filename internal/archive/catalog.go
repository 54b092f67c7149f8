package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Snapshot is one crawl batch listed in the catalog
type Snapshot struct {
	ID     string `json:"id"`      // e.g. CC-MAIN-2020-50
	Name   string `json:"name"`    // e.g. "October 2020 Index"
	CDXAPI string `json:"cdx-api"` // Per-snapshot index endpoint
}

// YearWeek extracts the ISO year and week encoded in the snapshot id
func (s Snapshot) YearWeek() (int, int, error) {
	parts := strings.Split(s.ID, "-")
	if len(parts) < 4 {
		return 0, 0, fmt.Errorf("snapshot id %q has no year/week", s.ID)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, fmt.Errorf("snapshot id %q: year: %w", s.ID, err)
	}
	week, err := strconv.Atoi(parts[3])
	if err != nil {
		return 0, 0, fmt.Errorf("snapshot id %q: week: %w", s.ID, err)
	}
	return year, week, nil
}

// Date returns the Monday of the snapshot's ISO week
func (s Snapshot) Date() (time.Time, error) {
	year, week, err := s.YearWeek()
	if err != nil {
		return time.Time{}, err
	}
	return ISOWeekStart(year, week)
}

// FilterSnapshots keeps snapshots dated within r, preserving catalog order.
// Snapshots whose id carries no usable date are skipped.
func FilterSnapshots(all []Snapshot, r TimeRange, logger *slog.Logger) []Snapshot {
	in := make([]Snapshot, 0, len(all))
	for _, s := range all {
		date, err := s.Date()
		if err != nil {
			if logger != nil {
				logger.Warn("skipping snapshot", "id", s.ID, "error", err)
			}
			continue
		}
		if r.Contains(date) {
			in = append(in, s)
		}
	}
	return in
}

// fetchCatalog downloads and decodes the snapshot catalog
func fetchCatalog(ctx context.Context, c *client, catalogURL string) ([]Snapshot, error) {
	resp, err := c.get(ctx, catalogURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	if !resp.ok() {
		return nil, fmt.Errorf("%w: status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	var snapshots []Snapshot
	if err := json.Unmarshal(resp.Body, &snapshots); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrCatalogUnavailable, err)
	}
	return snapshots, nil
}
