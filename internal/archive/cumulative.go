package archive

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/ppiankov/leakprobe/internal/cache"
	"github.com/ppiankov/leakprobe/internal/model"
)

// CumulativeIndex answers presence questions against the Wayback Machine CDX
// server, which has no per-snapshot granularity
type CumulativeIndex struct {
	client   *client
	endpoint string
	verdicts *cache.VerdictCache
	logger   *slog.Logger
}

// NewCumulativeIndex creates a cumulative backend. It performs no network I/O.
func NewCumulativeIndex(httpCfg model.HTTPConfig, archiveCfg model.ArchiveConfig, opts ...Option) *CumulativeIndex {
	o := buildOptions(httpCfg, opts)
	return &CumulativeIndex{
		client:   newClient(httpCfg, o),
		endpoint: archiveCfg.CumulativeIndexURL,
		verdicts: o.verdicts,
		logger:   o.logger,
	}
}

// Check reports whether the index returns any capture for target
func (c *CumulativeIndex) Check(ctx context.Context, target string) (bool, error) {
	if present, found := c.verdicts.Lookup(model.BackendWayback, target); found {
		return present, nil
	}

	resp, err := c.client.get(ctx, c.endpoint, url.Values{"url": {target}})
	if err != nil {
		return false, &PresenceCheckError{Backend: model.BackendWayback, URL: target, Err: err}
	}
	if !resp.ok() {
		return false, &PresenceCheckError{Backend: model.BackendWayback, URL: target, StatusCode: resp.StatusCode}
	}

	present := len(resp.Body) > 0
	if err := c.verdicts.Store(model.BackendWayback, target, present); err != nil {
		c.logger.Warn("cache verdict", "url", target, "error", err)
	}
	return present, nil
}
