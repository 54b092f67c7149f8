package cache

import "time"

const (
	verdictPresent = "1"
	verdictAbsent  = "0"
)

// VerdictCache stores presence verdicts keyed by backend and URL
type VerdictCache struct {
	store Cache
	ttl   time.Duration
}

// NewVerdictCache wraps store; ttl 0 defers to the store's default
func NewVerdictCache(store Cache, ttl time.Duration) *VerdictCache {
	return &VerdictCache{store: store, ttl: ttl}
}

// Lookup returns (present, found)
func (v *VerdictCache) Lookup(backend, url string) (bool, bool) {
	if v == nil || v.store == nil {
		return false, false
	}
	key := CacheKey(backend, url)
	val, found := v.store.Get(key)
	if !found {
		return false, false
	}
	switch string(val) {
	case verdictPresent:
		return true, true
	case verdictAbsent:
		return false, true
	default:
		// Unknown encoding, drop it so the next check refreshes it
		_ = v.store.Delete(key)
		return false, false
	}
}

// Store records a verdict
func (v *VerdictCache) Store(backend, url string, present bool) error {
	if v == nil || v.store == nil {
		return nil
	}
	val := verdictAbsent
	if present {
		val = verdictPresent
	}
	return v.store.Set(CacheKey(backend, url), []byte(val), v.ttl)
}
