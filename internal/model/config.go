package model

import "time"

// Config holds all leakprobe settings
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Archive     ArchiveConfig     `yaml:"archive" mapstructure:"archive"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Dataset     DatasetConfig     `yaml:"dataset" mapstructure:"dataset"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig configures the archive HTTP client
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"` // Per-request timeout
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
}

// ArchiveConfig configures the presence backends
type ArchiveConfig struct {
	Backend            string        `yaml:"backend" mapstructure:"backend"` // wayback or commoncrawl
	CatalogURL         string        `yaml:"catalog_url" mapstructure:"catalog_url"`
	SnapshotIndexURL   string        `yaml:"snapshot_index_url" mapstructure:"snapshot_index_url"`
	CumulativeIndexURL string        `yaml:"cumulative_index_url" mapstructure:"cumulative_index_url"`
	From               string        `yaml:"from" mapstructure:"from"` // YYYY-MM-DD, inclusive
	To                 string        `yaml:"to" mapstructure:"to"`     // YYYY-MM-DD, inclusive
	CheckTimeout       time.Duration `yaml:"check_timeout" mapstructure:"check_timeout"`
	RequestsPerSecond  float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst              int           `yaml:"burst" mapstructure:"burst"`
	HostRates          []HostRate    `yaml:"host_rates" mapstructure:"host_rates"` // Per-host overrides
}

// HostRate overrides the request rate for one archive host
type HostRate struct {
	Host              string  `yaml:"host" mapstructure:"host"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig configures verdict caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig configures the audit worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DatasetConfig configures record loading and sampling
type DatasetConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Sample int    `yaml:"sample" mapstructure:"sample"` // 0 loads every record
	Seed   uint64 `yaml:"seed" mapstructure:"seed"`
}

// OutputConfig configures logging and result output
type OutputConfig struct {
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// Archive backend names
const (
	BackendWayback     = "wayback"
	BackendCommonCrawl = "commoncrawl"
)

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "leakprobe/0.1 (+https://github.com/ppiankov/leakprobe)",
			MaxBodyBytes: 4_000_000,
		},
		Archive: ArchiveConfig{
			Backend:            BackendWayback,
			CatalogURL:         "https://index.commoncrawl.org/collinfo.json",
			SnapshotIndexURL:   "https://index.commoncrawl.org",
			CumulativeIndexURL: "https://web.archive.org/cdx/search/cdx",
			From:               "2017-01-01",
			To:                 "2021-01-01",
			CheckTimeout:       2 * time.Minute,
			RequestsPerSecond:  2,
			Burst:              2,
			// The Common Crawl index server asks clients to stay slow
			HostRates: []HostRate{
				{Host: "index.commoncrawl.org", RequestsPerSecond: 1, Burst: 1},
			},
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".leakprobe-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Dataset: DatasetConfig{
			Dir:    "./datasets",
			Sample: 500,
			Seed:   42,
		},
		Output: OutputConfig{
			LogLevel: "info",
		},
	}
}
