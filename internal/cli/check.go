package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/leakprobe/internal/pipeline"
	"github.com/ppiankov/leakprobe/internal/worker"
	"github.com/spf13/cobra"
)

var (
	backend      string
	rangeFrom    string
	rangeTo      string
	queriesFile  string
	checkTimeout time.Duration
	reqTimeout   time.Duration
	userAgent    string
	noCache      bool
	insecureTLS  bool
)

var checkCmd = &cobra.Command{
	Use:   "check [query...]",
	Short: "Check whether queries or URLs appear in a web archive",
	Long: `Check asks the configured archive backend about each argument (or each
line of --queries) and prints "present" or "absent" next to it.

Backends:
  wayback      Wayback Machine CDX index, cumulative (default)
  commoncrawl  Common Crawl snapshot indexes within --from..--to

Example:
  leakprobe check "The cat sat on the red mat."
  leakprobe check --backend commoncrawl --from 2019-01-01 --to 2020-12-31 example.org
  leakprobe check --queries queries.txt`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addArchiveFlags(checkCmd)
	checkCmd.Flags().StringVar(&queriesFile, "queries", "", "file with one query per line")
	checkCmd.Flags().IntVar(&workers, "workers", 4, "number of queries checked concurrently")
}

func addArchiveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&backend, "backend", "wayback", "archive backend (wayback, commoncrawl)")
	cmd.Flags().StringVar(&rangeFrom, "from", "2017-01-01", "first snapshot date for commoncrawl (inclusive)")
	cmd.Flags().StringVar(&rangeTo, "to", "2021-01-01", "last snapshot date for commoncrawl (inclusive)")
	cmd.Flags().DurationVar(&checkTimeout, "check-timeout", 2*time.Minute, "upper bound for one presence check")
	cmd.Flags().DurationVar(&reqTimeout, "request-timeout", 30*time.Second, "timeout for a single archive request")
	cmd.Flags().StringVar(&userAgent, "ua", "leakprobe/0.1 (+https://github.com/ppiankov/leakprobe)", "HTTP User-Agent")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the verdict cache")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
}

func archiveFlagKeys() map[string]string {
	return map[string]string{
		"archive.backend":       "backend",
		"archive.from":          "from",
		"archive.to":            "to",
		"archive.check_timeout": "check-timeout",
		"http.timeout":          "request-timeout",
		"http.user_agent":       "ua",
		"http.insecure_tls":     "insecure",
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	keys := archiveFlagKeys()
	keys["concurrency.workers"] = "workers"
	if err := bindFlags(cmd, keys); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	logger := newLogger(cfg)

	queries := args
	if queriesFile != "" {
		lines, err := worker.ReadLines(queriesFile)
		if err != nil {
			return fmt.Errorf("read queries: %w", err)
		}
		queries = append(queries, lines...)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries given")
	}

	ctx := context.Background()
	checker, err := pipeline.NewChecker(ctx, cfg, logger)
	if err != nil {
		return err
	}

	results := worker.CheckQueries(ctx, checker, queries, cfg.Concurrency.Workers)
	failed := len(queries) - len(results)
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "error\t%s\t%v\n", r.Query, r.Err)
			continue
		}
		verdict := "absent"
		if r.Present {
			verdict = "present"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", verdict, r.Query)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(queries))
	}
	return nil
}
