package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/leakprobe/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	workers      int
	auditTimeout time.Duration
	resultsPath  string
)

var auditCmd = &cobra.Command{
	Use:   "audit <benchmark>",
	Short: "Verbalize a benchmark sample and check every query against an archive",
	Long: `Audit runs the full contamination probe for one benchmark:
- Load a reproducible sample of records (or --all)
- Render each record into a query fusing question and answer
- Skip records whose blanks cannot be aligned with the answer
- Check each query against the archive backend
- Write one JSON line per record and print a summary

Example:
  leakprobe audit mmlu --file mmlu.jsonl --sample 100
  leakprobe audit winogrande --dataset-dir ./datasets --all --out winogrande.jsonl
  leakprobe audit ARC --backend commoncrawl --from 2019-01-01 --to 2020-12-31`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	addDatasetFlags(auditCmd)
	addArchiveFlags(auditCmd)
	auditCmd.Flags().IntVar(&workers, "workers", 4, "number of records audited concurrently")
	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", 2*time.Hour, "total timeout for the audit")
	auditCmd.Flags().StringVar(&resultsPath, "out", "-", "output JSONL path (- for stdout)")
}

func runAudit(cmd *cobra.Command, args []string) error {
	benchmark := args[0]

	keys := archiveFlagKeys()
	for k, v := range datasetFlagKeys() {
		keys[k] = v
	}
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
	provider := newProvider(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  leakprobe audit\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Benchmark:  %s\n", benchmark)
	fmt.Fprintf(os.Stderr, "  Backend:    %s\n", cfg.Archive.Backend)
	if cfg.Dataset.Sample > 0 {
		fmt.Fprintf(os.Stderr, "  Sample:     %d (seed %d)\n", cfg.Dataset.Sample, cfg.Dataset.Seed)
	} else {
		fmt.Fprintf(os.Stderr, "  Sample:     all\n")
	}
	fmt.Fprintf(os.Stderr, "  Workers:    %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.NewPipeline(ctx, cfg, provider, logger)
	if err != nil {
		return err
	}

	run, err := p.Run(ctx, benchmark)
	if err != nil {
		return err
	}

	if err := pipeline.WriteJSONLFile(resultsPath, run.Results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	pipeline.RenderSummary(os.Stderr, run.Summary)
	return nil
}
