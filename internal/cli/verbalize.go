package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/leakprobe/internal/dataset"
	"github.com/ppiankov/leakprobe/internal/model"
	"github.com/ppiankov/leakprobe/internal/pipeline"
	"github.com/ppiankov/leakprobe/internal/verbalize"
	"github.com/spf13/cobra"
)

var (
	datasetFile string
	datasetDir  string
	sampleSize  int
	sampleAll   bool
	sampleSeed  uint64
	outPath     string
)

var verbalizeCmd = &cobra.Command{
	Use:   "verbalize <benchmark>",
	Short: "Render benchmark records into queries without contacting any archive",
	Long: `Verbalize loads a benchmark sample and prints one JSON line per record:
{"id", "input", "label", "query"}. Records whose blanks cannot be aligned with
the answer have "query": null.

Example:
  leakprobe verbalize mmlu --file mmlu.jsonl --sample 20
  leakprobe verbalize ceval --dataset-dir ./datasets --all --out ceval.queries.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runVerbalize,
}

func init() {
	rootCmd.AddCommand(verbalizeCmd)
	addDatasetFlags(verbalizeCmd)
	verbalizeCmd.Flags().StringVar(&outPath, "out", "-", "output JSONL path (- for stdout)")
}

func addDatasetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&datasetFile, "file", "", "dataset JSONL file (default: <dataset-dir>/<benchmark>.jsonl)")
	cmd.Flags().StringVar(&datasetDir, "dataset-dir", "", "directory holding <benchmark>.jsonl files")
	cmd.Flags().IntVar(&sampleSize, "sample", 0, "number of records to sample")
	cmd.Flags().BoolVar(&sampleAll, "all", false, "use every record instead of a sample")
	cmd.Flags().Uint64Var(&sampleSeed, "seed", 0, "sampling seed")
}

func datasetFlagKeys() map[string]string {
	return map[string]string{
		"dataset.dir":    "dataset-dir",
		"dataset.sample": "sample",
		"dataset.seed":   "seed",
	}
}

func newProvider(cfg *model.Config) *dataset.FileProvider {
	if sampleAll {
		cfg.Dataset.Sample = 0
	}
	return &dataset.FileProvider{Dir: cfg.Dataset.Dir, Path: datasetFile, Seed: cfg.Dataset.Seed}
}

func runVerbalize(cmd *cobra.Command, args []string) error {
	benchmark := args[0]
	if err := bindFlags(cmd, datasetFlagKeys()); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if _, err := verbalize.Lookup(benchmark); err != nil {
		return err
	}

	provider := newProvider(cfg)
	records, err := provider.Load(context.Background(), benchmark, cfg.Dataset.Sample)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	v := verbalize.NewVerbalizer(logger)
	queries := make([]model.VerbalizedQuery, 0, len(records))
	skipped, failed := 0, 0
	for i, rec := range records {
		q, err := v.Verbalize(benchmark, rec)
		if err != nil {
			failed++
			logger.Warn("skipping record", "index", i, "error", err)
			continue
		}
		if !q.Renderable() {
			skipped++
		}
		queries = append(queries, q)
	}

	if err := pipeline.WriteJSONLFile(outPath, queries); err != nil {
		return err
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Verbalized %d records (%d unrenderable, %d failed extraction)\n", len(records), skipped, failed)
	}
	return nil
}
