package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/leakprobe/internal/model"
)

// WriteJSONL writes one JSON document per line
func WriteJSONL[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("encode item %d: %w", i, err)
		}
	}
	return nil
}

// WriteJSONLFile writes items to path, or stdout when path is "-" or empty
func WriteJSONLFile[T any](path string, items []T) (err error) {
	if path == "" || path == "-" {
		return WriteJSONL(os.Stdout, items)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}
	}()

	return WriteJSONL(f, items)
}

// RenderSummary prints the run tally
func RenderSummary(w io.Writer, s model.AuditSummary) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Audit Summary: %s\n", s.Benchmark)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Run:      %s\n", s.RunID)
	fmt.Fprintf(w, "  Records:  %d\n", s.Total)
	fmt.Fprintf(w, "  Present:  %d\n", s.Present)
	fmt.Fprintf(w, "  Absent:   %d\n", s.Absent)
	fmt.Fprintf(w, "  Skipped:  %d\n", s.Skipped)
	fmt.Fprintf(w, "  Errors:   %d\n", s.Errors)
	fmt.Fprintf(w, "\n")
}
