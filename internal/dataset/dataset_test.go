package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/leakprobe/internal/model"
)

func writeDataset(t *testing.T, dir, name string, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "{\"id\":%d,\"question\":\"q%d\"}\n", i, i)
		if i%3 == 0 {
			b.WriteString("\n")
		}
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func ids(records []model.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r["id"].(json.Number).String()
	}
	return out
}

func TestReadJSONL(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "mmlu.jsonl", 5)

	records, err := ReadJSONL(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadJSONL failed: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	if _, ok := records[0]["id"].(json.Number); !ok {
		t.Errorf("expected json.Number id, got %T", records[0]["id"])
	}
}

func TestReadJSONL_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\":1}\n{oops\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadJSONL(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected error naming line 2, got %v", err)
	}
}

func TestReadJSONL_Missing(t *testing.T) {
	if _, err := ReadJSONL(context.Background(), "no_such_dataset.jsonl"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSample_Reproducible(t *testing.T) {
	records := make([]model.Record, 100)
	for i := range records {
		records[i] = model.Record{"id": json.Number(fmt.Sprint(i))}
	}

	a := ids(Sample(records, 10, 42))
	b := ids(Sample(records, 10, 42))
	if strings.Join(a, ",") != strings.Join(b, ",") {
		t.Errorf("expected same sample for same seed: %v vs %v", a, b)
	}

	seen := make(map[string]bool)
	for _, id := range a {
		if seen[id] {
			t.Fatalf("sample drew %s twice", id)
		}
		seen[id] = true
	}
	if len(a) != 10 {
		t.Errorf("expected 10 records, got %d", len(a))
	}

	c := ids(Sample(records, 10, 7))
	if strings.Join(a, ",") == strings.Join(c, ",") {
		t.Error("expected a different sample for a different seed")
	}
}

func TestSample_SmallDataset(t *testing.T) {
	records := []model.Record{{"id": json.Number("1")}, {"id": json.Number("2")}}
	if got := Sample(records, 5, 42); len(got) != 2 {
		t.Errorf("expected whole dataset, got %d records", len(got))
	}
}

func TestFileProvider_Load(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "ARC.jsonl", 20)

	p := &FileProvider{Dir: dir, Seed: 42}
	all, err := p.Load(context.Background(), "ARC", 0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(all) != 20 {
		t.Errorf("expected all 20 records, got %d", len(all))
	}

	some, err := p.Load(context.Background(), "ARC", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(some) != 5 {
		t.Errorf("expected 5 sampled records, got %d", len(some))
	}

	explicit := &FileProvider{Path: filepath.Join(dir, "ARC.jsonl")}
	if recs, err := explicit.Load(context.Background(), "ignored", 0); err != nil || len(recs) != 20 {
		t.Errorf("expected explicit path to load 20 records, got %d %v", len(recs), err)
	}

	if _, err := p.Load(context.Background(), "hellaswag", 0); err == nil {
		t.Error("expected error for missing benchmark file")
	}
}
