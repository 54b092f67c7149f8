package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	"github.com/ppiankov/leakprobe/internal/model"
)

// Provider yields benchmark records
type Provider interface {
	// Load returns up to n records of benchmark; n <= 0 returns all
	Load(ctx context.Context, benchmark string, n int) ([]model.Record, error)
}

// FileProvider reads <Dir>/<benchmark>.jsonl, or Path when set
type FileProvider struct {
	Dir  string
	Path string
	Seed uint64
}

// Load reads the dataset file and samples it
func (p *FileProvider) Load(ctx context.Context, benchmark string, n int) ([]model.Record, error) {
	path := p.Path
	if path == "" {
		path = filepath.Join(p.Dir, benchmark+".jsonl")
	}

	records, err := ReadJSONL(ctx, path)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return records, nil
	}
	return Sample(records, n, p.Seed), nil
}

// ReadJSONL decodes one record per non-empty line. Numbers are kept as
// json.Number so ids and answer keys keep their original text.
func ReadJSONL(ctx context.Context, path string) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = file.Close() }()

	var records []model.Record
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var rec model.Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("%s:%d: decode record: %w", path, line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan dataset: %w", err)
	}
	return records, nil
}

// Sample draws n records uniformly without replacement, reproducibly for a
// given seed. Original order is kept among the chosen records. Datasets with
// at most n records are returned whole.
func Sample(records []model.Record, n int, seed uint64) []model.Record {
	if len(records) <= n {
		return records
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	picked := rng.Perm(len(records))[:n]
	sort.Ints(picked)

	out := make([]model.Record, n)
	for i, idx := range picked {
		out[i] = records[idx]
	}
	return out
}
