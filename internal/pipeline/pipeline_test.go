package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/leakprobe/internal/dataset"
	"github.com/ppiankov/leakprobe/internal/model"
	"github.com/ppiankov/leakprobe/internal/verbalize"
)

type fakeChecker struct {
	mu      sync.Mutex
	present map[string]bool
	err     error
	seen    []string
}

func (f *fakeChecker) IsPresent(ctx context.Context, target string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, target)
	if f.err != nil {
		return false, f.err
	}
	return f.present[target], nil
}

func (f *fakeChecker) Backend() string { return model.BackendWayback }

func TestAuditor_Audit(t *testing.T) {
	checker := &fakeChecker{present: map[string]bool{"The cat sat on the red mat.": true}}
	a := NewAuditor(verbalize.NewVerbalizer(nil), checker, "run-1", nil)

	tests := []struct {
		name        string
		benchmark   string
		rec         model.Record
		wantPresent bool
		wantSkipped bool
		wantError   bool
	}{
		{
			name:        "present",
			benchmark:   "mmlu",
			rec:         model.Record{"id": "1", "question": "The ____ sat on the ____ mat.", "A": "cat, red", "answer": "A"},
			wantPresent: true,
		},
		{
			name:      "absent",
			benchmark: "ARC",
			rec:       model.Record{"id": "2", "question": "Q?", "choices": map[string]any{"label": []any{"A"}, "text": []any{"a"}}, "answerKey": "A"},
		},
		{
			name:        "unrenderable is skipped",
			benchmark:   "mmlu",
			rec:         model.Record{"id": "3", "question": "A ____ and ____.", "A": "x", "answer": "A"},
			wantSkipped: true,
		},
		{
			name:      "extraction error recorded",
			benchmark: "mmlu",
			rec:       model.Record{"id": "4", "question": "Q", "answer": "C"},
			wantError: true,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Audit(context.Background(), tt.benchmark, i, tt.rec)
			if err != nil {
				t.Fatalf("Audit failed: %v", err)
			}
			if res.RunID != "run-1" || res.Index != i || res.Backend != model.BackendWayback {
				t.Errorf("unexpected metadata: %+v", res)
			}
			if res.Present != tt.wantPresent {
				t.Errorf("present = %v, want %v", res.Present, tt.wantPresent)
			}
			if res.Skipped != tt.wantSkipped {
				t.Errorf("skipped = %v, want %v", res.Skipped, tt.wantSkipped)
			}
			if (res.Error != "") != tt.wantError {
				t.Errorf("error = %q, wantError %v", res.Error, tt.wantError)
			}
		})
	}

	if len(checker.seen) != 2 {
		t.Errorf("expected 2 presence checks (skips and errors excluded), got %v", checker.seen)
	}
}

func TestAuditor_ConfigurationErrorIsFatal(t *testing.T) {
	a := NewAuditor(verbalize.NewVerbalizer(nil), &fakeChecker{}, "run", nil)
	_, err := a.Audit(context.Background(), "squad", 0, model.Record{})
	if !errors.Is(err, verbalize.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestAuditor_PresenceErrorRecorded(t *testing.T) {
	checker := &fakeChecker{err: errors.New("status 503")}
	a := NewAuditor(verbalize.NewVerbalizer(nil), checker, "run", nil)

	res, err := a.Audit(context.Background(), "hellaswag", 0, model.Record{"ind": 1, "ctx": "A man", "endings": []any{"runs."}, "label": "0"})
	if err != nil {
		t.Fatalf("expected presence errors to be recorded, got %v", err)
	}
	if !strings.Contains(res.Error, "503") {
		t.Errorf("expected recorded error, got %q", res.Error)
	}
	if q := res.Query.Query; q == nil || *q != "A man runs." {
		t.Errorf("expected query to be kept, got %v", q)
	}
}

func TestAuditor_CancelledIsFatal(t *testing.T) {
	checker := &fakeChecker{err: context.Canceled}
	a := NewAuditor(verbalize.NewVerbalizer(nil), checker, "run", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Audit(ctx, "hellaswag", 0, model.Record{"ind": 1, "ctx": "A man", "endings": []any{"runs."}, "label": "0"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPipeline_Run(t *testing.T) {
	var mu sync.Mutex
	var queried []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("url")
		mu.Lock()
		queried = append(queried, q)
		mu.Unlock()
		if strings.Contains(q, "doctor") {
			_, _ = fmt.Fprintln(w, "capture")
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	lines := []string{
		`{"id":"a","question":"She is a","A":"doctor","answer":"A"}`,
		`{"id":"b","question":"He is a","A":"pilot","answer":"A"}`,
		`{"id":"c","question":"A ____ and ____.","A":"x","answer":"A"}`,
		`{"id":"d","question":"Q","answer":"Z"}`,
	}
	if err := os.WriteFile(filepath.Join(dir, "mmlu.jsonl"), []byte(strings.Join(lines, "\n")), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := model.DefaultConfig()
	cfg.Archive.CumulativeIndexURL = server.URL + "/cdx/search/cdx"
	cfg.Archive.RequestsPerSecond = 0
	cfg.Cache.Enabled = false
	cfg.Dataset.Sample = 0
	cfg.HTTP.Timeout = 5 * time.Second

	p, err := NewPipeline(context.Background(), cfg, &dataset.FileProvider{Dir: dir}, noopLogger())
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	run, err := p.Run(context.Background(), "mmlu")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	s := run.Summary
	if s.Total != 4 || s.Present != 1 || s.Absent != 1 || s.Skipped != 1 || s.Errors != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.RunID == "" || run.Results[0].RunID != s.RunID {
		t.Error("expected results to carry the run id")
	}
	if len(queried) != 2 {
		t.Errorf("expected 2 archive lookups, got %v", queried)
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, run.Results); err != nil {
		t.Fatal(err)
	}
	outLines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(outLines) != 4 {
		t.Fatalf("expected 4 JSONL lines, got %d", len(outLines))
	}
	var first model.AuditResult
	if err := json.Unmarshal([]byte(outLines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if !first.Present || first.Query.Query == nil || *first.Query.Query != "She is a doctor" {
		t.Errorf("unexpected first result: %+v", first)
	}
	if !strings.Contains(outLines[2], `"query":null`) {
		t.Errorf("expected unrenderable query to encode as null: %s", outLines[2])
	}
}

func TestPipeline_RunUnknownBenchmark(t *testing.T) {
	cfg := model.DefaultConfig()
	p, err := NewPipeline(context.Background(), cfg, &dataset.FileProvider{Dir: t.TempDir()}, noopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background(), "squad"); !errors.Is(err, verbalize.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewChecker_CommonCrawlCatalogFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := model.DefaultConfig()
	cfg.Archive.Backend = model.BackendCommonCrawl
	cfg.Archive.CatalogURL = server.URL + "/collinfo.json"
	cfg.Cache.Enabled = false

	if _, err := NewChecker(context.Background(), cfg, noopLogger()); err == nil {
		t.Fatal("expected catalog failure to abort checker construction")
	}
}

func TestWriteJSONLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.jsonl")
	items := []model.AuditSummary{{Benchmark: "mmlu", Total: 1}}
	if err := WriteJSONLFile(path, items); err != nil {
		t.Fatalf("WriteJSONLFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"benchmark":"mmlu"`) {
		t.Errorf("unexpected file contents: %s", data)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, model.AuditSummary{RunID: "r", Benchmark: "ARC", Total: 3, Present: 1, Absent: 1, Skipped: 1})
	if !strings.Contains(buf.String(), "Audit Summary: ARC") || !strings.Contains(buf.String(), "Skipped:  1") {
		t.Errorf("unexpected summary output:\n%s", buf.String())
	}
}

func TestNewLimiter_AppliesHostRates(t *testing.T) {
	cfg := model.DefaultConfig().Archive
	cfg.RequestsPerSecond = 0
	cfg.HostRates = []model.HostRate{
		{Host: "index.commoncrawl.org", RequestsPerSecond: 0.1, Burst: 1},
		{Host: "", RequestsPerSecond: 0.1},
	}
	limiter := NewLimiter(cfg)

	waitsBriefly := func(rawURL string) bool {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		return limiter.Wait(ctx, rawURL) == nil
	}

	slow := "https://index.commoncrawl.org/CC-MAIN-2019-47-index?url=x"
	if !waitsBriefly(slow) {
		t.Fatal("first request to the slow host should pass")
	}
	if waitsBriefly(slow) {
		t.Error("expected the host override to throttle the second request")
	}
	for i := 0; i < 5; i++ {
		if !waitsBriefly("https://web.archive.org/cdx/search/cdx?url=x") {
			t.Fatalf("request %d to an unthrottled host was delayed", i)
		}
	}
}
