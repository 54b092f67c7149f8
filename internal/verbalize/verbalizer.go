package verbalize

import (
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/ppiankov/leakprobe/internal/model"
)

// multiBlankToken marks an input as having multi-underscore blanks
const multiBlankToken = "____"

var blankRun = regexp.MustCompile(`_{2,}`)

// answerDelimiters are tried in order; the first one present in the answer
// wins.
var answerDelimiters = []string{"，", ",", "；"}

// Verbalizer renders benchmark records into archive queries
type Verbalizer struct {
	logger *slog.Logger
}

// NewVerbalizer creates a verbalizer. A nil logger discards output.
func NewVerbalizer(logger *slog.Logger) *Verbalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Verbalizer{logger: logger}
}

// Verbalize extracts id, input and label from rec and renders its query.
// An unrenderable record yields a result with a nil Query and no error.
func (v *Verbalizer) Verbalize(benchmark string, rec model.Record) (model.VerbalizedQuery, error) {
	b, err := Lookup(benchmark)
	if err != nil {
		return model.VerbalizedQuery{}, err
	}

	id, ok := rec[b.IDField]
	if !ok {
		return model.VerbalizedQuery{}, &ExtractionError{Benchmark: b.Name, Field: b.IDField, Reason: "missing"}
	}
	input, err := stringField(rec, b.InputField)
	if err != nil {
		return model.VerbalizedQuery{}, tagBenchmark(err, b.Name)
	}
	label, err := b.Label(rec)
	if err != nil {
		return model.VerbalizedQuery{}, tagBenchmark(err, b.Name)
	}

	out := model.VerbalizedQuery{ID: id, Input: input, Label: label}

	query, fragments, ok := fill(b.Policy, input, label)
	if !ok {
		v.logger.Debug("blanks and answers do not align", "benchmark", b.Name, "id", id, "label", label)
		return out, nil
	}
	// Empty fragments are substituted as-is but worth surfacing
	if len(fragments) > 1 && slices.Contains(fragments, "") {
		v.logger.Debug("empty answer fragment", "benchmark", b.Name, "id", id, "label", label)
	}

	out.Label = strings.Join(fragments, " ")
	out.Query = &query
	return out, nil
}

// FillBlanks merges answer into question according to policy. It returns the
// rendered query, the label actually substituted, and false when the number
// of blanks and answer fragments disagree.
func FillBlanks(policy BlankPolicy, question, answer string) (string, string, bool) {
	query, fragments, ok := fill(policy, question, answer)
	if !ok {
		return "", "", false
	}
	return query, strings.Join(fragments, " "), true
}

func fill(policy BlankPolicy, question, answer string) (string, []string, bool) {
	appended := question + " " + answer
	whole := []string{answer}

	switch policy {
	case SingleUnderscore:
		if !strings.Contains(question, "_") {
			return appended, whole, true
		}
		return strings.ReplaceAll(question, "_", answer), whole, true

	case MultiUnderscore:
		if !strings.Contains(question, multiBlankToken) {
			return appended, whole, true
		}
		fragments, ok := splitAnswer(answer, len(blankRun.FindAllStringIndex(question, -1)))
		if !ok {
			return "", nil, false
		}
		next := 0
		query := blankRun.ReplaceAllStringFunc(question, func(string) string {
			f := fragments[next]
			next++
			return f
		})
		return query, fragments, true

	default:
		return appended, whole, true
	}
}

// splitAnswer splits answer into exactly blanks fragments
func splitAnswer(answer string, blanks int) ([]string, bool) {
	if blanks <= 1 {
		return []string{answer}, true
	}
	for _, delim := range answerDelimiters {
		if !strings.Contains(answer, delim) {
			continue
		}
		parts := strings.Split(answer, delim)
		if len(parts) != blanks {
			return nil, false
		}
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		return parts, true
	}
	return nil, false
}

func tagBenchmark(err error, name string) error {
	var ee *ExtractionError
	if errors.As(err, &ee) && ee.Benchmark == "" {
		ee.Benchmark = name
	}
	return err
}
