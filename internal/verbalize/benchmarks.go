package verbalize

import (
	"fmt"
	"sort"
)

// BlankPolicy selects how answers are merged into a question
type BlankPolicy int

const (
	// NoBlank appends the answer after a single space
	NoBlank BlankPolicy = iota
	// SingleUnderscore replaces "_" with the whole answer
	SingleUnderscore
	// MultiUnderscore replaces each run of two or more underscores with one
	// answer fragment
	MultiUnderscore
)

func (p BlankPolicy) String() string {
	switch p {
	case SingleUnderscore:
		return "single-underscore"
	case MultiUnderscore:
		return "multi-underscore"
	default:
		return "no-blank"
	}
}

// Benchmark is the per-benchmark extraction and rendering configuration
type Benchmark struct {
	Name       string
	InputField string
	IDField    string
	Label      LabelRule
	Policy     BlankPolicy

	// Descriptive metadata for the source dataset
	Language        string
	RecallThreshold float64
	HFName          string
	Split           string
}

var benchmarks = map[string]Benchmark{
	"winogrande": {
		Name: "winogrande", InputField: "sentence", IDField: "id",
		Label: OptionByAnswer("answer", "option"), Policy: SingleUnderscore,
		Language: "en-US", RecallThreshold: 0.7,
		HFName: "liyucheng/winogrande_val", Split: "validation",
	},
	"ceval": {
		Name: "ceval", InputField: "question", IDField: "id",
		Label: FieldByAnswer("answer"), Policy: MultiUnderscore,
		Language: "zh-CN", RecallThreshold: 0.8,
		HFName: "liyucheng/ceval_all", Split: "val",
	},
	"mmlu": {
		Name: "mmlu", InputField: "question", IDField: "id",
		Label: FieldByAnswer("answer"), Policy: MultiUnderscore,
		Language: "en-US", RecallThreshold: 0.7,
		HFName: "liyucheng/mmlu_test", Split: "train",
	},
	"hellaswag": {
		Name: "hellaswag", InputField: "ctx", IDField: "ind",
		Label: IndexedChoice("endings", "label"), Policy: NoBlank,
		Language: "en-US", RecallThreshold: 0.7,
		HFName: "Rowan/hellaswag", Split: "validation",
	},
	"ARC": {
		Name: "ARC", InputField: "question", IDField: "id",
		Label: KeyedChoice("choices", "answerKey"), Policy: NoBlank,
		Language: "en-US", RecallThreshold: 0.7,
		HFName: "liyucheng/arc_test", Split: "test",
	},
	"commonsense_qa": {
		Name: "commonsense_qa", InputField: "question", IDField: "id",
		Label: KeyedChoice("choices", "answerKey"), Policy: NoBlank,
		Language: "en-US", RecallThreshold: 0.7,
		HFName: "commonsense_qa", Split: "validation",
	},
}

// Lookup returns the configuration for a benchmark
func Lookup(name string) (Benchmark, error) {
	b, ok := benchmarks[name]
	if !ok {
		return Benchmark{}, fmt.Errorf("%w: %q", ErrConfiguration, name)
	}
	return b, nil
}

// Names returns all configured benchmark names, sorted
func Names() []string {
	names := make([]string, 0, len(benchmarks))
	for name := range benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
