package verbalize

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ppiankov/leakprobe/internal/model"
)

// LabelRule extracts the gold answer text from a record
type LabelRule func(rec model.Record) (string, error)

// OptionByAnswer reads the answer key from answerField and returns the field
// named prefix+key, e.g. answer "2" selects "option2".
func OptionByAnswer(answerField, prefix string) LabelRule {
	return func(rec model.Record) (string, error) {
		key, err := stringField(rec, answerField)
		if err != nil {
			return "", err
		}
		return stringField(rec, prefix+key)
	}
}

// FieldByAnswer reads the answer key from answerField and returns the field
// it names, e.g. answer "B" selects field "B".
func FieldByAnswer(answerField string) LabelRule {
	return func(rec model.Record) (string, error) {
		key, err := stringField(rec, answerField)
		if err != nil {
			return "", err
		}
		return stringField(rec, key)
	}
}

// IndexedChoice returns listField[int(indexField)]
func IndexedChoice(listField, indexField string) LabelRule {
	return func(rec model.Record) (string, error) {
		raw, err := stringField(rec, indexField)
		if err != nil {
			return "", err
		}
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return "", &ExtractionError{Field: indexField, Reason: fmt.Sprintf("not an integer: %q", raw)}
		}
		items, err := listValue(rec, listField)
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(items) {
			return "", &ExtractionError{Field: listField, Reason: fmt.Sprintf("index %d out of range [0,%d)", idx, len(items))}
		}
		s, ok := scalarString(items[idx])
		if !ok {
			return "", &ExtractionError{Field: listField, Reason: fmt.Sprintf("element %d is not text", idx)}
		}
		return s, nil
	}
}

// KeyedChoice resolves keyField against choicesField.label and returns the
// matching entry of choicesField.text.
func KeyedChoice(choicesField, keyField string) LabelRule {
	return func(rec model.Record) (string, error) {
		key, err := stringField(rec, keyField)
		if err != nil {
			return "", err
		}
		raw, ok := rec[choicesField]
		if !ok {
			return "", &ExtractionError{Field: choicesField, Reason: "missing"}
		}
		choices, ok := raw.(map[string]any)
		if !ok {
			return "", &ExtractionError{Field: choicesField, Reason: "not an object"}
		}
		sub := model.Record(choices)
		labels, err := listValue(sub, "label")
		if err != nil {
			return "", withParent(err, choicesField)
		}
		texts, err := listValue(sub, "text")
		if err != nil {
			return "", withParent(err, choicesField)
		}
		for i, l := range labels {
			if s, ok := scalarString(l); ok && s == key {
				if i >= len(texts) {
					return "", &ExtractionError{Field: choicesField + ".text", Reason: fmt.Sprintf("no text for label %q", key)}
				}
				text, ok := scalarString(texts[i])
				if !ok {
					return "", &ExtractionError{Field: choicesField + ".text", Reason: fmt.Sprintf("element %d is not text", i)}
				}
				return text, nil
			}
		}
		return "", &ExtractionError{Field: choicesField + ".label", Reason: fmt.Sprintf("answer key %q not found", key)}
	}
}

func stringField(rec model.Record, field string) (string, error) {
	raw, ok := rec[field]
	if !ok || raw == nil {
		return "", &ExtractionError{Field: field, Reason: "missing"}
	}
	s, ok := scalarString(raw)
	if !ok {
		return "", &ExtractionError{Field: field, Reason: fmt.Sprintf("unsupported type %T", raw)}
	}
	return s, nil
}

func listValue(rec model.Record, field string) ([]any, error) {
	raw, ok := rec[field]
	if !ok {
		return nil, &ExtractionError{Field: field, Reason: "missing"}
	}
	switch v := raw.(type) {
	case []any:
		return v, nil
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, nil
	default:
		return nil, &ExtractionError{Field: field, Reason: "not a list"}
	}
}

func withParent(err error, parent string) error {
	if ee, ok := err.(*ExtractionError); ok {
		ee.Field = parent + "." + ee.Field
	}
	return err
}

// scalarString renders scalar JSON values the way they appear in the source
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
