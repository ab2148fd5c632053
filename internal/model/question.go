package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeFillBlank      QuestionType = "FILL_BLANK"
)

// Question is one item inside a section. The correct answer is stored as
// raw JSON in the database and resolved into a typed AnswerKey once at load
// time, so evaluation never re-parses it.
type Question struct {
	ID         uuid.UUID       `json:"id"`
	SectionID  uuid.UUID       `json:"section_id"`
	Text       string          `json:"text"`
	Type       QuestionType    `json:"type"`
	Options    json.RawMessage `json:"options,omitempty"`
	CorrectRaw json.RawMessage `json:"-"`
	Key        AnswerKey       `json:"-"`
	Marks      float64         `json:"marks"`
	OrderNum   int             `json:"order_num"`
}

// AnswerKey is the typed correct-answer for one question. Exactly one
// concrete key type exists per question type.
type AnswerKey interface {
	answerKey()
}

// SingleChoiceKey matches when the stored answer equals Correct after trimming.
type SingleChoiceKey struct {
	Correct string
}

// MultipleChoiceKey matches when the selected set equals Correct as a set.
type MultipleChoiceKey struct {
	Correct []string
}

// FillBlankKey matches under case-insensitive, trimmed comparison.
type FillBlankKey struct {
	Expected string
}

func (SingleChoiceKey) answerKey()   {}
func (MultipleChoiceKey) answerKey() {}
func (FillBlankKey) answerKey()      {}

// ResolveKey parses the question's raw correct-answer field into its typed
// AnswerKey. Call once when loading assessment configuration.
func (q *Question) ResolveKey() error {
	key, err := ResolveAnswerKey(q.Type, q.CorrectRaw)
	if err != nil {
		return fmt.Errorf("question %s: %w", q.ID, err)
	}
	q.Key = key
	return nil
}

// ResolveAnswerKey converts a raw correct-answer value into a typed key.
// Multiple-choice keys tolerate the three shapes seen in stored data:
// a JSON array, a JSON string containing an array, or a delimited string.
func ResolveAnswerKey(qt QuestionType, raw json.RawMessage) (AnswerKey, error) {
	switch qt {
	case QuestionTypeSingleChoice:
		s, err := decodeScalar(raw)
		if err != nil {
			return nil, err
		}
		return SingleChoiceKey{Correct: strings.TrimSpace(s)}, nil
	case QuestionTypeMultipleChoice:
		opts, err := NormalizeChoiceList(raw)
		if err != nil {
			return nil, err
		}
		return MultipleChoiceKey{Correct: opts}, nil
	case QuestionTypeFillBlank:
		s, err := decodeScalar(raw)
		if err != nil {
			return nil, err
		}
		return FillBlankKey{Expected: strings.TrimSpace(s)}, nil
	default:
		return nil, fmt.Errorf("unknown question type %q", qt)
	}
}

// NormalizeChoiceList flattens any of the stored multiple-choice shapes into
// a slice of trimmed, non-empty strings.
func NormalizeChoiceList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	// Shape 1: a real JSON array.
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return trimAll(arr), nil
	}

	// Shapes 2 and 3 arrive as JSON strings.
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unsupported choice-list shape: %s", string(raw))
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	// Shape 2: a stringified JSON array, e.g. "[\"A\",\"C\"]".
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			return trimAll(arr), nil
		}
	}

	// Shape 3: a delimited string, e.g. "A,C" or "A;C".
	sep := ","
	if !strings.Contains(s, ",") && strings.Contains(s, ";") {
		sep = ";"
	}
	return trimAll(strings.Split(s, sep)), nil
}

func decodeScalar(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	// Numbers and booleans keep their literal text.
	return strings.TrimSpace(string(raw)), nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
