package service

import (
	"fmt"
	"strings"

	"github.com/talentprove/assess-backend/internal/model"
)

// ConvertJudgeScore converts the judge's 0–100 percentage into absolute
// marks for a problem worth allocatedMarks. The judge always reports a
// percentage regardless of the problem's point value, and section
// aggregation assumes absolute marks, so this conversion is mandatory.
func ConvertJudgeScore(percentage, allocatedMarks float64) (marks float64, isCorrect bool) {
	return (percentage / 100) * allocatedMarks, percentage == 100
}

// evaluateAnswer computes correctness and marks for one answer in place.
// Answers that already carry marks (client pre-scored, or a cached judge
// result converted at save time) are skipped: cached coding results are
// reused verbatim, never re-executed. Unattempted answers are left alone;
// the aggregator counts them separately.
func evaluateAnswer(assessment *model.Assessment, ans *model.Answer) error {
	if ans.MarksObtained != nil {
		return nil
	}
	if !ans.Attempted() {
		return nil
	}

	sec := assessment.SectionByID(ans.SectionID)
	if sec == nil {
		return fmt.Errorf("section %s not in assessment", ans.SectionID)
	}

	// Coding answers: typing alone never earns credit. Only an explicit
	// submit-for-judging produces marks, and that path already set them.
	if ans.ProblemID != nil {
		zero := 0.0
		incorrect := false
		ans.MarksObtained = &zero
		ans.IsCorrect = &incorrect
		ans.Status = model.AnswerStatusEvaluated
		return nil
	}

	q := sec.QuestionByID(*ans.QuestionID)
	if q == nil {
		return fmt.Errorf("question %s not in section %s", ans.QuestionID, sec.ID)
	}
	if q.Key == nil {
		if err := q.ResolveKey(); err != nil {
			return err
		}
	}

	correct := matchKey(q.Key, ans.SelectedAnswer)

	var marks float64
	if correct {
		marks = ans.MaxMarks
	} else {
		marks = -(ans.MaxMarks * sec.NegativeMarkingRate)
	}

	ans.MarksObtained = &marks
	ans.IsCorrect = &correct
	ans.Status = model.AnswerStatusEvaluated
	return nil
}

// matchKey checks a candidate selection against the typed answer key.
func matchKey(key model.AnswerKey, selected model.FlexStrings) bool {
	switch k := key.(type) {
	case model.SingleChoiceKey:
		if len(selected) != 1 {
			return false
		}
		return strings.TrimSpace(selected[0]) == k.Correct
	case model.MultipleChoiceKey:
		return choiceSetsEqual(k.Correct, selected)
	case model.FillBlankKey:
		if len(selected) != 1 {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(selected[0]), k.Expected)
	default:
		return false
	}
}

// choiceSetsEqual compares two choice lists as sets of trimmed strings,
// so ["A","C"] and ["C","A"] are judged identical.
func choiceSetsEqual(want, got []string) bool {
	wantSet := make(map[string]struct{}, len(want))
	for _, v := range want {
		wantSet[strings.TrimSpace(v)] = struct{}{}
	}
	gotSet := make(map[string]struct{}, len(got))
	for _, v := range got {
		if t := strings.TrimSpace(v); t != "" {
			gotSet[t] = struct{}{}
		}
	}
	if len(wantSet) != len(gotSet) {
		return false
	}
	for v := range wantSet {
		if _, ok := gotSet[v]; !ok {
			return false
		}
	}
	return true
}
