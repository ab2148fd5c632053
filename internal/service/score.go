package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/talentprove/assess-backend/internal/model"
)

// scoreReport is the frozen output of the scoring aggregator.
type scoreReport struct {
	SectionScores []model.SectionScore
	TotalScore    float64
	MaxScore      float64
	Percentage    float64
	Analytics     model.Analytics
}

// aggregateScores rolls per-answer marks into per-section scores and
// attempt-level analytics. Wrong answers contribute negative deltas to the
// running section sum, but a section's reported obtained marks is floored
// at zero: negative marking can zero out a section, never push the
// assessment total below zero.
func aggregateScores(assessment *model.Assessment, sub *model.Submission, answers []*model.Answer, now time.Time) scoreReport {
	bySection := make(map[uuid.UUID][]*model.Answer, len(assessment.Sections))
	for _, a := range answers {
		bySection[a.SectionID] = append(bySection[a.SectionID], a)
	}

	report := scoreReport{
		SectionScores: make([]model.SectionScore, 0, len(assessment.Sections)),
	}

	for i := range assessment.Sections {
		sec := &assessment.Sections[i]
		secAnswers := bySection[sec.ID]

		ss := model.SectionScore{
			SectionID:       sec.ID,
			Title:           sec.Title,
			TimeUsedSeconds: sub.SectionUsage[sec.ID],
		}

		// Prefer the sum of recorded answer maxMarks so totals stay
		// consistent with whatever values the client actually used.
		// Fall back to configuration when no answers exist yet.
		var rawObtained float64
		attempted := 0
		for _, a := range secAnswers {
			ss.MaxMarks += a.MaxMarks
			if !a.Attempted() {
				continue
			}
			attempted++
			if a.MarksObtained == nil {
				continue
			}
			rawObtained += *a.MarksObtained
			if *a.MarksObtained < 0 {
				ss.NegativeDeduction += -*a.MarksObtained
			}
			if a.IsCorrect != nil && *a.IsCorrect {
				ss.Correct++
			} else {
				ss.Wrong++
			}
		}
		if len(secAnswers) == 0 {
			ss.MaxMarks = float64(sec.QuestionCount) * sec.MarksPerQuestion
			for _, p := range sec.Problems {
				ss.MaxMarks += p.Marks
			}
		}

		ss.Unattempted = sectionItemCount(sec) - attempted
		if ss.Unattempted < 0 {
			ss.Unattempted = 0
		}

		ss.ObtainedMarks = rawObtained
		if ss.ObtainedMarks < 0 {
			ss.ObtainedMarks = 0
		}

		report.TotalScore += ss.ObtainedMarks
		report.MaxScore += ss.MaxMarks

		report.Analytics.TotalQuestions += sectionItemCount(sec)
		report.Analytics.Attempted += attempted
		report.Analytics.Correct += ss.Correct
		report.Analytics.Wrong += ss.Wrong
		report.Analytics.Unattempted += ss.Unattempted
		report.Analytics.NegativeDeducted += ss.NegativeDeduction

		report.SectionScores = append(report.SectionScores, ss)
	}

	if report.MaxScore > 0 {
		report.Percentage = report.TotalScore / report.MaxScore * 100
	}

	// Recorded per-section usage excludes idle time between sections, so
	// prefer it over raw submit-minus-start wall clock when present.
	report.Analytics.TimeTakenSeconds = sub.SectionUsage.Total()
	if report.Analytics.TimeTakenSeconds == 0 {
		report.Analytics.TimeTakenSeconds = int64(now.Sub(sub.StartedAt).Seconds())
	}

	report.Analytics.Verdict = model.Verdict{Status: model.VerdictPending}
	return report
}

// sectionItemCount returns the number of scoreable items in a section.
func sectionItemCount(sec *model.Section) int {
	n := sec.QuestionCount
	if n == 0 {
		n = len(sec.Questions)
	}
	return n + len(sec.Problems)
}

// freezeRunningSection folds the live elapsed time of the currently
// running section into SectionUsage and clears the running state. Called
// once during submit so recorded usage is final.
func freezeRunningSection(sub *model.Submission, now time.Time) {
	if !sub.SectionRunning() {
		return
	}
	if elapsed := int64(now.Sub(*sub.SectionStartedAt).Seconds()); elapsed > 0 {
		if sub.SectionUsage == nil {
			sub.SectionUsage = model.SectionUsage{}
		}
		sub.SectionUsage[*sub.CurrentSectionID] += elapsed
	}
	sub.CurrentSectionID = nil
	sub.SectionStartedAt = nil
}
