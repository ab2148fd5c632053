package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/talentprove/assess-backend/internal/model"
)

// GraceSeconds is the buffer added to a time limit before a late write is
// rejected, absorbing client and network latency.
const GraceSeconds = 10

// UnlimitedTimeLeft is the sentinel reported when no limit is configured.
const UnlimitedTimeLeft = -1

// TimerStatus labels the state of one clock.
type TimerStatus string

const (
	TimerStatusIdle    TimerStatus = "idle"
	TimerStatusRunning TimerStatus = "running"
	TimerStatusPaused  TimerStatus = "paused"
	TimerStatusExpired TimerStatus = "expired"
)

// SectionTimer is the point-in-time clock state of one section.
type SectionTimer struct {
	SectionID       uuid.UUID   `json:"section_id"`
	Title           string      `json:"title"`
	UsedSeconds     int64       `json:"used_seconds"`
	LimitSeconds    int64       `json:"limit_seconds"`     // 0 = unlimited
	TimeLeftSeconds int64       `json:"time_left_seconds"` // -1 = unlimited
	Status          TimerStatus `json:"status"`
}

// TimerSnapshot is the full timer view returned to clients. In SECTION
// mode the primary fields mirror the currently running section (or the
// first section as an idle preview before any section is entered).
type TimerSnapshot struct {
	TimeMode        model.TimeMode `json:"time_mode"`
	Status          TimerStatus    `json:"status"`
	UsedSeconds     int64          `json:"used_seconds"`
	LimitSeconds    int64          `json:"limit_seconds"`
	TimeLeftSeconds int64          `json:"time_left_seconds"`
	Sections        []SectionTimer `json:"sections,omitempty"`
}

// sectionUsedSeconds returns the raw accumulated + live elapsed seconds for
// one section, unclamped. Only the currently entered section accrues live time.
func sectionUsedSeconds(sub *model.Submission, sectionID uuid.UUID, now time.Time) int64 {
	used := sub.SectionUsage[sectionID]
	if sub.SectionRunning() && *sub.CurrentSectionID == sectionID {
		if elapsed := int64(now.Sub(*sub.SectionStartedAt).Seconds()); elapsed > 0 {
			used += elapsed
		}
	}
	return used
}

// globalUsedSeconds returns the raw seconds elapsed since the attempt
// started, unclamped. The global clock never pauses.
func globalUsedSeconds(sub *model.Submission, now time.Time) int64 {
	if elapsed := int64(now.Sub(sub.StartedAt).Seconds()); elapsed > 0 {
		return elapsed
	}
	return 0
}

// clockState derives the reported (used, left, status) triple from a raw
// usage value and a limit. A zero limit means unlimited.
func clockState(rawUsed, limit int64, running bool) (used, left int64, status TimerStatus) {
	used = rawUsed
	if limit > 0 && used > limit {
		used = limit
	}

	left = UnlimitedTimeLeft
	if limit > 0 {
		left = limit - used
	}

	switch {
	case limit > 0 && rawUsed >= limit:
		status = TimerStatusExpired
	case running:
		status = TimerStatusRunning
	case used > 0:
		status = TimerStatusPaused
	default:
		status = TimerStatusIdle
	}
	return used, left, status
}

// sectionTimer computes the clock view of one section.
func sectionTimer(sub *model.Submission, sec *model.Section, now time.Time) SectionTimer {
	running := sub.SectionRunning() && *sub.CurrentSectionID == sec.ID
	raw := sectionUsedSeconds(sub, sec.ID, now)
	used, left, status := clockState(raw, sec.TimeLimitSeconds(), running)

	return SectionTimer{
		SectionID:       sec.ID,
		Title:           sec.Title,
		UsedSeconds:     used,
		LimitSeconds:    sec.TimeLimitSeconds(),
		TimeLeftSeconds: left,
		Status:          status,
	}
}

// BuildTimerSnapshot computes the read-only timer view for an attempt.
// It never mutates the submission, so callers may invoke it without the
// per-submission lock.
func BuildTimerSnapshot(assessment *model.Assessment, sub *model.Submission, now time.Time) TimerSnapshot {
	if assessment.TimeMode == model.TimeModeGlobal {
		raw := globalUsedSeconds(sub, now)
		running := !sub.Status.Completed()
		used, left, status := clockState(raw, assessment.GlobalDurationSeconds(), running)
		return TimerSnapshot{
			TimeMode:        model.TimeModeGlobal,
			Status:          status,
			UsedSeconds:     used,
			LimitSeconds:    assessment.GlobalDurationSeconds(),
			TimeLeftSeconds: left,
		}
	}

	snap := TimerSnapshot{
		TimeMode: model.TimeModeSection,
		Sections: make([]SectionTimer, 0, len(assessment.Sections)),
	}

	var primary *SectionTimer
	for i := range assessment.Sections {
		st := sectionTimer(sub, &assessment.Sections[i], now)
		snap.Sections = append(snap.Sections, st)
		if sub.CurrentSectionID != nil && st.SectionID == *sub.CurrentSectionID {
			primary = &snap.Sections[len(snap.Sections)-1]
		}
	}

	if primary == nil && len(snap.Sections) > 0 {
		// No section entered yet: surface the first section's full budget
		// as an idle preview so clients never render "0/0".
		primary = &snap.Sections[0]
	}

	if primary != nil {
		snap.Status = primary.Status
		snap.UsedSeconds = primary.UsedSeconds
		snap.LimitSeconds = primary.LimitSeconds
		snap.TimeLeftSeconds = primary.TimeLeftSeconds
	}
	return snap
}

// enterSection mutates the submission's timer state to make sectionID the
// running section. Re-entering the running section is a no-op. Leaving a
// section freezes its elapsed time into SectionUsage; entering always
// starts a fresh interval on top of any previously accumulated usage.
// Callers must hold the per-submission lock and persist the submission.
func enterSection(sub *model.Submission, sectionID uuid.UUID, now time.Time) (changed bool) {
	if sub.SectionRunning() && *sub.CurrentSectionID == sectionID {
		return false
	}

	if sub.SectionRunning() {
		prev := *sub.CurrentSectionID
		if elapsed := int64(now.Sub(*sub.SectionStartedAt).Seconds()); elapsed > 0 {
			if sub.SectionUsage == nil {
				sub.SectionUsage = model.SectionUsage{}
			}
			sub.SectionUsage[prev] += elapsed
		}
		sub.CurrentSectionID = nil
		sub.SectionStartedAt = nil
	}

	sid := sectionID
	at := now
	sub.CurrentSectionID = &sid
	sub.SectionStartedAt = &at
	return true
}

// relevantElapsed returns the elapsed seconds and limit the time guard
// must check for a write targeting sectionID. In SECTION mode only the
// target section's clock matters; in GLOBAL mode the attempt-wide clock.
func relevantElapsed(assessment *model.Assessment, sub *model.Submission, sectionID uuid.UUID, now time.Time) (elapsed, limit int64) {
	if assessment.TimeMode == model.TimeModeSection {
		limit = 0
		if sec := assessment.SectionByID(sectionID); sec != nil {
			limit = sec.TimeLimitSeconds()
		}
		return sectionUsedSeconds(sub, sectionID, now), limit
	}
	return globalUsedSeconds(sub, now), assessment.GlobalDurationSeconds()
}

// checkTimeGuard rejects a write when its relevant clock has run more than
// GraceSeconds past the configured limit. Unlimited clocks never reject.
func checkTimeGuard(assessment *model.Assessment, sub *model.Submission, sectionID uuid.UUID, now time.Time) error {
	elapsed, limit := relevantElapsed(assessment, sub, sectionID, now)
	if limit > 0 && elapsed > limit+GraceSeconds {
		return ErrTimeExpired
	}
	return nil
}
