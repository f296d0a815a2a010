package progress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"niyamtrack/internal/models"
	"niyamtrack/internal/niyam"
)

// editableWindowDays is how many days back from today a date stays editable
const editableWindowDays = 10

var (
	// ErrDateLocked means the date is in the future or past the editable window
	ErrDateLocked = errors.New("date can only be submitted or edited within 10 days")
	// ErrAlreadySubmitted means the day was submitted and is immutable
	ErrAlreadySubmitted = errors.New("date is already submitted and locked")
)

// Tracker reads and mutates one account's daily checklist entries. Writes
// land locally first; the cloud push afterwards is best effort.
type Tracker struct {
	store Store
	cloud CloudSync
	now   func() time.Time
}

// NewTracker creates a tracker. cloud may be nil for local-only mode.
func NewTracker(store Store, cloud CloudSync) *Tracker {
	return &Tracker{store: store, cloud: cloud, now: time.Now}
}

// LoadDay returns the stored progress for one date. When the stored points
// value is missing it is recomputed from the checklist against the
// account's niyam list and written back, healing entries from older
// versions that stored only the checklist.
func (t *Tracker) LoadDay(accountKey, dob, dateKey string) (models.DayProgress, error) {
	day := models.DayProgress{DateKey: dateKey, Checklist: models.Checklist{}}

	rawChecklist, _, err := t.store.Get(ScopedKey(PrefixChecklist, accountKey, dateKey))
	if err != nil {
		return day, err
	}
	day.Checklist = models.ParseChecklist(rawChecklist)

	rawPoints, havePoints, err := t.store.Get(ScopedKey(PrefixPoints, accountKey, dateKey))
	if err != nil {
		return day, err
	}
	if havePoints {
		day.Points = parsePoints(rawPoints)
	} else {
		day.Points = niyam.Points(day.Checklist, niyam.ListForDOB(dob))
		if err := t.store.Set(ScopedKey(PrefixPoints, accountKey, dateKey), strconv.Itoa(day.Points)); err != nil {
			return day, err
		}
	}

	rawSubmitted, _, err := t.store.Get(ScopedKey(PrefixSubmitted, accountKey, dateKey))
	if err != nil {
		return day, err
	}
	day.Submitted = rawSubmitted == "true"
	return day, nil
}

// ToggleItem flips one checklist item for a date and recomputes the day's
// points. Rejected without touching the store when the date is locked or
// already submitted.
func (t *Tracker) ToggleItem(ctx context.Context, accountKey, dob, dateKey, itemKey string) (models.DayProgress, SyncResult, error) {
	day, err := t.checkMutable(accountKey, dob, dateKey)
	if err != nil {
		return models.DayProgress{}, SyncUnavailable, err
	}

	day.Checklist[itemKey] = !day.Checklist[itemKey]
	day.Points = niyam.Points(day.Checklist, niyam.ListForDOB(dob))

	err = t.store.MultiSet(map[string]string{
		ScopedKey(PrefixChecklist, accountKey, dateKey): day.Checklist.Encode(),
		ScopedKey(PrefixPoints, accountKey, dateKey):    strconv.Itoa(day.Points),
	})
	if err != nil {
		return models.DayProgress{}, SyncUnavailable, fmt.Errorf("failed to save checklist: %w", err)
	}

	sync := pushProgress(ctx, t.cloud, models.CloudProgressRecord{
		AccountKey: accountKey,
		DateKey:    dateKey,
		Checklist:  day.Checklist,
		Points:     day.Points,
		Submitted:  day.Submitted,
	})
	return day, sync, nil
}

// SubmitDay marks a date as submitted, locking it permanently
func (t *Tracker) SubmitDay(ctx context.Context, accountKey, dob, dateKey string) (models.DayProgress, SyncResult, error) {
	day, err := t.checkMutable(accountKey, dob, dateKey)
	if err != nil {
		return models.DayProgress{}, SyncUnavailable, err
	}

	if err := t.store.Set(ScopedKey(PrefixSubmitted, accountKey, dateKey), "true"); err != nil {
		return models.DayProgress{}, SyncUnavailable, fmt.Errorf("failed to save submission: %w", err)
	}
	day.Submitted = true

	sync := pushProgress(ctx, t.cloud, models.CloudProgressRecord{
		AccountKey: accountKey,
		DateKey:    dateKey,
		Checklist:  day.Checklist,
		Points:     day.Points,
		Submitted:  true,
	})
	return day, sync, nil
}

// checkMutable loads the day and enforces the edit rules. Either error
// leaves the store untouched.
func (t *Tracker) checkMutable(accountKey, dob, dateKey string) (models.DayProgress, error) {
	within, err := t.withinEditableWindow(dateKey)
	if err != nil {
		return models.DayProgress{}, err
	}
	if !within {
		return models.DayProgress{}, ErrDateLocked
	}

	day, err := t.LoadDay(accountKey, dob, dateKey)
	if err != nil {
		return models.DayProgress{}, err
	}
	if day.Submitted {
		return models.DayProgress{}, ErrAlreadySubmitted
	}
	return day, nil
}

// withinEditableWindow reports whether dateKey is today or at most ten
// calendar days in the past. Future dates are out.
func (t *Tracker) withinEditableWindow(dateKey string) (bool, error) {
	selected, err := ParseDateKey(dateKey)
	if err != nil {
		return false, err
	}
	diff := calendarDaysBetween(selected, t.now())
	return diff >= 0 && diff <= editableWindowDays, nil
}

// calendarDaysBetween counts whole calendar days from 'from' to 'to'.
// Both are normalized to UTC midnights so DST transitions cannot skew
// the count.
func calendarDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}

// parsePoints decodes a stored points value; garbage counts as zero
func parsePoints(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
