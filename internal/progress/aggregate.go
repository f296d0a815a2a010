package progress

import (
	"sort"
	"time"

	"niyamtrack/internal/models"
	"niyamtrack/internal/niyam"
)

// maxStreakDays caps the streak walk so a pathological store cannot loop
const maxStreakDays = 365

// DayPoints is one day's points in the weekly chart
type DayPoints struct {
	DateKey string `json:"dateKey"`
	Label   string `json:"label"`
	Points  int    `json:"points"`
}

// NiyamProgress counts, per niyam, how many tracked days completed it
type NiyamProgress struct {
	TotalDays int            `json:"totalDays"`
	Completed map[string]int `json:"completed"`
}

// Aggregator computes totals, streaks and per-niyam statistics over one
// account's stored progress.
type Aggregator struct {
	store Store
	now   func() time.Time
}

// NewAggregator creates an aggregator over s
func NewAggregator(s Store) *Aggregator {
	return &Aggregator{store: s, now: time.Now}
}

// DateKeys lists every date the account has any checklist or points entry
// for, sorted ascending.
func (a *Aggregator) DateKeys(accountKey string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, prefix := range []string{PrefixPoints, PrefixChecklist} {
		scopedPrefix := ScopedPrefix(prefix, accountKey)
		keys, err := a.store.KeysWithPrefix(scopedPrefix)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			seen[key[len(scopedPrefix):]] = struct{}{}
		}
	}

	dateKeys := make([]string, 0, len(seen))
	for dateKey := range seen {
		dateKeys = append(dateKeys, dateKey)
	}
	sort.Strings(dateKeys)
	return dateKeys, nil
}

// PointsForDate resolves one day's points. The stored points value wins;
// absent that, the points are recomputed from the checklist against list.
// A date with neither entry, or with unreadable data, scores zero.
func (a *Aggregator) PointsForDate(accountKey, dateKey string, list []niyam.Item) (int, error) {
	rawPoints, ok, err := a.store.Get(ScopedKey(PrefixPoints, accountKey, dateKey))
	if err != nil {
		return 0, err
	}
	if ok {
		return parsePoints(rawPoints), nil
	}

	rawChecklist, ok, err := a.store.Get(ScopedKey(PrefixChecklist, accountKey, dateKey))
	if err != nil || !ok {
		return 0, err
	}
	return niyam.Points(models.ParseChecklist(rawChecklist), list), nil
}

// AllTimeTotal sums the points of every tracked day
func (a *Aggregator) AllTimeTotal(accountKey string, list []niyam.Item) (int, error) {
	dateKeys, err := a.DateKeys(accountKey)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, dateKey := range dateKeys {
		points, err := a.PointsForDate(accountKey, dateKey, list)
		if err != nil {
			return 0, err
		}
		total += points
	}
	return total, nil
}

// PerNiyam counts, for each item in list, the days it was completed.
// TotalDays is the number of days with any checklist entry at all, so the
// ratio completed/total is against days actually tracked, not calendar days.
func (a *Aggregator) PerNiyam(accountKey string, list []niyam.Item) (NiyamProgress, error) {
	result := NiyamProgress{Completed: make(map[string]int, len(list))}
	for _, item := range list {
		result.Completed[item.Key] = 0
	}

	checklistKeys, err := a.store.KeysWithPrefix(ScopedPrefix(PrefixChecklist, accountKey))
	if err != nil {
		return result, err
	}
	if len(checklistKeys) == 0 {
		return result, nil
	}
	result.TotalDays = len(checklistKeys)

	entries, err := a.store.MultiGet(checklistKeys)
	if err != nil {
		return result, err
	}
	for _, raw := range entries {
		checked := models.ParseChecklist(raw)
		for _, item := range list {
			if checked[item.Key] {
				result.Completed[item.Key]++
			}
		}
	}
	return result, nil
}

// Last7Days returns per-day points for the trailing week, oldest first
func (a *Aggregator) Last7Days(accountKey string, list []niyam.Item) ([]DayPoints, error) {
	result := make([]DayPoints, 0, 7)
	now := a.now()
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		dateKey := LocalDateKey(day)
		points, err := a.PointsForDate(accountKey, dateKey, list)
		if err != nil {
			return nil, err
		}
		result = append(result, DayPoints{
			DateKey: dateKey,
			Label:   day.Format("Mon"),
			Points:  points,
		})
	}
	return result, nil
}

// Streak counts consecutive submitted days ending at today, or at
// yesterday when today has not been submitted yet.
func (a *Aggregator) Streak(accountKey string) (int, error) {
	submittedPrefix := ScopedPrefix(PrefixSubmitted, accountKey)
	submittedKeys, err := a.store.KeysWithPrefix(submittedPrefix)
	if err != nil {
		return 0, err
	}
	if len(submittedKeys) == 0 {
		return 0, nil
	}

	entries, err := a.store.MultiGet(submittedKeys)
	if err != nil {
		return 0, err
	}
	submitted := make(map[string]struct{}, len(entries))
	for key, value := range entries {
		if value == "true" {
			submitted[key[len(submittedPrefix):]] = struct{}{}
		}
	}

	start := a.now()
	if _, ok := submitted[LocalDateKey(start)]; !ok {
		start = start.AddDate(0, 0, -1)
	}

	streak := 0
	for i := 0; i < maxStreakDays; i++ {
		dateKey := LocalDateKey(start.AddDate(0, 0, -i))
		if _, ok := submitted[dateKey]; !ok {
			break
		}
		streak++
	}
	return streak, nil
}
