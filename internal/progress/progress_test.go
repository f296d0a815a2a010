package progress

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"niyamtrack/internal/models"
	"niyamtrack/internal/niyam"
)

// fakeStore is an in-memory Store for tests
type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStore) Set(key, value string) error {
	f.data[key] = value
	return nil
}

func (f *fakeStore) MultiGet(keys []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, k := range keys {
		if v, ok := f.data[k]; ok {
			result[k] = v
		}
	}
	return result, nil
}

func (f *fakeStore) MultiSet(entries map[string]string) error {
	for k, v := range entries {
		f.data[k] = v
	}
	return nil
}

func (f *fakeStore) Remove(keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) Keys() ([]string, error) {
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeStore) KeysWithPrefix(prefix string) ([]string, error) {
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// fakeCloud records pushes and serves canned pull results
type fakeCloud struct {
	pushed  []models.CloudProgressRecord
	records []models.CloudProgressRecord
	fail    bool
}

func (f *fakeCloud) UpsertProgress(_ context.Context, record models.CloudProgressRecord) error {
	if f.fail {
		return errors.New("cloud down")
	}
	f.pushed = append(f.pushed, record)
	return nil
}

func (f *fakeCloud) ProgressByAccount(_ context.Context, accountKey string) ([]models.CloudProgressRecord, error) {
	if f.fail {
		return nil, errors.New("cloud down")
	}
	var out []models.CloudProgressRecord
	for _, r := range f.records {
		if r.AccountKey == accountKey {
			out = append(out, r)
		}
	}
	return out, nil
}

func fixedNow(dateKey string) func() time.Time {
	t, err := time.ParseInLocation("2006-01-02", dateKey, time.Local)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

const (
	testAccount = "9876543210|1995-04-12"
	testDob     = "1995-04-12"
)

func TestAccountKey(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		dob   string
		want  string
	}{
		{"plain", "9876543210", "1995-04-12", "9876543210|1995-04-12"},
		{"formatted phone", "+91 98765-43210", "1995-04-12", "919876543210|1995-04-12"},
		{"dob trimmed", "9876543210", " 1995-04-12 ", "9876543210|1995-04-12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AccountKey(tt.phone, tt.dob); got != tt.want {
				t.Errorf("AccountKey(%q, %q) = %q, want %q", tt.phone, tt.dob, got, tt.want)
			}
		})
	}
}

func TestScopedKeyRoundTrip(t *testing.T) {
	key := ScopedKey(PrefixChecklist, testAccount, "2026-01-15")
	if key != "aaradhana::9876543210|1995-04-12::2026-01-15" {
		t.Fatalf("unexpected scoped key %q", key)
	}
	if got := DateKeyFromScoped(key, PrefixChecklist, testAccount); got != "2026-01-15" {
		t.Errorf("DateKeyFromScoped = %q, want 2026-01-15", got)
	}
	if got := DateKeyFromScoped(key, PrefixPoints, testAccount); got != "" {
		t.Errorf("wrong prefix should yield empty, got %q", got)
	}
}

func TestMigrateLegacyDataMovesEntries(t *testing.T) {
	s := newFakeStore()
	s.data["aaradhana-2025-12-01"] = `{"jin_pooja":true}`
	s.data["points-2025-12-01"] = "20"
	s.data["submitted-2025-12-01"] = "true"
	s.data["userName"] = "Test User"

	if err := MigrateLegacyData(s, testAccount); err != nil {
		t.Fatalf("MigrateLegacyData: %v", err)
	}

	if got := s.data[ScopedKey(PrefixChecklist, testAccount, "2025-12-01")]; got != `{"jin_pooja":true}` {
		t.Errorf("checklist not migrated, got %q", got)
	}
	if got := s.data[ScopedKey(PrefixPoints, testAccount, "2025-12-01")]; got != "20" {
		t.Errorf("points not migrated, got %q", got)
	}
	if got := s.data[ScopedKey(PrefixSubmitted, testAccount, "2025-12-01")]; got != "true" {
		t.Errorf("submitted not migrated, got %q", got)
	}
	if _, ok := s.data["aaradhana-2025-12-01"]; ok {
		t.Error("legacy checklist entry not removed")
	}
	if s.data[KeyLegacyMigrationComplete] != "true" {
		t.Error("completion flag not set")
	}
	if _, ok := s.data["userName"]; !ok {
		t.Error("unrelated key was touched")
	}
}

func TestMigrateLegacyDataDeletesWhenScopedExists(t *testing.T) {
	s := newFakeStore()
	s.data["aaradhana-2025-12-01"] = `{"jin_pooja":true}`
	existing := ScopedKey(PrefixChecklist, testAccount, "2026-01-05")
	s.data[existing] = `{"samayik":true}`

	if err := MigrateLegacyData(s, testAccount); err != nil {
		t.Fatalf("MigrateLegacyData: %v", err)
	}

	if _, ok := s.data["aaradhana-2025-12-01"]; ok {
		t.Error("legacy entry should be deleted, not kept")
	}
	if _, ok := s.data[ScopedKey(PrefixChecklist, testAccount, "2025-12-01")]; ok {
		t.Error("legacy entry should not be migrated over existing scoped data")
	}
	if got := s.data[existing]; got != `{"samayik":true}` {
		t.Errorf("existing scoped entry changed: %q", got)
	}
	if s.data[KeyLegacyMigrationComplete] != "true" {
		t.Error("completion flag not set")
	}
}

func TestMigrateLegacyDataSetsFlagWithNoLegacyData(t *testing.T) {
	s := newFakeStore()
	if err := MigrateLegacyData(s, testAccount); err != nil {
		t.Fatalf("MigrateLegacyData: %v", err)
	}
	if s.data[KeyLegacyMigrationComplete] != "true" {
		t.Error("completion flag not set on clean store")
	}
}

func TestMigrateLegacyDataRunsOnce(t *testing.T) {
	s := newFakeStore()
	s.data[KeyLegacyMigrationComplete] = "true"
	s.data["aaradhana-2025-12-01"] = `{"jin_pooja":true}`

	if err := MigrateLegacyData(s, testAccount); err != nil {
		t.Fatalf("MigrateLegacyData: %v", err)
	}
	if _, ok := s.data["aaradhana-2025-12-01"]; !ok {
		t.Error("second run must not touch remaining legacy-shaped keys")
	}
}

func TestMoveAccountData(t *testing.T) {
	oldKey := "1111111111|1990-01-01"
	newKey := "2222222222|1990-01-01"
	s := newFakeStore()
	s.data[ScopedKey(PrefixChecklist, oldKey, "2026-01-10")] = `{"jin_pooja":true}`
	s.data[ScopedKey(PrefixPoints, oldKey, "2026-01-10")] = "20"
	s.data[ScopedKey(PrefixSubmitted, oldKey, "2026-01-10")] = "true"
	other := ScopedKey(PrefixPoints, "3333333333|1990-01-01", "2026-01-10")
	s.data[other] = "40"

	if err := MoveAccountData(s, oldKey, newKey); err != nil {
		t.Fatalf("MoveAccountData: %v", err)
	}

	if got := s.data[ScopedKey(PrefixPoints, newKey, "2026-01-10")]; got != "20" {
		t.Errorf("points not moved, got %q", got)
	}
	if _, ok := s.data[ScopedKey(PrefixPoints, oldKey, "2026-01-10")]; ok {
		t.Error("old points entry not removed")
	}
	if got := s.data[other]; got != "40" {
		t.Error("unrelated account entry was touched")
	}

	// Second run finds nothing to move.
	if err := MoveAccountData(s, oldKey, newKey); err != nil {
		t.Fatalf("second MoveAccountData: %v", err)
	}
	if got := s.data[ScopedKey(PrefixPoints, newKey, "2026-01-10")]; got != "20" {
		t.Errorf("re-run changed moved entry: %q", got)
	}
}

func TestMoveAccountDataNoops(t *testing.T) {
	s := newFakeStore()
	s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-10")] = "20"

	for _, tt := range []struct{ name, old, new string }{
		{"same key", testAccount, testAccount},
		{"empty old", "", testAccount},
		{"empty new", testAccount, ""},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if err := MoveAccountData(s, tt.old, tt.new); err != nil {
				t.Fatalf("MoveAccountData: %v", err)
			}
			if len(s.data) != 1 {
				t.Errorf("store changed: %v", s.data)
			}
		})
	}
}

func TestPullCloudProgressOverwritesLocal(t *testing.T) {
	s := newFakeStore()
	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-10")] = `{"jin_pooja":true}`
	s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-10")] = "20"

	cloud := &fakeCloud{records: []models.CloudProgressRecord{
		{
			AccountKey: testAccount,
			DateKey:    "2026-01-10",
			Checklist:  models.Checklist{"samayik": true},
			Points:     40,
			Submitted:  true,
		},
		{AccountKey: "someone-else", DateKey: "2026-01-10", Points: 99},
	}}

	if err := PullCloudProgress(context.Background(), s, cloud, testAccount); err != nil {
		t.Fatalf("PullCloudProgress: %v", err)
	}

	if got := s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-10")]; got != "40" {
		t.Errorf("points = %q, want cloud value 40", got)
	}
	if got := s.data[ScopedKey(PrefixSubmitted, testAccount, "2026-01-10")]; got != "true" {
		t.Errorf("submitted = %q, want true", got)
	}
	checked := models.ParseChecklist(s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-10")])
	if !checked["samayik"] || checked["jin_pooja"] {
		t.Errorf("checklist = %v, want cloud checklist", checked)
	}
}

func TestPullCloudProgressNilClient(t *testing.T) {
	s := newFakeStore()
	if err := PullCloudProgress(context.Background(), s, nil, testAccount); err != nil {
		t.Fatalf("nil cloud should be a no-op, got %v", err)
	}
}

func TestTrackerLoadDayRecomputesMissingPoints(t *testing.T) {
	s := newFakeStore()
	// jin_pooja is worth 20 in the middle band.
	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-15")] = `{"jin_pooja":true}`

	tracker := NewTracker(s, nil)
	day, err := tracker.LoadDay(testAccount, testDob, "2026-01-15")
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if day.Points != 20 {
		t.Errorf("recomputed points = %d, want 20", day.Points)
	}
	if got := s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-15")]; got != "20" {
		t.Errorf("points not written back, got %q", got)
	}
}

func TestTrackerLoadDayPrefersStoredPoints(t *testing.T) {
	s := newFakeStore()
	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-15")] = `{"jin_pooja":true}`
	s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-15")] = "75"

	tracker := NewTracker(s, nil)
	day, err := tracker.LoadDay(testAccount, testDob, "2026-01-15")
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if day.Points != 75 {
		t.Errorf("points = %d, want stored 75", day.Points)
	}
}

func TestTrackerLoadDayGarbagePointsCountZero(t *testing.T) {
	s := newFakeStore()
	s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-15")] = "not-a-number"

	tracker := NewTracker(s, nil)
	day, err := tracker.LoadDay(testAccount, testDob, "2026-01-15")
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if day.Points != 0 {
		t.Errorf("points = %d, want 0 for garbage value", day.Points)
	}
}

func TestTrackerEditableWindow(t *testing.T) {
	tests := []struct {
		name    string
		dateKey string
		wantErr error
	}{
		{"today", "2026-01-20", nil},
		{"ten days back", "2026-01-10", nil},
		{"eleven days back", "2026-01-09", ErrDateLocked},
		{"tomorrow", "2026-01-21", ErrDateLocked},
		{"far future", "2026-06-01", ErrDateLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeStore()
			tracker := NewTracker(s, nil)
			tracker.now = fixedNow("2026-01-20")

			_, _, err := tracker.ToggleItem(context.Background(), testAccount, testDob, tt.dateKey, "jin_pooja")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ToggleItem err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if _, ok := s.data[ScopedKey(PrefixChecklist, testAccount, tt.dateKey)]; ok {
					t.Error("rejected toggle must not write")
				}
			}
		})
	}
}

func TestTrackerToggleItem(t *testing.T) {
	s := newFakeStore()
	cloud := &fakeCloud{}
	tracker := NewTracker(s, cloud)
	tracker.now = fixedNow("2026-01-20")

	day, sync, err := tracker.ToggleItem(context.Background(), testAccount, testDob, "2026-01-20", "jin_pooja")
	if err != nil {
		t.Fatalf("ToggleItem: %v", err)
	}
	if !day.Checklist["jin_pooja"] {
		t.Error("item not checked")
	}
	if day.Points != 20 {
		t.Errorf("points = %d, want 20", day.Points)
	}
	if sync != SyncOK {
		t.Errorf("sync = %q, want ok", sync)
	}
	if len(cloud.pushed) != 1 || cloud.pushed[0].Points != 20 {
		t.Errorf("cloud push = %+v", cloud.pushed)
	}

	// Toggling again unchecks and drops the points back to zero.
	day, _, err = tracker.ToggleItem(context.Background(), testAccount, testDob, "2026-01-20", "jin_pooja")
	if err != nil {
		t.Fatalf("second ToggleItem: %v", err)
	}
	if day.Checklist["jin_pooja"] || day.Points != 0 {
		t.Errorf("after second toggle: checked=%v points=%d", day.Checklist["jin_pooja"], day.Points)
	}
}

func TestTrackerToggleSurvivesCloudFailure(t *testing.T) {
	s := newFakeStore()
	cloud := &fakeCloud{fail: true}
	tracker := NewTracker(s, cloud)
	tracker.now = fixedNow("2026-01-20")

	day, sync, err := tracker.ToggleItem(context.Background(), testAccount, testDob, "2026-01-20", "jin_pooja")
	if err != nil {
		t.Fatalf("ToggleItem must succeed locally: %v", err)
	}
	if sync != SyncUnavailable {
		t.Errorf("sync = %q, want unavailable", sync)
	}
	if !day.Checklist["jin_pooja"] {
		t.Error("local write lost on cloud failure")
	}
	if got := s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-20")]; got != "20" {
		t.Errorf("local points = %q, want 20", got)
	}
}

func TestTrackerSubmitLocksDay(t *testing.T) {
	s := newFakeStore()
	cloud := &fakeCloud{}
	tracker := NewTracker(s, cloud)
	tracker.now = fixedNow("2026-01-20")

	day, sync, err := tracker.SubmitDay(context.Background(), testAccount, testDob, "2026-01-20")
	if err != nil {
		t.Fatalf("SubmitDay: %v", err)
	}
	if !day.Submitted {
		t.Error("day not marked submitted")
	}
	if sync != SyncOK {
		t.Errorf("sync = %q, want ok", sync)
	}
	if len(cloud.pushed) != 1 || !cloud.pushed[0].Submitted {
		t.Errorf("cloud push = %+v", cloud.pushed)
	}

	if _, _, err := tracker.SubmitDay(context.Background(), testAccount, testDob, "2026-01-20"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("second submit err = %v, want ErrAlreadySubmitted", err)
	}
	if _, _, err := tracker.ToggleItem(context.Background(), testAccount, testDob, "2026-01-20", "jin_pooja"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("toggle after submit err = %v, want ErrAlreadySubmitted", err)
	}
	if _, ok := s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-20")]; ok {
		t.Error("toggle after submit must not write")
	}
}

func TestAggregatorStreak(t *testing.T) {
	setSubmitted := func(s *fakeStore, dates ...string) {
		for _, d := range dates {
			s.data[ScopedKey(PrefixSubmitted, testAccount, d)] = "true"
		}
	}

	t.Run("today submitted", func(t *testing.T) {
		s := newFakeStore()
		setSubmitted(s, "2026-01-20", "2026-01-19", "2026-01-18")
		agg := NewAggregator(s)
		agg.now = fixedNow("2026-01-20")
		got, err := agg.Streak(testAccount)
		if err != nil {
			t.Fatal(err)
		}
		if got != 3 {
			t.Errorf("streak = %d, want 3", got)
		}
	})

	t.Run("today pending starts from yesterday", func(t *testing.T) {
		s := newFakeStore()
		setSubmitted(s, "2026-01-19", "2026-01-18")
		agg := NewAggregator(s)
		agg.now = fixedNow("2026-01-20")
		got, err := agg.Streak(testAccount)
		if err != nil {
			t.Fatal(err)
		}
		if got != 2 {
			t.Errorf("streak = %d, want 2", got)
		}
	})

	t.Run("gap breaks streak", func(t *testing.T) {
		s := newFakeStore()
		setSubmitted(s, "2026-01-20", "2026-01-18")
		agg := NewAggregator(s)
		agg.now = fixedNow("2026-01-20")
		got, err := agg.Streak(testAccount)
		if err != nil {
			t.Fatal(err)
		}
		if got != 1 {
			t.Errorf("streak = %d, want 1", got)
		}
	})

	t.Run("unsubmitted values ignored", func(t *testing.T) {
		s := newFakeStore()
		s.data[ScopedKey(PrefixSubmitted, testAccount, "2026-01-20")] = "false"
		agg := NewAggregator(s)
		agg.now = fixedNow("2026-01-20")
		got, err := agg.Streak(testAccount)
		if err != nil {
			t.Fatal(err)
		}
		if got != 0 {
			t.Errorf("streak = %d, want 0", got)
		}
	})
}

func TestAggregatorAllTimeTotal(t *testing.T) {
	s := newFakeStore()
	list := niyam.ListForDOB(testDob)

	// Stored points win even when they disagree with the checklist.
	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-10")] = `{"jin_pooja":true}`
	s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-10")] = "100"
	// Checklist only: recomputed (samayik = 40 in middle band).
	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-11")] = `{"samayik":true}`
	// Malformed checklist: zero.
	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-12")] = `{broken`

	agg := NewAggregator(s)
	got, err := agg.AllTimeTotal(testAccount, list)
	if err != nil {
		t.Fatalf("AllTimeTotal: %v", err)
	}
	if got != 140 {
		t.Errorf("total = %d, want 140", got)
	}
}

func TestAggregatorPerNiyam(t *testing.T) {
	s := newFakeStore()
	list := niyam.ListForDOB(testDob)

	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-10")] = `{"jin_pooja":true,"samayik":true}`
	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-11")] = `{"jin_pooja":true}`
	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-12")] = `{broken`

	agg := NewAggregator(s)
	got, err := agg.PerNiyam(testAccount, list)
	if err != nil {
		t.Fatalf("PerNiyam: %v", err)
	}
	// The malformed day still counts toward the denominator.
	if got.TotalDays != 3 {
		t.Errorf("TotalDays = %d, want 3", got.TotalDays)
	}
	if got.Completed["jin_pooja"] != 2 {
		t.Errorf("jin_pooja = %d, want 2", got.Completed["jin_pooja"])
	}
	if got.Completed["samayik"] != 1 {
		t.Errorf("samayik = %d, want 1", got.Completed["samayik"])
	}
	if got.Completed["navkarshi"] != 0 {
		t.Errorf("navkarshi = %d, want 0", got.Completed["navkarshi"])
	}
}

func TestAggregatorLast7Days(t *testing.T) {
	s := newFakeStore()
	list := niyam.ListForDOB(testDob)
	s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-20")] = "30"
	s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-14")] = "10"

	agg := NewAggregator(s)
	agg.now = fixedNow("2026-01-20")
	got, err := agg.Last7Days(testAccount, list)
	if err != nil {
		t.Fatalf("Last7Days: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("got %d days, want 7", len(got))
	}
	if got[0].DateKey != "2026-01-14" || got[0].Points != 10 {
		t.Errorf("first day = %+v, want 2026-01-14 with 10", got[0])
	}
	if got[6].DateKey != "2026-01-20" || got[6].Points != 30 {
		t.Errorf("last day = %+v, want 2026-01-20 with 30", got[6])
	}
	if got[3].Points != 0 {
		t.Errorf("untracked day points = %d, want 0", got[3].Points)
	}
}

func TestAggregatorDateKeys(t *testing.T) {
	s := newFakeStore()
	s.data[ScopedKey(PrefixPoints, testAccount, "2026-01-11")] = "20"
	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-10")] = "{}"
	s.data[ScopedKey(PrefixChecklist, testAccount, "2026-01-11")] = "{}"
	s.data[ScopedKey(PrefixPoints, "other|2000-01-01", "2026-01-12")] = "20"

	agg := NewAggregator(s)
	got, err := agg.DateKeys(testAccount)
	if err != nil {
		t.Fatalf("DateKeys: %v", err)
	}
	want := []string{"2026-01-10", "2026-01-11"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("DateKeys = %v, want %v", got, want)
	}
}
