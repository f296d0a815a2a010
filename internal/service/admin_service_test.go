package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"niyamtrack/internal/models"
	"niyamtrack/internal/progress"
	"niyamtrack/internal/repository"
)

const (
	adminTestAccount = "9876543210|1995-04-12"
)

func newTestAdmin(store *fakeStore) *AdminService {
	accounts := repository.NewAccountRepository(store)
	return NewAdminService(store, accounts, nil, 8*time.Hour)
}

func TestVerifyCredentialsDefaults(t *testing.T) {
	admin := newTestAdmin(newFakeStore())

	tests := []struct {
		name  string
		phone string
		dob   string
		want  bool
	}{
		{"default credentials", "9999999999", "2000-01-01", true},
		{"formatted phone", "99999 99999", "2000-01-01", true},
		{"wrong dob", "9999999999", "2000-01-02", false},
		{"wrong phone", "1234567890", "2000-01-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := admin.VerifyCredentials(tt.phone, tt.dob)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("VerifyCredentials(%q, %q) = %v, want %v", tt.phone, tt.dob, got, tt.want)
			}
		})
	}
}

func TestSetCredentialsReplacesDefaults(t *testing.T) {
	admin := newTestAdmin(newFakeStore())

	if err := admin.SetCredentials("8888888888", "1985-06-15"); err != nil {
		t.Fatal(err)
	}

	if ok, _ := admin.VerifyCredentials("9999999999", "2000-01-01"); ok {
		t.Error("default credentials still accepted after SetCredentials")
	}
	if ok, _ := admin.VerifyCredentials("8888888888", "1985-06-15"); !ok {
		t.Error("new credentials rejected")
	}
}

func TestAdminSessionLifecycle(t *testing.T) {
	store := newFakeStore()
	admin := newTestAdmin(store)

	sessionID, err := admin.TryStartSession("9999999999", "2000-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if sessionID == "" {
		t.Fatal("no session id returned")
	}
	if valid, _ := admin.SessionValid(sessionID); !valid {
		t.Error("fresh session not valid")
	}

	// A made-up id does not pass, and does not disturb the real session.
	if valid, _ := admin.SessionValid("not-the-session-id"); valid {
		t.Error("wrong session id accepted")
	}
	if valid, _ := admin.SessionValid(sessionID); !valid {
		t.Error("real session lost after a mismatched id check")
	}

	if err := admin.ClearSession(); err != nil {
		t.Fatal(err)
	}
	if valid, _ := admin.SessionValid(sessionID); valid {
		t.Error("cleared session still valid")
	}
}

func TestAdminSessionExpiry(t *testing.T) {
	store := newFakeStore()
	admin := newTestAdmin(store)

	sessionID, err := admin.TryStartSession("9999999999", "2000-01-01")
	if err != nil {
		t.Fatal(err)
	}

	// Jump the clock past the 8 hour window.
	admin.now = func() time.Time { return time.Now().Add(9 * time.Hour) }
	if valid, _ := admin.SessionValid(sessionID); valid {
		t.Error("expired session reported valid")
	}
	// Expiry clears the session entries on sight.
	if _, ok := store.data[progress.KeyAdminSession]; ok {
		t.Error("expired session not cleared from store")
	}
}

func TestTryStartSessionRejectsWrongCredentials(t *testing.T) {
	admin := newTestAdmin(newFakeStore())

	sessionID, err := admin.TryStartSession("1234567890", "1990-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if sessionID != "" {
		t.Errorf("session id = %q for wrong credentials", sessionID)
	}
}

func TestOverrideDayIgnoresWindowAndLock(t *testing.T) {
	store := newFakeStore()
	admin := newTestAdmin(store)

	// Submitted day far outside the user editable window.
	dateKey := "2020-03-15"
	store.data[progress.ScopedKey(progress.PrefixSubmitted, adminTestAccount, dateKey)] = "true"

	day, err := admin.OverrideDay(adminTestAccount, dateKey, models.Checklist{"jin_pooja": true, "samayik": true})
	if err != nil {
		t.Fatalf("OverrideDay: %v", err)
	}
	if day.Points != 60 {
		t.Errorf("points = %d, want 60", day.Points)
	}
	if !day.Submitted {
		t.Error("submitted flag lost on override")
	}
	if store.data[progress.ScopedKey(progress.PrefixPoints, adminTestAccount, dateKey)] != "60" {
		t.Error("points not written")
	}
}

func TestOverrideDayRejectsFutureDate(t *testing.T) {
	admin := newTestAdmin(newFakeStore())
	admin.now = func() time.Time { return time.Date(2026, 1, 20, 12, 0, 0, 0, time.Local) }

	_, err := admin.OverrideDay(adminTestAccount, "2026-01-21", models.Checklist{})
	if !errors.Is(err, ErrFutureDate) {
		t.Errorf("err = %v, want ErrFutureDate", err)
	}

	// Today itself is fine.
	if _, err := admin.OverrideDay(adminTestAccount, "2026-01-20", models.Checklist{}); err != nil {
		t.Errorf("override of today failed: %v", err)
	}
}

func TestAccountDaysNewestFirst(t *testing.T) {
	store := newFakeStore()
	admin := newTestAdmin(store)

	for _, dateKey := range []string{"2026-01-10", "2026-01-12", "2026-01-11"} {
		store.data[progress.ScopedKey(progress.PrefixPoints, adminTestAccount, dateKey)] = "20"
	}

	days, err := admin.AccountDays(adminTestAccount)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	want := []string{"2026-01-12", "2026-01-11", "2026-01-10"}
	for i, dateKey := range want {
		if days[i].DateKey != dateKey {
			t.Errorf("days[%d] = %s, want %s", i, days[i].DateKey, dateKey)
		}
	}
}

func TestDeleteAccountData(t *testing.T) {
	store := newFakeStore()
	accounts := repository.NewAccountRepository(store)
	admin := NewAdminService(store, accounts, nil, 8*time.Hour)

	if err := accounts.Upsert(userAccount(), ""); err != nil {
		t.Fatal(err)
	}
	store.data[progress.ScopedKey(progress.PrefixChecklist, adminTestAccount, "2026-01-10")] = `{"jin_pooja":true}`
	store.data[progress.ScopedKey(progress.PrefixPoints, adminTestAccount, "2026-01-10")] = "20"
	store.data[progress.ScopedKey(progress.PrefixSubmitted, adminTestAccount, "2026-01-10")] = "true"
	store.data[progress.KeyAdminSelectedAccountKey] = adminTestAccount
	otherKey := progress.ScopedKey(progress.PrefixPoints, "1111111111|1990-01-01", "2026-01-10")
	store.data[otherKey] = "40"

	if err := admin.DeleteAccountData(context.Background(), adminTestAccount); err != nil {
		t.Fatal(err)
	}

	for k := range store.data {
		if k != otherKey && k != progress.KeyAccounts {
			t.Errorf("leftover entry %q", k)
		}
	}
	if _, ok := store.data[otherKey]; !ok {
		t.Error("unrelated account's entry removed")
	}
	list, err := accounts.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("account list = %+v, want empty", list)
	}
}

func TestDeleteActiveAccountRemovesProfileMirror(t *testing.T) {
	store := newFakeStore()
	cloudClient := newFakeCloudClient()
	auth, admin, _ := newTestServices(store, cloudClient)

	account := userAccount()
	if _, err := auth.Register(context.Background(), account); err != nil {
		t.Fatal(err)
	}

	if err := admin.DeleteAccountData(context.Background(), adminTestAccount); err != nil {
		t.Fatal(err)
	}

	// The single-field mirror and the active-account pointer are gone.
	for _, key := range []string{progress.KeyActiveAccountKey, "phoneNumber", "dateOfBirth", "firstName"} {
		if _, ok := store.data[key]; ok {
			t.Errorf("leftover profile entry %q", key)
		}
	}
	if len(cloudClient.deleted) != 1 || cloudClient.deleted[0] != adminTestAccount {
		t.Errorf("cloud deletions = %v, want [%s]", cloudClient.deleted, adminTestAccount)
	}

	// The deleted user cannot sign back in through the mirror fallback.
	_, err := auth.Login(context.Background(), account.PhoneNumber, account.DOB)
	if !errors.Is(err, ErrNoAccounts) {
		t.Errorf("login after delete err = %v, want ErrNoAccounts", err)
	}
}

func TestSelectedAccountRoundTrip(t *testing.T) {
	admin := newTestAdmin(newFakeStore())

	if got, _ := admin.SelectedAccount(); got != "" {
		t.Errorf("initial selection = %q", got)
	}
	if err := admin.SelectAccount(adminTestAccount); err != nil {
		t.Fatal(err)
	}
	if got, _ := admin.SelectedAccount(); got != adminTestAccount {
		t.Errorf("selection = %q, want %q", got, adminTestAccount)
	}
}
