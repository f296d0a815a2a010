package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"niyamtrack/internal/cloud"
	"niyamtrack/internal/models"
	"niyamtrack/internal/niyam"
	"niyamtrack/internal/progress"
	"niyamtrack/internal/repository"
	"niyamtrack/internal/security"
)

// Default admin credentials, in effect until replaced with SetCredentials
const (
	defaultAdminPhone = "9999999999"
	defaultAdminDOB   = "2000-01-01"
)

var (
	// ErrAdminSessionExpired means the admin session is missing or timed out
	ErrAdminSessionExpired = errors.New("admin session expired")
	// ErrFutureDate means an admin tried to edit a day that has not happened
	ErrFutureDate = errors.New("cannot edit a future date")
)

// AdminService manages admin authentication and the admin's override
// access to any account's progress. Admin overrides write locally only;
// the cloud copy catches up the next time the account itself syncs.
type AdminService struct {
	store           progress.Store
	accounts        *repository.AccountRepository
	cloud           cloud.Client
	sessionDuration time.Duration
	now             func() time.Time
}

// NewAdminService creates the admin service. cloudClient may be nil for
// local-only deployments.
func NewAdminService(store progress.Store, accounts *repository.AccountRepository, cloudClient cloud.Client, sessionDuration time.Duration) *AdminService {
	return &AdminService{
		store:           store,
		accounts:        accounts,
		cloud:           cloudClient,
		sessionDuration: sessionDuration,
		now:             time.Now,
	}
}

// VerifyCredentials checks an admin login attempt. With no stored hash the
// default credentials apply, so a fresh install always has an admin.
func (s *AdminService) VerifyCredentials(phone, dob string) (bool, error) {
	hash, ok, err := s.store.Get(progress.KeyAdminCredentialsHash)
	if err != nil {
		return false, fmt.Errorf("failed to read admin credentials: %w", err)
	}
	normalizedPhone := progress.NormalizePhone(phone)
	trimmedDOB := strings.TrimSpace(dob)
	if !ok || hash == "" {
		return normalizedPhone == defaultAdminPhone && trimmedDOB == defaultAdminDOB, nil
	}
	return security.CheckCredentials(hash, normalizedPhone, trimmedDOB), nil
}

// SetCredentials replaces the admin credentials, stored as a bcrypt hash
func (s *AdminService) SetCredentials(phone, dob string) error {
	hash, err := security.HashCredentials(progress.NormalizePhone(phone), strings.TrimSpace(dob))
	if err != nil {
		return err
	}
	return s.store.Set(progress.KeyAdminCredentialsHash, hash)
}

// TryStartSession verifies credentials and, on success, opens an admin
// session and clears any signed-in user profile. Returns the session id
// for the admin cookie, or "" when the credentials do not match.
func (s *AdminService) TryStartSession(phone, dob string) (string, error) {
	ok, err := s.VerifyCredentials(phone, dob)
	if err != nil || !ok {
		return "", err
	}

	sessionID := security.GenerateSessionID()
	expiresAt := s.now().Add(s.sessionDuration).UnixMilli()
	err = s.store.MultiSet(map[string]string{
		progress.KeyAdminSession:          "true",
		progress.KeyAdminSessionID:        sessionID,
		progress.KeyAdminSessionExpiresAt: strconv.FormatInt(expiresAt, 10),
	})
	if err != nil {
		return "", fmt.Errorf("failed to start admin session: %w", err)
	}

	if err := s.accounts.ClearActiveProfile(); err != nil {
		log.Printf("failed to clear user profile on admin login: %v", err)
	}
	return sessionID, nil
}

// ClearSession ends the admin session
func (s *AdminService) ClearSession() error {
	return s.store.Remove(
		progress.KeyAdminSession,
		progress.KeyAdminSessionID,
		progress.KeyAdminSelectedAccountKey,
		progress.KeyAdminSessionExpiresAt,
	)
}

// SessionValid reports whether sessionID identifies the open, unexpired
// admin session. A mismatched id fails without touching the stored
// session; an expired session is cleared on sight.
func (s *AdminService) SessionValid(sessionID string) (bool, error) {
	entries, err := s.store.MultiGet([]string{
		progress.KeyAdminSession,
		progress.KeyAdminSessionID,
		progress.KeyAdminSessionExpiresAt,
	})
	if err != nil {
		return false, fmt.Errorf("failed to read admin session: %w", err)
	}
	if entries[progress.KeyAdminSession] != "true" {
		return false, nil
	}

	expiresAt, err := strconv.ParseInt(entries[progress.KeyAdminSessionExpiresAt], 10, 64)
	if err != nil || expiresAt <= s.now().UnixMilli() {
		if clearErr := s.ClearSession(); clearErr != nil {
			log.Printf("failed to clear expired admin session: %v", clearErr)
		}
		return false, nil
	}

	stored := entries[progress.KeyAdminSessionID]
	if stored == "" || sessionID != stored {
		return false, nil
	}
	return true, nil
}

// SelectAccount remembers which account the admin is working on
func (s *AdminService) SelectAccount(accountKey string) error {
	return s.store.Set(progress.KeyAdminSelectedAccountKey, accountKey)
}

// SelectedAccount returns the account the admin is working on, or ""
func (s *AdminService) SelectedAccount() (string, error) {
	value, _, err := s.store.Get(progress.KeyAdminSelectedAccountKey)
	return value, err
}

// OverrideDay replaces one account-day's checklist and recomputes its
// points. The editable window and submitted lock do not apply to admins;
// only future dates are rejected. The write is local-only.
func (s *AdminService) OverrideDay(accountKey, dateKey string, checklist models.Checklist) (models.DayProgress, error) {
	selected, err := progress.ParseDateKey(dateKey)
	if err != nil {
		return models.DayProgress{}, err
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if selected.After(today) {
		return models.DayProgress{}, ErrFutureDate
	}

	if checklist == nil {
		checklist = models.Checklist{}
	}
	dob := dobFromAccountKey(accountKey)
	points := niyam.Points(checklist, niyam.ListForDOB(dob))

	err = s.store.MultiSet(map[string]string{
		progress.ScopedKey(progress.PrefixChecklist, accountKey, dateKey): checklist.Encode(),
		progress.ScopedKey(progress.PrefixPoints, accountKey, dateKey):    strconv.Itoa(points),
	})
	if err != nil {
		return models.DayProgress{}, fmt.Errorf("failed to save override: %w", err)
	}

	submittedRaw, _, err := s.store.Get(progress.ScopedKey(progress.PrefixSubmitted, accountKey, dateKey))
	if err != nil {
		return models.DayProgress{}, err
	}
	return models.DayProgress{
		DateKey:   dateKey,
		Checklist: checklist,
		Points:    points,
		Submitted: submittedRaw == "true",
	}, nil
}

// AccountDays lists the tracked days for one account, newest first, for
// the admin dashboard.
func (s *AdminService) AccountDays(accountKey string) ([]models.DayProgress, error) {
	agg := progress.NewAggregator(s.store)
	dateKeys, err := agg.DateKeys(accountKey)
	if err != nil {
		return nil, err
	}

	tracker := progress.NewTracker(s.store, nil)
	dob := dobFromAccountKey(accountKey)
	days := make([]models.DayProgress, 0, len(dateKeys))
	for i := len(dateKeys) - 1; i >= 0; i-- {
		day, err := tracker.LoadDay(accountKey, dob, dateKeys[i])
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

// DeleteAccountData removes an account and all its progress entries.
// When the deleted account is the signed-in one, its profile mirror and
// the active-account pointer go too, so it cannot sign back in through
// the single-field fallback. The cloud account document is removed
// best-effort.
func (s *AdminService) DeleteAccountData(ctx context.Context, accountKey string) error {
	for _, prefix := range []string{progress.PrefixChecklist, progress.PrefixPoints, progress.PrefixSubmitted} {
		keys, err := s.store.KeysWithPrefix(progress.ScopedPrefix(prefix, accountKey))
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.store.Remove(keys...); err != nil {
				return err
			}
		}
	}

	active, err := s.accounts.ActiveAccountKey()
	if err != nil {
		return err
	}
	if active == accountKey {
		if err := s.accounts.ClearActiveProfile(); err != nil {
			return err
		}
	} else if err := s.store.Remove(progress.KeyAdminSelectedAccountKey); err != nil {
		return err
	}

	if err := s.accounts.Delete(accountKey); err != nil {
		return err
	}

	if s.cloud != nil {
		phone, dob, ok := strings.Cut(accountKey, "|")
		if ok && phone != "" && dob != "" {
			if err := s.cloud.DeleteAccount(ctx, phone, dob); err != nil {
				log.Printf("cloud account delete failed for %s: %v", accountKey, err)
			}
		}
	}
	return nil
}

// dobFromAccountKey extracts the dob segment of an account key. The key
// format is "<digits>|<dob>".
func dobFromAccountKey(accountKey string) string {
	if _, dob, ok := strings.Cut(accountKey, "|"); ok {
		return dob
	}
	return ""
}
