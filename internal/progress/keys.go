// Package progress implements the per-account daily checklist data: the
// scoped key scheme, legacy data migration, day tracking with the editable
// window, streaks and point aggregation.
package progress

import (
	"fmt"
	"strings"
	"time"
)

// Separator joins the segments of a scoped progress key
const Separator = "::"

// Scoped key prefixes, one per stored aspect of a tracked day.
const (
	PrefixChecklist = "aaradhana"
	PrefixPoints    = "points"
	PrefixSubmitted = "submitted"
)

// Well-known single keys in the store.
const (
	KeyActiveAccountKey        = "activeAccountKey"
	KeyAccounts                = "accounts"
	KeyLegacyMigrationComplete = "legacyProgressMigrationCompletedV1"
	KeyAdminSession            = "adminSession"
	KeyAdminSessionID          = "adminSessionId"
	KeyAdminSessionExpiresAt   = "adminSessionExpiresAt"
	KeyAdminSelectedAccountKey = "adminSelectedAccountKey"
	KeyAdminCredentialsHash    = "adminCredentialsHash"
)

// NormalizePhone strips every non-digit character from a phone number
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// AccountKey derives the storage identity for a user from phone and dob.
// The phone is reduced to digits and the dob is trimmed, so the same person
// entering "98765 43210" or "9876543210" lands on the same key.
func AccountKey(phone, dob string) string {
	return NormalizePhone(phone) + "|" + strings.TrimSpace(dob)
}

// ScopedKey builds the store key for one aspect of one account's day
func ScopedKey(prefix, accountKey, dateKey string) string {
	return prefix + Separator + accountKey + Separator + dateKey
}

// ScopedPrefix is the common prefix of every dateKey under one aspect of
// one account, used for prefix scans.
func ScopedPrefix(prefix, accountKey string) string {
	return prefix + Separator + accountKey + Separator
}

// DateKeyFromScoped strips the scoped prefix and returns the trailing
// dateKey, or "" when key does not carry the prefix.
func DateKeyFromScoped(key, prefix, accountKey string) string {
	scopedPrefix := ScopedPrefix(prefix, accountKey)
	if !strings.HasPrefix(key, scopedPrefix) {
		return ""
	}
	return key[len(scopedPrefix):]
}

// LocalDateKey formats t as the YYYY-MM-DD key used for all per-day entries
func LocalDateKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseDateKey parses a YYYY-MM-DD key back into a local midnight time
func ParseDateKey(dateKey string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", dateKey, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", dateKey, err)
	}
	return t, nil
}
