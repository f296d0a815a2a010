package progress

import (
	"fmt"
	"strings"
)

// Legacy unscoped key prefixes from before accounts existed. A legacy key
// is "aaradhana-2025-01-05" instead of the scoped form.
const (
	legacyChecklistPrefix = PrefixChecklist + "-"
	legacyPointsPrefix    = PrefixPoints + "-"
	legacySubmittedPrefix = PrefixSubmitted + "-"
)

func isLegacyKey(key string) bool {
	return strings.HasPrefix(key, legacyChecklistPrefix) ||
		strings.HasPrefix(key, legacyPointsPrefix) ||
		strings.HasPrefix(key, legacySubmittedPrefix)
}

// MigrateLegacyData moves pre-account progress entries under accountKey.
// It runs exactly once per install, recorded by a completion flag; every
// branch below ends with the flag set, so a re-run is a no-op.
//
// When scoped data already exists for the account, the legacy entries are
// deleted without migrating. There is no way to tell whose data the
// unscoped entries were, and merging them into an account that already has
// its own history could corrupt it.
func MigrateLegacyData(s Store, accountKey string) error {
	done, ok, err := s.Get(KeyLegacyMigrationComplete)
	if err != nil {
		return fmt.Errorf("failed to check migration flag: %w", err)
	}
	if ok && done == "true" {
		return nil
	}

	allKeys, err := s.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	scopedPrefixes := []string{
		ScopedPrefix(PrefixChecklist, accountKey),
		ScopedPrefix(PrefixPoints, accountKey),
		ScopedPrefix(PrefixSubmitted, accountKey),
	}
	hasScopedData := false
	var legacyKeys []string
	for _, key := range allKeys {
		if isLegacyKey(key) {
			legacyKeys = append(legacyKeys, key)
			continue
		}
		for _, prefix := range scopedPrefixes {
			if strings.HasPrefix(key, prefix) {
				hasScopedData = true
				break
			}
		}
	}

	if len(legacyKeys) == 0 {
		return s.Set(KeyLegacyMigrationComplete, "true")
	}

	if hasScopedData {
		if err := s.Remove(legacyKeys...); err != nil {
			return fmt.Errorf("failed to remove legacy entries: %w", err)
		}
		return s.Set(KeyLegacyMigrationComplete, "true")
	}

	legacyEntries, err := s.MultiGet(legacyKeys)
	if err != nil {
		return fmt.Errorf("failed to read legacy entries: %w", err)
	}

	migrated := make(map[string]string, len(legacyEntries))
	for key, value := range legacyEntries {
		switch {
		case strings.HasPrefix(key, legacyChecklistPrefix):
			dateKey := strings.TrimPrefix(key, legacyChecklistPrefix)
			migrated[ScopedKey(PrefixChecklist, accountKey, dateKey)] = value
		case strings.HasPrefix(key, legacyPointsPrefix):
			dateKey := strings.TrimPrefix(key, legacyPointsPrefix)
			migrated[ScopedKey(PrefixPoints, accountKey, dateKey)] = value
		case strings.HasPrefix(key, legacySubmittedPrefix):
			dateKey := strings.TrimPrefix(key, legacySubmittedPrefix)
			migrated[ScopedKey(PrefixSubmitted, accountKey, dateKey)] = value
		}
	}

	if len(migrated) > 0 {
		if err := s.MultiSet(migrated); err != nil {
			return fmt.Errorf("failed to write migrated entries: %w", err)
		}
	}
	if err := s.Remove(legacyKeys...); err != nil {
		return fmt.Errorf("failed to remove legacy entries: %w", err)
	}
	return s.Set(KeyLegacyMigrationComplete, "true")
}
