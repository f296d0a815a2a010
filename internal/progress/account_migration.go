package progress

import "fmt"

// MoveAccountData moves every scoped progress entry from oldAccountKey to
// newAccountKey. It runs when a profile edit changes the phone or dob, so
// the account's history follows its new identity. Safe to re-run: once the
// old entries are gone there is nothing left to move.
func MoveAccountData(s Store, oldAccountKey, newAccountKey string) error {
	if oldAccountKey == "" || newAccountKey == "" || oldAccountKey == newAccountKey {
		return nil
	}

	var oldKeys []string
	rewrites := make(map[string]string)
	for _, prefix := range []string{PrefixChecklist, PrefixPoints, PrefixSubmitted} {
		oldPrefix := ScopedPrefix(prefix, oldAccountKey)
		matched, err := s.KeysWithPrefix(oldPrefix)
		if err != nil {
			return fmt.Errorf("failed to scan %s entries: %w", prefix, err)
		}
		for _, oldKey := range matched {
			dateKey := oldKey[len(oldPrefix):]
			oldKeys = append(oldKeys, oldKey)
			rewrites[oldKey] = ScopedKey(prefix, newAccountKey, dateKey)
		}
	}

	if len(oldKeys) == 0 {
		return nil
	}

	values, err := s.MultiGet(oldKeys)
	if err != nil {
		return fmt.Errorf("failed to read entries for account move: %w", err)
	}

	moved := make(map[string]string, len(values))
	for oldKey, value := range values {
		moved[rewrites[oldKey]] = value
	}
	if len(moved) > 0 {
		if err := s.MultiSet(moved); err != nil {
			return fmt.Errorf("failed to write moved entries: %w", err)
		}
	}
	if err := s.Remove(oldKeys...); err != nil {
		return fmt.Errorf("failed to remove old entries: %w", err)
	}
	return nil
}
