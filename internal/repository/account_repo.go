// Package repository reads and writes the durable account records in the
// key-value store.
package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"niyamtrack/internal/models"
	"niyamtrack/internal/progress"
)

// Single-field profile keys. These predate the accounts list and are kept
// in sync with it so older data keeps working, with legacy aliases written
// alongside the current names.
const (
	keyFirstName    = "firstName"
	keyMiddleName   = "middleName"
	keyLastName     = "lastName"
	keyGender       = "gender"
	keyUserName     = "userName"
	keyDateOfBirth  = "dateOfBirth"
	keyDOB          = "dob"
	keyHotiNo       = "hotiNo"
	keyVillageCode  = "villageCode"
	keyProfilePhoto = "profilePhoto"
	keyPhotoURI     = "photoUri"
	keyPhoneNumber  = "phoneNumber"
	keyAddress      = "address"
)

// AccountRepository manages the stored accounts list, the active account
// pointer and the single-field profile mirror.
type AccountRepository struct {
	store progress.Store
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(store progress.Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// List returns all stored accounts. A missing or malformed list reads as
// empty.
func (r *AccountRepository) List() ([]models.Account, error) {
	raw, ok, err := r.store.Get(progress.KeyAccounts)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var accounts []models.Account
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, nil
	}
	return accounts, nil
}

func (r *AccountRepository) save(accounts []models.Account) error {
	if accounts == nil {
		accounts = []models.Account{}
	}
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}
	return r.store.Set(progress.KeyAccounts, string(data))
}

// FindByPhoneDOB looks up an account by its identity in the stored list
func (r *AccountRepository) FindByPhoneDOB(phone, dob string) (*models.Account, error) {
	accounts, err := r.List()
	if err != nil {
		return nil, err
	}

	normalizedPhone := progress.NormalizePhone(phone)
	trimmedDOB := strings.TrimSpace(dob)
	for i := range accounts {
		if progress.NormalizePhone(accounts[i].PhoneNumber) == normalizedPhone &&
			strings.TrimSpace(accounts[i].DOB) == trimmedDOB {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

// LegacyProfile rebuilds an account from the single-field profile keys
// when they match the given identity. Data written before the accounts
// list existed only lives in those fields.
func (r *AccountRepository) LegacyProfile(phone, dob string) (*models.Account, error) {
	savedPhone := r.getOr(keyPhoneNumber, "")
	savedDOB := r.getOr(keyDateOfBirth, r.getOr(keyDOB, ""))

	if progress.NormalizePhone(savedPhone) != progress.NormalizePhone(phone) ||
		strings.TrimSpace(savedDOB) != strings.TrimSpace(dob) {
		return nil, nil
	}

	account := models.Account{
		FirstName:   r.getOr(keyFirstName, ""),
		MiddleName:  r.getOr(keyMiddleName, ""),
		LastName:    r.getOr(keyLastName, ""),
		Gender:      r.getOr(keyGender, ""),
		FullName:    r.getOr(keyUserName, ""),
		DOB:         savedDOB,
		HotiNo:      r.getOr(keyHotiNo, r.getOr(keyVillageCode, "")),
		PhoneNumber: progress.NormalizePhone(savedPhone),
		Address:     r.getOr(keyAddress, ""),
		PhotoURI:    r.getOr(keyProfilePhoto, r.getOr(keyPhotoURI, "")),
	}
	return &account, nil
}

func (r *AccountRepository) getOr(key, fallback string) string {
	value, ok, err := r.store.Get(key)
	if err != nil || !ok || value == "" {
		return fallback
	}
	return value
}

// Upsert inserts or replaces an account in the stored list. When
// oldAccountKey names an existing entry (a profile edit that changed the
// identity) that entry is replaced; the list is then deduplicated by
// account key, keeping first occurrences.
func (r *AccountRepository) Upsert(account models.Account, oldAccountKey string) error {
	accounts, err := r.List()
	if err != nil {
		return err
	}

	newKey := progress.AccountKey(account.PhoneNumber, account.DOB)
	idx := -1
	if oldAccountKey != "" {
		idx = indexByKey(accounts, oldAccountKey)
	}
	if idx < 0 {
		idx = indexByKey(accounts, newKey)
	}
	if idx >= 0 {
		accounts[idx] = account
	} else {
		accounts = append(accounts, account)
	}

	seen := make(map[string]struct{}, len(accounts))
	deduped := accounts[:0]
	for _, a := range accounts {
		key := progress.AccountKey(a.PhoneNumber, a.DOB)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, a)
	}
	return r.save(deduped)
}

// Delete removes the account with the given key from the stored list
func (r *AccountRepository) Delete(accountKey string) error {
	accounts, err := r.List()
	if err != nil {
		return err
	}

	kept := accounts[:0]
	for _, a := range accounts {
		if progress.AccountKey(a.PhoneNumber, a.DOB) != accountKey {
			kept = append(kept, a)
		}
	}
	return r.save(kept)
}

func indexByKey(accounts []models.Account, accountKey string) int {
	for i, a := range accounts {
		if progress.AccountKey(a.PhoneNumber, a.DOB) == accountKey {
			return i
		}
	}
	return -1
}

// ActiveAccountKey returns the key of the signed-in account, or ""
func (r *AccountRepository) ActiveAccountKey() (string, error) {
	value, _, err := r.store.Get(progress.KeyActiveAccountKey)
	if err != nil {
		return "", fmt.Errorf("failed to read active account key: %w", err)
	}
	return value, nil
}

// SetActiveProfile writes the active account pointer and the single-field
// profile mirror, legacy aliases included.
func (r *AccountRepository) SetActiveProfile(account models.Account, accountKey string) error {
	return r.store.MultiSet(map[string]string{
		keyFirstName:                 account.FirstName,
		keyMiddleName:                account.MiddleName,
		keyLastName:                  account.LastName,
		keyGender:                    account.Gender,
		keyUserName:                  account.FullName,
		keyDateOfBirth:               account.DOB,
		keyDOB:                       account.DOB,
		keyHotiNo:                    account.HotiNo,
		keyVillageCode:               account.HotiNo,
		keyProfilePhoto:              account.PhotoURI,
		keyPhotoURI:                  account.PhotoURI,
		keyPhoneNumber:               progress.NormalizePhone(account.PhoneNumber),
		keyAddress:                   account.Address,
		progress.KeyActiveAccountKey: accountKey,
	})
}

// ClearActiveProfile removes the active account pointer and the profile
// mirror. Runs on logout and when an admin signs in.
func (r *AccountRepository) ClearActiveProfile() error {
	return r.store.Remove(
		keyFirstName,
		keyMiddleName,
		keyLastName,
		keyGender,
		keyUserName,
		keyDateOfBirth,
		keyDOB,
		keyHotiNo,
		keyVillageCode,
		keyProfilePhoto,
		keyPhotoURI,
		keyPhoneNumber,
		keyAddress,
		progress.KeyActiveAccountKey,
		progress.KeyAdminSelectedAccountKey,
	)
}
