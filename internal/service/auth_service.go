// Package service holds the application workflows on top of the store,
// the repositories and the cloud client.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"niyamtrack/internal/cloud"
	"niyamtrack/internal/models"
	"niyamtrack/internal/progress"
	"niyamtrack/internal/repository"
	"niyamtrack/internal/security"
)

var (
	// ErrNoAccounts means no account exists anywhere; the caller should register
	ErrNoAccounts = errors.New("no account found, registration required")
	// ErrInvalidAccount means the phone and dob match no known account
	ErrInvalidAccount = errors.New("phone number or date of birth does not match")
)

// LoginResult is what a successful login produces. Exactly one of Token
// and AdminSessionID is set.
type LoginResult struct {
	Account        *models.Account
	AccountKey     string
	Token          string
	AdminSessionID string
}

// AuthService handles login, registration and logout
type AuthService struct {
	store           progress.Store
	accounts        *repository.AccountRepository
	cloud           cloud.Client
	admin           *AdminService
	sessionSecret   string
	sessionDuration time.Duration
}

// NewAuthService creates the auth service. cloudClient may be nil for
// local-only deployments.
func NewAuthService(
	store progress.Store,
	accounts *repository.AccountRepository,
	cloudClient cloud.Client,
	admin *AdminService,
	sessionSecret string,
	sessionDuration time.Duration,
) *AuthService {
	return &AuthService{
		store:           store,
		accounts:        accounts,
		cloud:           cloudClient,
		admin:           admin,
		sessionSecret:   sessionSecret,
		sessionDuration: sessionDuration,
	}
}

// Login signs a user in by phone and dob. Admin credentials short-circuit
// into an admin session. Otherwise the account is resolved from the local
// list, the legacy single-field profile, then the cloud; on success the
// account's cloud progress is pulled and a session token issued.
func (s *AuthService) Login(ctx context.Context, phone, dob string) (*LoginResult, error) {
	normalizedPhone := progress.NormalizePhone(phone)
	trimmedDOB := strings.TrimSpace(dob)

	adminSessionID, err := s.admin.TryStartSession(normalizedPhone, trimmedDOB)
	if err != nil {
		return nil, err
	}
	if adminSessionID != "" {
		return &LoginResult{AdminSessionID: adminSessionID}, nil
	}

	account, err := s.accounts.FindByPhoneDOB(normalizedPhone, trimmedDOB)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account, err = s.accounts.LegacyProfile(normalizedPhone, trimmedDOB)
		if err != nil {
			return nil, err
		}
	}
	if account == nil && s.cloud != nil {
		cloudAccount, err := s.cloud.FindAccount(ctx, normalizedPhone, trimmedDOB)
		if err != nil {
			log.Printf("cloud account lookup failed for %s: %v", normalizedPhone, err)
		} else if cloudAccount != nil {
			account = cloudAccount
			if err := s.accounts.Upsert(*cloudAccount, ""); err != nil {
				return nil, err
			}
		}
	}

	if account == nil {
		list, err := s.accounts.List()
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, ErrNoAccounts
		}
		return nil, ErrInvalidAccount
	}

	accountKey := progress.AccountKey(account.PhoneNumber, account.DOB)
	if err := progress.MigrateLegacyData(s.store, accountKey); err != nil {
		return nil, err
	}

	if err := progress.PullCloudProgress(ctx, s.store, s.cloudSync(), accountKey); err != nil {
		log.Printf("cloud progress pull failed for %s: %v", accountKey, err)
	}

	if err := s.accounts.SetActiveProfile(*account, accountKey); err != nil {
		return nil, err
	}
	if err := s.admin.ClearSession(); err != nil {
		log.Printf("failed to clear admin session on user login: %v", err)
	}

	token, err := security.IssueUserToken(s.sessionSecret, accountKey, s.sessionDuration)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Account: account, AccountKey: accountKey, Token: token}, nil
}

// Register creates or updates the user's profile. When the identity
// changed, the account's progress history follows it and the old cloud
// account document is removed best-effort.
func (s *AuthService) Register(ctx context.Context, account models.Account) (*LoginResult, error) {
	account.FirstName = strings.TrimSpace(account.FirstName)
	account.MiddleName = strings.TrimSpace(account.MiddleName)
	account.LastName = strings.TrimSpace(account.LastName)
	account.Gender = strings.TrimSpace(account.Gender)
	account.DOB = strings.TrimSpace(account.DOB)
	account.HotiNo = strings.TrimSpace(account.HotiNo)
	account.PhoneNumber = progress.NormalizePhone(account.PhoneNumber)
	account.Address = strings.TrimSpace(account.Address)
	account.PhotoURI = strings.TrimSpace(account.PhotoURI)
	account.FullName = fmt.Sprintf("%s %s %s", account.FirstName, account.MiddleName, account.LastName)

	oldAccountKey, err := s.accounts.ActiveAccountKey()
	if err != nil {
		return nil, err
	}
	newAccountKey := progress.AccountKey(account.PhoneNumber, account.DOB)

	if err := s.accounts.Upsert(account, oldAccountKey); err != nil {
		return nil, err
	}
	if err := progress.MoveAccountData(s.store, oldAccountKey, newAccountKey); err != nil {
		return nil, err
	}
	if err := s.accounts.SetActiveProfile(account, newAccountKey); err != nil {
		return nil, err
	}

	if s.cloud != nil {
		if err := s.cloud.UpsertAccount(ctx, account); err != nil {
			log.Printf("cloud account upsert failed for %s: %v", newAccountKey, err)
		} else if oldAccountKey != "" && oldAccountKey != newAccountKey {
			oldPhone, oldDOB, ok := strings.Cut(oldAccountKey, "|")
			if ok && oldPhone != "" && oldDOB != "" {
				if err := s.cloud.DeleteAccount(ctx, oldPhone, oldDOB); err != nil {
					log.Printf("cloud account delete failed for %s: %v", oldAccountKey, err)
				}
			}
		}
	}

	token, err := security.IssueUserToken(s.sessionSecret, newAccountKey, s.sessionDuration)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Account: &account, AccountKey: newAccountKey, Token: token}, nil
}

// Logout clears the active profile
func (s *AuthService) Logout() error {
	return s.accounts.ClearActiveProfile()
}

// ParseToken validates a session token and returns its account key
func (s *AuthService) ParseToken(token string) (string, error) {
	return security.ParseUserToken(s.sessionSecret, token)
}

// cloudSync adapts the nullable cloud client for the progress package
func (s *AuthService) cloudSync() progress.CloudSync {
	if s.cloud == nil {
		return nil
	}
	return s.cloud
}
