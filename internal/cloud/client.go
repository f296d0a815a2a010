// Package cloud talks to the hosted sync service. The service keeps a
// mirror of accounts and per-day progress so a reinstalled app or a second
// device can recover an account's data. It is a replica: local storage
// stays authoritative and every caller treats cloud failures as soft.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"niyamtrack/internal/models"
)

// Client is the sync surface the services depend on
type Client interface {
	FindAccount(ctx context.Context, phone, dob string) (*models.Account, error)
	UpsertAccount(ctx context.Context, account models.Account) error
	DeleteAccount(ctx context.Context, phone, dob string) error
	ListAccounts(ctx context.Context) ([]models.Account, error)
	ProgressByAccount(ctx context.Context, accountKey string) ([]models.CloudProgressRecord, error)
	UpsertProgress(ctx context.Context, record models.CloudProgressRecord) error
}

// HTTPClient implements Client against the sync service's REST API
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds what the client needs to reach the service. ClientID and
// ClientSecret are exchanged for bearer tokens at TokenURL; when they are
// empty the client calls the service unauthenticated, which the dev
// deployment allows.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// NewHTTPClient creates a client for the sync service. Returns nil when no
// base URL is configured; callers treat a nil client as local-only mode.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.BaseURL == "" {
		return nil
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		oauthCfg := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = oauthCfg.Client(context.Background())
		httpClient.Timeout = 15 * time.Second
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// accountDocID is the service-side document id for an account
func accountDocID(phone, dob string) string {
	return digitsOnly(phone) + "|" + strings.TrimSpace(dob)
}

// progressDocID is the service-side document id for one account-day
func progressDocID(accountKey, dateKey string) string {
	return url.QueryEscape(accountKey) + "__" + dateKey
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sync service returned %s for %s %s", resp.Status, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode sync response: %w", err)
		}
	}
	return nil
}

// FindAccount looks up one account by its identity. Returns (nil, nil)
// when the service has no such account.
func (c *HTTPClient) FindAccount(ctx context.Context, phone, dob string) (*models.Account, error) {
	var account models.Account
	err := c.do(ctx, http.MethodGet, "/accounts/"+url.PathEscape(accountDocID(phone, dob)), nil, &account)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if account.PhoneNumber == "" || account.DOB == "" {
		return nil, nil
	}
	account.PhoneNumber = digitsOnly(account.PhoneNumber)
	account.DOB = strings.TrimSpace(account.DOB)
	return &account, nil
}

// UpsertAccount writes or overwrites an account document
func (c *HTTPClient) UpsertAccount(ctx context.Context, account models.Account) error {
	account.PhoneNumber = digitsOnly(account.PhoneNumber)
	account.DOB = strings.TrimSpace(account.DOB)
	docID := accountDocID(account.PhoneNumber, account.DOB)
	return c.do(ctx, http.MethodPut, "/accounts/"+url.PathEscape(docID), account, nil)
}

// DeleteAccount removes an account document; a missing document is fine
func (c *HTTPClient) DeleteAccount(ctx context.Context, phone, dob string) error {
	err := c.do(ctx, http.MethodDelete, "/accounts/"+url.PathEscape(accountDocID(phone, dob)), nil, nil)
	if err == ErrNotFound {
		return nil
	}
	return err
}

// ListAccounts returns every account the service knows. Rows without an
// identity are dropped.
func (c *HTTPClient) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, &accounts); err != nil {
		return nil, err
	}

	valid := accounts[:0]
	for _, account := range accounts {
		if account.PhoneNumber == "" || account.DOB == "" {
			continue
		}
		account.PhoneNumber = digitsOnly(account.PhoneNumber)
		account.DOB = strings.TrimSpace(account.DOB)
		valid = append(valid, account)
	}
	return valid, nil
}

// ProgressByAccount returns every synced day for one account. Rows without
// a dateKey are dropped.
func (c *HTTPClient) ProgressByAccount(ctx context.Context, accountKey string) ([]models.CloudProgressRecord, error) {
	var records []models.CloudProgressRecord
	path := "/progress?accountKey=" + url.QueryEscape(accountKey)
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}

	valid := records[:0]
	for _, record := range records {
		if record.DateKey == "" {
			continue
		}
		if record.Checklist == nil {
			record.Checklist = models.Checklist{}
		}
		record.AccountKey = accountKey
		valid = append(valid, record)
	}
	return valid, nil
}

// UpsertProgress writes or overwrites one account-day document
func (c *HTTPClient) UpsertProgress(ctx context.Context, record models.CloudProgressRecord) error {
	if record.Checklist == nil {
		record.Checklist = models.Checklist{}
	}
	docID := progressDocID(record.AccountKey, record.DateKey)
	return c.do(ctx, http.MethodPut, "/progress/"+url.PathEscape(docID), record, nil)
}
