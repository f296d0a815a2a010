package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"niyamtrack/internal/models"
	"niyamtrack/internal/repository"
	"niyamtrack/internal/service"
	"niyamtrack/internal/validation"
)

// AdminHandler handles admin-only routes: account management, progress
// overrides, credentials, backups and summary emails.
type AdminHandler struct {
	adminService   *service.AdminService
	summaryService *service.SummaryService
	emailService   *service.EmailService
	backupService  *service.BackupService
	accounts       *repository.AccountRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	adminService *service.AdminService,
	summaryService *service.SummaryService,
	emailService *service.EmailService,
	backupService *service.BackupService,
	accounts *repository.AccountRepository,
) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		summaryService: summaryService,
		emailService:   emailService,
		backupService:  backupService,
		accounts:       accounts,
	}
}

// ListAccounts returns every cached account record
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing accounts", err)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	respondWithJSON(w, http.StatusOK, accounts)
}

type selectAccountRequest struct {
	AccountKey string `json:"accountKey"`
}

// SelectAccount remembers which account the admin is working on
func (h *AdminHandler) SelectAccount(w http.ResponseWriter, r *http.Request) {
	var req selectAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := validation.ValidateRequired("accountKey", req.AccountKey); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.adminService.SelectAccount(req.AccountKey); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error selecting account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AccountDays lists an account's tracked days, newest first
func (h *AdminHandler) AccountDays(w http.ResponseWriter, r *http.Request) {
	accountKey, ok := h.targetAccountKey(w, r)
	if !ok {
		return
	}

	days, err := h.adminService.AccountDays(accountKey)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading account days", err)
		return
	}
	respondWithJSON(w, http.StatusOK, days)
}

type overrideRequest struct {
	AccountKey string           `json:"accountKey"`
	DateKey    string           `json:"dateKey"`
	Checklist  models.Checklist `json:"checklist"`
}

// OverrideDay replaces one account-day's checklist, bypassing the user
// editable window and submitted lock. Future dates are rejected.
func (h *AdminHandler) OverrideDay(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := validation.ValidateRequired("accountKey", req.AccountKey); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateDateKey(req.DateKey); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	day, err := h.adminService.OverrideDay(req.AccountKey, req.DateKey, req.Checklist)
	if err != nil {
		if errors.Is(err, service.ErrFutureDate) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error saving override", err)
		return
	}
	respondWithJSON(w, http.StatusOK, day)
}

// DeleteAccount removes an account and all of its progress entries
func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountKey, ok := h.targetAccountKey(w, r)
	if !ok {
		return
	}

	if err := h.adminService.DeleteAccountData(r.Context(), accountKey); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error deleting account data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type credentialsRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	DOB         string `json:"dob"`
}

// SetCredentials replaces the admin credentials
func (h *AdminHandler) SetCredentials(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePhone(req.PhoneNumber); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateDOB(req.DOB); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.adminService.SetCredentials(req.PhoneNumber, req.DOB); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error updating admin credentials", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportBackup streams a JSON dump of the whole store
func (h *AdminHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="niyamtrack-backup.json"`)
	if err := h.backupService.ExportToWriter(w); err != nil {
		// The response is already streaming, so only log.
		log.Printf("Error exporting backup: %v", err)
	}
}

// ImportBackup restores store entries from an uploaded JSON dump
func (h *AdminHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	if err := h.backupService.ImportFromReader(r.Body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid backup file", "Error importing backup", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type emailSummaryRequest struct {
	AccountKey string `json:"accountKey"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

// EmailSummary sends an account's progress summary to an email address.
// A no-op when the email service is not configured.
func (h *AdminHandler) EmailSummary(w http.ResponseWriter, r *http.Request) {
	var req emailSummaryRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := validation.ValidateRequired("accountKey", req.AccountKey); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateRequired("email", req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.accountForKey(req.AccountKey)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading account", err)
		return
	}
	if account == nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	summary, err := h.summaryService.Build(*account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error building summary", err)
		return
	}

	name := req.Name
	if name == "" {
		name = account.FullName
	}
	if err := h.emailService.SendSummaryEmail(r.Context(), req.Email, name, summary); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to send email", "Error sending summary email", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// targetAccountKey reads the accountKey query parameter shared by the
// per-account admin routes.
func (h *AdminHandler) targetAccountKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountKey := r.URL.Query().Get("accountKey")
	if accountKey == "" {
		http.Error(w, "accountKey is required", http.StatusBadRequest)
		return "", false
	}
	return accountKey, true
}

// accountForKey resolves a cached account record from its key
func (h *AdminHandler) accountForKey(accountKey string) (*models.Account, error) {
	phone, dob, ok := strings.Cut(accountKey, "|")
	if !ok {
		return nil, nil
	}
	return h.accounts.FindByPhoneDOB(phone, dob)
}
