package handlers

import (
	"errors"
	"net/http"
	"time"

	"niyamtrack/internal/models"
	"niyamtrack/internal/niyam"
	"niyamtrack/internal/progress"
	"niyamtrack/internal/validation"
)

// timeNow is swapped out in tests
var timeNow = time.Now

// ChecklistHandler serves the daily niyam checklist
type ChecklistHandler struct {
	tracker *progress.Tracker
}

// NewChecklistHandler creates a new checklist handler
func NewChecklistHandler(tracker *progress.Tracker) *ChecklistHandler {
	return &ChecklistHandler{tracker: tracker}
}

type dayResponse struct {
	Day        models.DayProgress  `json:"day"`
	NiyamList  []niyam.Item        `json:"niyamList,omitempty"`
	SyncStatus progress.SyncResult `json:"syncStatus,omitempty"`
}

type toggleRequest struct {
	DateKey string `json:"dateKey"`
	ItemKey string `json:"itemKey"`
}

type submitRequest struct {
	DateKey string `json:"dateKey"`
}

// LoadDay returns one day's checklist, points and submitted state,
// together with the account's niyam list. Defaults to today.
func (h *ChecklistHandler) LoadDay(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	accountKey := GetAccountKeyFromContext(r.Context())

	dateKey := r.URL.Query().Get("date")
	if dateKey == "" {
		dateKey = progress.LocalDateKey(timeNow())
	}
	if err := validation.ValidateDateKey(dateKey); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	day, err := h.tracker.LoadDay(accountKey, account.DOB, dateKey)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading day", err)
		return
	}
	respondWithJSON(w, http.StatusOK, dayResponse{
		Day:       day,
		NiyamList: niyam.ListForDOB(account.DOB),
	})
}

// Toggle flips one checklist item for a date inside the editable window
func (h *ChecklistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	accountKey := GetAccountKeyFromContext(r.Context())

	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := validation.ValidateDateKey(req.DateKey); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ItemKey == "" {
		http.Error(w, "itemKey is required", http.StatusBadRequest)
		return
	}

	day, syncStatus, err := h.tracker.ToggleItem(r.Context(), accountKey, account.DOB, req.DateKey, req.ItemKey)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dayResponse{Day: day, SyncStatus: syncStatus})
}

// Submit finalizes a day. A submitted day can no longer be edited.
func (h *ChecklistHandler) Submit(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	accountKey := GetAccountKeyFromContext(r.Context())

	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := validation.ValidateDateKey(req.DateKey); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	day, syncStatus, err := h.tracker.SubmitDay(r.Context(), accountKey, account.DOB, req.DateKey)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dayResponse{Day: day, SyncStatus: syncStatus})
}

// writeMutationError maps tracker rejections to client errors
func writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, progress.ErrDateLocked):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, progress.ErrAlreadySubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error saving day", err)
	}
}
