package handlers

import (
	"net/http"

	"niyamtrack/internal/service"
)

// SummaryHandler serves progress summaries and the peer leaderboard
type SummaryHandler struct {
	summaryService     *service.SummaryService
	leaderboardService *service.LeaderboardService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaryService *service.SummaryService, leaderboardService *service.LeaderboardService) *SummaryHandler {
	return &SummaryHandler{
		summaryService:     summaryService,
		leaderboardService: leaderboardService,
	}
}

// Summary returns the signed-in account's aggregate progress view
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	summary, err := h.summaryService.Build(*account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error building summary", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// Leaderboard returns the signed-in account's peer-group ranking
func (h *SummaryHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	board, err := h.leaderboardService.Build(r.Context(), *account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error building leaderboard", err)
		return
	}
	respondWithJSON(w, http.StatusOK, board)
}
