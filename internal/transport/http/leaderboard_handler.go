package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"contest-session-service/internal/app"
)

// LeaderboardHandler serves GET /contests/{id}/leaderboard.
type LeaderboardHandler struct {
	service *app.ContestService
	log     zerolog.Logger
}

func NewLeaderboardHandler(service *app.ContestService, log zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		log:     log.With().Str("component", "leaderboard_handler").Logger(),
	}
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")
	if contestID == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Code: "invalid_payload", Message: "missing contest id"})
		return
	}
	board, err := h.service.Leaderboard(r.Context(), contestID)
	if err != nil {
		h.log.Error().Err(err).Str("contest_id", contestID).Msg("leaderboard failed")
		writeJSON(w, http.StatusInternalServerError, errorPayload{Code: errorCode(err), Message: "could not load leaderboard"})
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
