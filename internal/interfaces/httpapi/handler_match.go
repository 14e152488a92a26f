package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/geoduel/internal/usecase"
)

// CreateMatch starts a direct challenge between the caller and an opponent.
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	playerID, ok := playerIDFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: player id is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createMatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	m, err := h.matchService.CreateMatch(ctx, usecase.CreateMatchInput{
		PlayerOneID: playerID,
		PlayerTwoID: req.OpponentID,
		MapID:       req.MapID,
		Format:      req.Format,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "player_id", playerID, "opponent_id", req.OpponentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(m))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	m, err := h.matchService.GetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(m))
}

// GetRound hides the target until the round starts and the opponent's
// guess until the round is finished.
func (h *Handler) GetRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRound")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	number, err := parseRoundNumber(r.PathValue("roundNumber"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	m, err := h.matchService.GetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match for round failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	item, err := h.matchService.GetRound(ctx, matchID, number)
	if err != nil {
		h.logger.WarnContext(ctx, "get round failed", "match_id", matchID, "round", number, "error", err)
		writeError(ctx, w, err)
		return
	}

	viewerID, _ := playerIDFromContext(ctx)
	writeSuccess(ctx, w, http.StatusOK, roundToDTO(m, item, viewerID))
}

func (h *Handler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitGuess")
	defer span.End()

	playerID, ok := playerIDFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: player id is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	number, err := parseRoundNumber(r.PathValue("roundNumber"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitGuessRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.roundService.SubmitGuess(ctx, usecase.SubmitGuessInput{
		MatchID:     matchID,
		RoundNumber: number,
		PlayerID:    playerID,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		LockIn:      req.LockIn,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit guess failed", "match_id", matchID, "round", number, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	m, err := h.matchService.GetMatch(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, roundToDTO(m, item, playerID))
}
