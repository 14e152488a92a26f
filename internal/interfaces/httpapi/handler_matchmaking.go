package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/geoduel/internal/usecase"
)

func (h *Handler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinQueue")
	defer span.End()

	playerID, ok := playerIDFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: player id is missing from request context", usecase.ErrUnauthorized))
		return
	}

	size, err := h.matchmakingService.Enqueue(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "join matchmaking queue failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, queueStatusDTO{PlayerID: playerID, Queued: true, QueueSize: size})
}

func (h *Handler) LeaveQueue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveQueue")
	defer span.End()

	playerID, ok := playerIDFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: player id is missing from request context", usecase.ErrUnauthorized))
		return
	}

	if err := h.matchmakingService.Leave(ctx, playerID); err != nil {
		h.logger.WarnContext(ctx, "leave matchmaking queue failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queueStatusDTO{PlayerID: playerID, Queued: false})
}
