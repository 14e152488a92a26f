package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
	"github.com/riskibarqy/geoduel/internal/usecase"
)

type Handler struct {
	playerService      *usecase.PlayerService
	matchService       *usecase.MatchService
	roundService       *usecase.RoundService
	ratingService      *usecase.RatingService
	matchmakingService *usecase.MatchmakingService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	playerService *usecase.PlayerService,
	matchService *usecase.MatchService,
	roundService *usecase.RoundService,
	ratingService *usecase.RatingService,
	matchmakingService *usecase.MatchmakingService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		playerService:      playerService,
		matchService:       matchService,
		roundService:       roundService,
		ratingService:      ratingService,
		matchmakingService: matchmakingService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parseRoundNumber(raw string) (int, error) {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || number < 1 {
		return 0, fmt.Errorf("%w: round number must be a positive integer", usecase.ErrInvalidInput)
	}
	return number, nil
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput)
	}
	return limit, nil
}

type registerPlayerRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=64"`
}

type createMatchRequest struct {
	OpponentID string `json:"opponent_id" validate:"required"`
	MapID      string `json:"map_id"`
	Format     string `json:"format" validate:"omitempty,oneof=classic bo3 bo5 bo7 rush"`
}

type submitGuessRequest struct {
	Lat    *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng    *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	LockIn bool     `json:"lock_in"`
}
