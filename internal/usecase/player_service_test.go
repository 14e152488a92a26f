package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/geoduel/internal/domain/player"
	"github.com/riskibarqy/geoduel/internal/domain/round"
	"github.com/riskibarqy/geoduel/internal/infrastructure/repository/memory"
	playermock "github.com/riskibarqy/geoduel/internal/mocks/domain/player"
	"github.com/stretchr/testify/mock"
)

func roundFor(matchID string) round.Round {
	return round.Round{ID: matchID + "-r1", MatchID: matchID, Number: 1}
}

func TestPlayerService_RegisterAndGet(t *testing.T) {
	repo := memory.NewPlayerRepository(nil)
	svc := NewPlayerService(repo, &sequenceIDs{})

	created, err := svc.Register(t.Context(), "  Ada  ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.DisplayName != "Ada" || created.Rating != player.DefaultRating {
		t.Fatalf("unexpected player: %+v", created)
	}

	got, err := svc.Get(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("unexpected id: got=%s want=%s", got.ID, created.ID)
	}

	if _, err := svc.Get(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Register(t.Context(), " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlayerService_Register_RepositoryFailureUsingMockery(t *testing.T) {
	t.Parallel()

	repo := playermock.NewRepository(t)
	svc := NewPlayerService(repo, &sequenceIDs{})
	storeErr := errors.New("insert failed")

	repo.
		On("Create", mock.Anything, mock.MatchedBy(func(p player.Player) bool { return p.DisplayName == "Ada" })).
		Return(storeErr).
		Once()

	_, err := svc.Register(context.Background(), "Ada")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}
