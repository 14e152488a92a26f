package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/geoduel/internal/domain/round"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get round: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("connection refused")) {
		t.Fatalf("expected unrelated error to be ignored")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert player: %w", &pq.Error{Code: "23505", Message: "duplicate key value"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other pq errors", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "42P01", Message: "relation does not exist"}) {
			t.Fatalf("expected false for undefined table")
		}
	})
}

func TestGuessColumnsPerSlot(t *testing.T) {
	one := guessColumnsFor(0)
	two := guessColumnsFor(1)
	if one.lat != "player_one_lat" || one.lockedAt != "player_one_locked_at" {
		t.Fatalf("unexpected slot one columns: %+v", one)
	}
	if two.lng != "player_two_lng" || two.score != "player_two_score" {
		t.Fatalf("unexpected slot two columns: %+v", two)
	}
}

func TestMarkOnceQuery_GuardsNullColumn(t *testing.T) {
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	query, args, err := markOnceQuery("finished_at", "r1", at)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	want := "UPDATE rounds SET finished_at = $1 WHERE id = $2 AND finished_at IS NULL"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 2 || args[0] != at || args[1] != "r1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSaveGuessQuery_RefusesLockedSlotAndFinishedRound(t *testing.T) {
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	query, args, err := saveGuessQuery("r1", round.GuessUpdate{Slot: 1, Lat: 1.5, Lng: -2.5, LockIn: true, At: at})
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	want := "UPDATE rounds SET player_two_lat = $1, player_two_lng = $2, player_two_locked_at = $3" +
		" WHERE id = $4 AND finished_at IS NULL AND player_two_locked_at IS NULL RETURNING *"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 4 || args[3] != "r1" {
		t.Fatalf("unexpected args: %+v", args)
	}

	query, _, err = saveGuessQuery("r1", round.GuessUpdate{Slot: 0, Lat: 1, Lng: 1})
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	want = "UPDATE rounds SET player_one_lat = $1, player_one_lng = $2" +
		" WHERE id = $3 AND finished_at IS NULL AND player_one_locked_at IS NULL RETURNING *"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}

	if _, _, err := saveGuessQuery("r1", round.GuessUpdate{Slot: 2}); err == nil {
		t.Fatalf("expected error for invalid slot")
	}
}

func TestMatchStatusQueries_GuardCurrentStatus(t *testing.T) {
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	query, args, err := markInProgressQuery("m1", at)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if want := "UPDATE matches SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4"; query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 4 || args[0] != "in_progress" || args[3] != "pending" {
		t.Fatalf("unexpected args: %+v", args)
	}

	winner := "p1"
	query, args, err = markCompletedQuery("m1", &winner, at)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	want := "UPDATE matches SET status = $1, winner_id = $2, completed_at = $3, updated_at = $4 WHERE id = $5 AND status = $6"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 6 || args[0] != "completed" || args[1] != "p1" || args[5] != "in_progress" {
		t.Fatalf("unexpected args: %+v", args)
	}

	_, args, err = markCompletedQuery("m1", nil, at)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if args[1] != nil {
		t.Fatalf("expected NULL winner for a draw, got %v", args[1])
	}
}
