package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewID(t *testing.T) {
	gen := NewUUIDGenerator()

	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
	parsed, err := uuid.Parse(first)
	if err != nil {
		t.Fatalf("expected uuid formatted id, got %q: %v", first, err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected time ordered uuid v7, got v%d", parsed.Version())
	}
}
