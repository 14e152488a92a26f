package geo

import (
	"errors"
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Point
		want    float64
		epsilon float64
	}{
		{name: "same point", a: Point{48.8566, 2.3522}, b: Point{48.8566, 2.3522}, want: 0, epsilon: 1e-9},
		{name: "paris to london", a: Point{48.8566, 2.3522}, b: Point{51.5074, -0.1278}, want: 343.5, epsilon: 1},
		{name: "antipodes", a: Point{0, 0}, b: Point{0, 180}, want: math.Pi * EarthRadiusKm, epsilon: 1e-6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceKm(tc.a.Lat, tc.a.Lng, tc.b.Lat, tc.b.Lng)
			if math.Abs(got-tc.want) > tc.epsilon {
				t.Fatalf("unexpected distance: got=%f want=%f", got, tc.want)
			}
		})
	}
}

func TestScore_PerfectAtTarget(t *testing.T) {
	if got := Score(-6.2, 106.8, -6.2, 106.8); got != MaxScore {
		t.Fatalf("expected %d at target, got %d", MaxScore, got)
	}
}

func TestScore_PerfectGuessFloor(t *testing.T) {
	// ~20m north of the target; the raw exponential would give 4999.95.
	got := Score(0, 0, 0.00018, 0)
	if got != MaxScore {
		t.Fatalf("expected perfect floor within %.3fkm, got %d", PerfectRadiusKm, got)
	}

	raw := MaxScore * math.Exp(-0.02/scoreDecayKm)
	if raw >= MaxScore {
		t.Fatalf("expected raw formula below max, got %f", raw)
	}
}

func TestScoreForDistance_MonotonicNonIncreasing(t *testing.T) {
	prev := ScoreForDistance(0)
	if prev != MaxScore {
		t.Fatalf("expected score(0)=%d, got %d", MaxScore, prev)
	}
	for d := 0.005; d < 20100; d *= 1.37 {
		got := ScoreForDistance(d)
		if got > prev {
			t.Fatalf("score increased at d=%f: %d > %d", d, got, prev)
		}
		if got < 0 || got > MaxScore {
			t.Fatalf("score out of range at d=%f: %d", d, got)
		}
		prev = got
	}
}

func TestScoreForDistance_KnownValues(t *testing.T) {
	if got := ScoreForDistance(2000); got != 1839 {
		t.Fatalf("expected 1839 at 2000km, got %d", got)
	}
	if got := ScoreForDistance(20000); got != 0 {
		t.Fatalf("expected 0 at half circumference, got %d", got)
	}
}

func TestPointValidate(t *testing.T) {
	if err := (Point{Lat: 91}).Validate(); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate for lat=91, got %v", err)
	}
	if err := (Point{Lng: -181}).Validate(); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate for lng=-181, got %v", err)
	}
	if err := (Point{Lat: math.NaN()}).Validate(); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate for NaN")
	}
	if err := (Point{Lat: 90, Lng: 180}).Validate(); err != nil {
		t.Fatalf("expected boundary point to be valid, got %v", err)
	}
}
