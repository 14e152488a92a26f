package geo

import (
	"errors"
	"fmt"
	"math"
)

const (
	EarthRadiusKm = 6371.0

	MaxScore = 5000
	// PerfectRadiusKm is the distance under which a guess always earns
	// MaxScore, so float noise around the target is never penalised.
	PerfectRadiusKm = 0.025
	scoreDecayKm    = 2000.0
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point is a WGS84 latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return fmt.Errorf("%w: NaN component", ErrInvalidCoordinate)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: lat=%f out of [-90,90]", ErrInvalidCoordinate, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: lng=%f out of [-180,180]", ErrInvalidCoordinate, p.Lng)
	}
	return nil
}

// DistanceKm is the haversine great-circle distance between two points.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Score converts the distance between target and guess into [0, MaxScore].
func Score(targetLat, targetLng, guessLat, guessLng float64) int {
	return ScoreForDistance(DistanceKm(targetLat, targetLng, guessLat, guessLng))
}

func ScoreForDistance(distanceKm float64) int {
	if distanceKm < PerfectRadiusKm {
		return MaxScore
	}
	return int(math.Round(MaxScore * math.Exp(-distanceKm/scoreDecayKm)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
