package location

import (
	"fmt"

	"github.com/riskibarqy/geoduel/internal/domain/geo"
)

// Map is a named pool of panoramas a match draws its rounds from.
type Map struct {
	ID        string
	Name      string
	IsDefault bool
}

// Location is a single panorama. Position orders locations inside a map.
type Location struct {
	MapID    string
	Position int
	Lat      float64
	Lng      float64
	Heading  float64
}

func (l Location) Validate() error {
	if l.MapID == "" {
		return fmt.Errorf("location map id is required")
	}
	if l.Position < 0 {
		return fmt.Errorf("location position must not be negative")
	}
	if err := (geo.Point{Lat: l.Lat, Lng: l.Lng}).Validate(); err != nil {
		return err
	}
	if l.Heading < 0 || l.Heading >= 360 {
		return fmt.Errorf("location heading must be in [0,360)")
	}
	return nil
}
