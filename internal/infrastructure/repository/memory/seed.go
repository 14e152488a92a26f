package memory

import "github.com/riskibarqy/geoduel/internal/domain/location"

const (
	MapIDWorld    = "world"
	MapIDCapitals  = "capitals"
)

func SeedMaps() []location.Map {
	return []location.Map{
		{ID: MapIDWorld, Name: "World", IsDefault: true},
		{ID: MapIDCapitals, Name: "Capital Cities"},
	}
}

func SeedLocations() []location.Location {
	return []location.Location{
		{MapID: MapIDWorld, Position: 0, Lat: 48.858370, Lng: 2.294481, Heading: 90},
		{MapID: MapIDWorld, Position: 1, Lat: -33.856784, Lng: 151.215297, Heading: 180},
		{MapID: MapIDWorld, Position: 2, Lat: 40.689247, Lng: -74.044502, Heading: 45},
		{MapID: MapIDWorld, Position: 3, Lat: 35.658581, Lng: 139.745438, Heading: 270},
		{MapID: MapIDWorld, Position: 4, Lat: -22.951916, Lng: -43.210487, Heading: 0},
		{MapID: MapIDWorld, Position: 5, Lat: -6.175392, Lng: 106.827153, Heading: 135},
		{MapID: MapIDCapitals, Position: 0, Lat: 51.500729, Lng: -0.124625, Heading: 30},
		{MapID: MapIDCapitals, Position: 1, Lat: 38.897676, Lng: -77.036530, Heading: 210},
		{MapID: MapIDCapitals, Position: 2, Lat: 55.752023, Lng: 37.617499, Heading: 300},
		{MapID: MapIDCapitals, Position: 3, Lat: -35.308056, Lng: 149.124444, Heading: 120},
	}
}
