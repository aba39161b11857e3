package domain

// Coordinates is the geocoded position of a location address in WGS84
// degrees. Planning never reads it; only the travel matrix lookup does.
type Coordinates struct {
	Lon float64
	Lat float64
}

// LonLat returns the [lon, lat] pair routing services expect.
func (c Coordinates) LonLat() []float64 { return []float64{c.Lon, c.Lat} }
