package domain

// Place is one geocoding candidate for a free-text destination query. The
// identifier and coordinates come straight from the upstream service.
type Place struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}
