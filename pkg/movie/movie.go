// Package movie defines the normalized movie record and its mapping from
// OMDB payloads.
package movie

// Movie is a normalized OMDB title. ID is zero until the store assigns one.
type Movie struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"imdbid"`
	Title      string `json:"title"`
	Year       *int32 `json:"year"`
	Genre      string `json:"genre"`
	Released   string `json:"released"`
	Language   string `json:"language"`
	Director   string `json:"director"`
	Writer     string `json:"writer"`
	Actors     string `json:"actors"`
}

// YearOf returns a pointer to y, for building records with a known year.
func YearOf(y int32) *int32 {
	return &y
}
