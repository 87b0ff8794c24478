// Package tmdb provides a client for The Movie Database API.
package tmdb

const imageBaseURL = "https://image.tmdb.org/t/p/"

// Movie represents a TMDB movie or TV result from the find endpoint.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"` // TV results use name
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`   // "/abc123.jpg"
	BackdropPath string  `json:"backdrop_path"` // "/def456.jpg"
	VoteAverage  float64 `json:"vote_average"`
}

// findResponse is the payload of /3/find/{external_id}.
type findResponse struct {
	MovieResults []Movie `json:"movie_results"`
	TVResults    []Movie `json:"tv_results"`
}

// PosterURL returns the full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original
func (m *Movie) PosterURL(size string) string {
	return imageURL(size, m.PosterPath)
}

// BackdropURL returns the full backdrop image URL.
// Size can be: w300, w780, w1280, original
func (m *Movie) BackdropURL(size string) string {
	return imageURL(size, m.BackdropPath)
}

// ImageURLs returns the available poster and backdrop URLs at original size.
func (m *Movie) ImageURLs() []string {
	var urls []string
	for _, u := range []string{m.PosterURL("original"), m.BackdropURL("original")} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + size + path
}
