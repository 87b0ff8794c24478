// Package omdb provides a client for the OMDb movie metadata API.
package omdb

import (
	"strconv"
	"strings"
)

// NotAvailable is the placeholder OMDb uses for missing values.
const NotAvailable = "N/A"

// PageSize is the fixed number of items OMDb returns per search page.
const PageSize = 10

// SearchItem is a summary entry in a search response.
type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDBID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// SearchResponse is the raw result of a title search.
type SearchResponse struct {
	Search       []SearchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"` // "True" or "False"
	Error        string       `json:"Error,omitempty"`
}

// Total returns the provider-reported result count, 0 when absent.
func (r *SearchResponse) Total() int {
	n, err := strconv.Atoi(strings.TrimSpace(r.TotalResults))
	if err != nil {
		return 0
	}
	return n
}

// Rating is one entry of the Ratings list, e.g. {"Rotten Tomatoes", "87%"}.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Rating source names as reported by OMDb.
const (
	SourceIMDB           = "Internet Movie Database"
	SourceRottenTomatoes = "Rotten Tomatoes"
	SourceMetacritic     = "Metacritic"
)

// Detail is the raw full record for a single title.
// All values are strings as delivered; "N/A" marks absent values.
type Detail struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated"`
	Released   string   `json:"Released"` // "16 Jul 2010"
	Runtime    string   `json:"Runtime"`  // "148 min"
	Genre      string   `json:"Genre"`    // comma separated
	Director   string   `json:"Director"`
	Writer     string   `json:"Writer"`
	Actors     string   `json:"Actors"`
	Plot       string   `json:"Plot"`
	Language   string   `json:"Language"`
	Country    string   `json:"Country"`
	Awards     string   `json:"Awards"`
	Poster     string   `json:"Poster"`
	Ratings    []Rating `json:"Ratings"`
	Metascore  string   `json:"Metascore"`
	IMDBRating string   `json:"imdbRating"` // "8.8"
	IMDBVotes  string   `json:"imdbVotes"`  // "2,345,678"
	IMDBID     string   `json:"imdbID"`
	Type       string   `json:"Type"`
	Response   string   `json:"Response"`
	Error      string   `json:"Error,omitempty"`
}

// RatingFor returns the value reported by the named source, or "" when absent.
func (d *Detail) RatingFor(source string) string {
	for _, r := range d.Ratings {
		if strings.EqualFold(r.Source, source) {
			return r.Value
		}
	}
	return ""
}
