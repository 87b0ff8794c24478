package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Relevance weights.
const (
	exactTitleBonus  = 2.0
	titlePhraseBonus = 1.0
	titleWordWeight  = 0.5
	otherFieldWeight = 0.1
)

// foldText lowercases, strips accents and punctuation, and collapses whitespace.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, strings.ToLower(s))

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

type rankedMovie struct {
	movie *Movie
	score float64
}

// Rank returns the movies that textually match term, most relevant first.
// A movie matches when every word of term appears in its title, plot,
// cast, crew or genres. Equal scores keep the incoming order.
func Rank(term string, movies []*Movie) []*Movie {
	query := foldText(term)
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil
	}

	var ranked []rankedMovie
	for _, m := range movies {
		title := foldText(m.Title)
		titleWords := strings.Fields(title)
		other := foldText(strings.Join([]string{
			m.Plot,
			strings.Join(m.Actors, " "),
			strings.Join(m.Directors, " "),
			strings.Join(m.Genres, " "),
		}, " "))
		otherWords := strings.Fields(other)

		score := 0.0
		matched := true
		for _, w := range words {
			switch {
			case containsWord(titleWords, w):
				score += titleWordWeight
			case containsWord(otherWords, w):
				score += otherFieldWeight
			default:
				matched = false
			}
			if !matched {
				break
			}
		}
		if !matched {
			continue
		}

		switch {
		case title == query:
			score += exactTitleBonus
		case strings.Contains(title, query):
			score += titlePhraseBonus
		}
		score += float64(edlib.JaroWinklerSimilarity(query, title))

		ranked = append(ranked, rankedMovie{movie: m, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]*Movie, len(ranked))
	for i, r := range ranked {
		out[i] = r.movie
	}
	return out
}

// containsWord matches w as a whole word or as a word prefix of length >= 3.
func containsWord(words []string, w string) bool {
	for _, candidate := range words {
		if candidate == w || (len(w) >= 3 && strings.HasPrefix(candidate, w)) {
			return true
		}
	}
	return false
}
