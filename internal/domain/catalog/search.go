package catalog

import "strings"

const (
	// MaxRecommendations caps the autocomplete list.
	MaxRecommendations = 5
	// minRecommendQuery is the trimmed length a query must exceed to get recommendations.
	minRecommendQuery = 1
)

// Filter keeps pests whose name or description contains query, ignoring case.
// A blank query returns the list unchanged.
func Filter(pests []Pest, query string) []Pest {
	if strings.TrimSpace(query) == "" {
		return pests
	}

	needle := strings.ToLower(query)
	out := make([]Pest, 0, len(pests))
	for _, p := range pests {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Recommend returns up to MaxRecommendations pests whose name contains the
// trimmed query. Queries of one character or less get nothing.
func Recommend(pests []Pest, query string) []Pest {
	needle := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(needle)) <= minRecommendQuery {
		return []Pest{}
	}

	out := make([]Pest, 0, MaxRecommendations)
	for _, p := range pests {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
			if len(out) == MaxRecommendations {
				break
			}
		}
	}
	return out
}
