package search

import (
	"sort"
	"strings"

	"github.com/egoavara/smart-updater/internal/card"
	"github.com/sahilm/fuzzy"
)

// Result is one matching pending update
type Result struct {
	Item  card.UpdateItem
	Index int // position in the input slice
	Score int // Higher is better
}

// UpdateSearchable wraps pending updates for fuzzy searching
type UpdateSearchable []card.UpdateItem

// String returns the searchable string for an update
func (u UpdateSearchable) String(i int) string {
	item := u[i]
	parts := []string{item.Name, item.EntityID}
	if item.LatestVersion != "" {
		parts = append(parts, item.LatestVersion)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Len returns the number of updates
func (u UpdateSearchable) Len() int {
	return len(u)
}

// FuzzySearch matches query against name, entity id and latest version.
// An empty query returns every item in its original order.
func FuzzySearch(items []card.UpdateItem, query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		results := make([]Result, len(items))
		for i, item := range items {
			results[i] = Result{Item: item, Index: i}
		}
		return results
	}

	matches := fuzzy.FindFrom(query, UpdateSearchable(items))
	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		results = append(results, Result{
			Item:  items[match.Index],
			Index: match.Index,
			Score: match.Score,
		})
	}

	// Sort by score (descending), ties keep the sensor's order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
