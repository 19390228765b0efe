// Package fuzzysearch ranks scriptindex.Items against a query string:
// an empty query returns every item in natural (index) order; a
// non-empty query returns only matches, sorted by (score desc, frecency
// desc, name asc), each with the matched character positions the UI
// highlights.
package fuzzysearch

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/scriptkit/launchercore/pkg/scriptindex"
)

// FrecencyLookup returns the current frecency score for an item id, or 0
// if the item has never been used. Implemented by pkg/frecency.Store.
type FrecencyLookup func(itemID string) float64

// Result pairs a matched item with its score and the character positions
// within Item.Name that matched, so the UI can highlight them.
type Result struct {
	Item      scriptindex.Item
	Score     int
	Positions []int
	Frecency  float64
}

type itemSource []scriptindex.Item

func (s itemSource) String(i int) string { return s[i].Name }
func (s itemSource) Len() int            { return len(s) }

// Search scores items against query. An empty (after trimming) query
// returns every item in its original order with Score 0 and no positions.
// A non-empty query returns only items whose name fuzzy-matches, ordered
// by (score desc, frecency desc, name asc).
func Search(items []scriptindex.Item, query string, frecency FrecencyLookup) []Result {
	query = strings.TrimSpace(query)
	if frecency == nil {
		frecency = func(string) float64 { return 0 }
	}
	if query == "" {
		out := make([]Result, len(items))
		for i, it := range items {
			out[i] = Result{Item: it, Frecency: frecency(it.ID)}
		}
		return out
	}

	matches := fuzzy.Find(query, itemSource(items))
	out := make([]Result, len(matches))
	for i, m := range matches {
		out[i] = Result{
			Item:      items[m.Index],
			Score:     m.Score,
			Positions: m.MatchedIndexes,
			Frecency:  frecency(items[m.Index].ID),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Frecency != out[j].Frecency {
			return out[i].Frecency > out[j].Frecency
		}
		return out[i].Item.Name < out[j].Item.Name
	})
	return out
}

// AliasFilter implements "Alias shortcut": if the first
// whitespace-delimited token of the query matches a known alias exactly,
// only items sharing that alias are candidates, and the remainder of the
// query becomes the secondary filter applied within them. ok is false
// when the first token isn't a known alias, in which case the caller
// should run Search against the full item set and full query unchanged.
func AliasFilter(items []scriptindex.Item, query string) (filtered []scriptindex.Item, remainder string, ok bool) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil, query, false
	}
	alias := fields[0]
	var matched []scriptindex.Item
	for _, it := range items {
		if it.Alias == alias {
			matched = append(matched, it)
		}
	}
	if len(matched) == 0 {
		return nil, query, false
	}
	return matched, strings.TrimSpace(strings.TrimPrefix(query, alias)), true
}
