package fuzzysearch

import (
	"sort"

	"github.com/scriptkit/launchercore/pkg/scriptindex"
)

// Section is one named, possibly-empty group in the empty-query view
//. Section headers are non-selectable; keyboard
// navigation must skip a Section with no Results.
type Section struct {
	Title   string
	Results []Result
}

const (
	suggestedCap       = 10
	suggestedMinScore  = 0.1
	favouritesGroupKey = "favourite"
)

// Group builds the empty-query section list in spec order: Suggested,
// Favourites, Apps, Scripts, Scriptlets, Built-ins. isFavourite reports
// whether an item id is pinned as a favourite (no pack-wide favourites
// store exists yet; callers supply the predicate).
func Group(items []scriptindex.Item, frecency FrecencyLookup, isFavourite func(itemID string) bool) []Section {
	if frecency == nil {
		frecency = func(string) float64 { return 0 }
	}
	if isFavourite == nil {
		isFavourite = func(string) bool { return false }
	}

	byKind := make(map[scriptindex.ItemKind][]scriptindex.Item)
	for _, it := range items {
		byKind[it.Kind] = append(byKind[it.Kind], it)
	}

	var suggested []Result
	for _, it := range items {
		score := frecency(it.ID)
		if score < suggestedMinScore {
			continue
		}
		suggested = append(suggested, Result{Item: it, Frecency: score})
	}
	sort.SliceStable(suggested, func(i, j int) bool {
		if suggested[i].Frecency != suggested[j].Frecency {
			return suggested[i].Frecency > suggested[j].Frecency
		}
		return suggested[i].Item.Name < suggested[j].Item.Name
	})
	if len(suggested) > suggestedCap {
		suggested = suggested[:suggestedCap]
	}

	var favourites []Result
	for _, it := range items {
		if isFavourite(it.ID) {
			favourites = append(favourites, Result{Item: it, Frecency: frecency(it.ID)})
		}
	}

	toResults := func(kind scriptindex.ItemKind) []Result {
		kindItems := byKind[kind]
		out := make([]Result, len(kindItems))
		for i, it := range kindItems {
			out[i] = Result{Item: it, Frecency: frecency(it.ID)}
		}
		return out
	}

	return []Section{
		{Title: "Suggested", Results: suggested},
		{Title: "Favourites", Results: favourites},
		{Title: "Apps", Results: toResults(scriptindex.KindApp)},
		{Title: "Scripts", Results: toResults(scriptindex.KindScript)},
		{Title: "Scriptlets", Results: toResults(scriptindex.KindScriptlet)},
		{Title: "Built-ins", Results: toResults(scriptindex.KindBuiltin)},
	}
}
