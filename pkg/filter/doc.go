// Package filter builds the query strings accepted by the mod.io REST API.
//
// A FilterSet holds field filters keyed by field name, an optional sort
// field, and pagination/search parameters:
//
//	fs := filter.New().
//		SortBy("date_updated", false).
//		AddFieldFilter("name", filter.Like("*map*")).
//		AddFieldFilter("tags", filter.In([]string{"pvp", "coop"})).
//		AddFieldFilter("id", filter.Min(100))
//
//	fs.Render() // _sort=-date_updated&name-lk=*map*&tags-in=pvp,coop&id-min=100
//
// Only one filter per (field, operator) pair is kept: adding a second
// Min on "id" replaces the first. Filters are rendered in the order their
// fields were first added.
package filter
