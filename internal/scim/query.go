package scim

import "strconv"

// defaultCount is the page size used when the count parameter is absent.
const defaultCount = 100

// Page is the store-side pagination derived from SCIM query parameters.
// StartIndex keeps the 1-based value for echoing back in the list
// envelope; Offset is its 0-based store equivalent.
type Page struct {
	StartIndex int
	Offset     int
	Limit      int
}

// PlanPage converts the startIndex and count query parameters into store
// pagination. startIndex defaults to 1 and is clamped there when a client
// sends 0 or a negative value, so the offset can never go negative; count
// defaults to 100.
func PlanPage(startIndex, count string) Page {
	si := 1
	if v, err := strconv.Atoi(startIndex); err == nil && v > 1 {
		si = v
	}
	limit := defaultCount
	if v, err := strconv.Atoi(count); err == nil && v >= 0 {
		limit = v
	}
	return Page{StartIndex: si, Offset: si - 1, Limit: limit}
}

// Predicate is an equality restriction on a store column. A zero Field
// means no restriction (full scan).
type Predicate struct {
	Field string
	Value string
}

// UserPredicate maps a parsed filter onto the users table. Only
// `userName eq` is supported and becomes an equality on the email column;
// any other shape yields an empty predicate.
func UserPredicate(f *Filter) Predicate {
	if f != nil && f.Op == "eq" && f.AttrPath == "userName" {
		return Predicate{Field: "email", Value: f.CompValue}
	}
	return Predicate{}
}

// GroupPredicate maps a parsed filter onto the groups table. Only
// `displayName eq` is supported and becomes an equality on the name
// column; any other shape yields an empty predicate.
func GroupPredicate(f *Filter) Predicate {
	if f != nil && f.Op == "eq" && f.AttrPath == "displayName" {
		return Predicate{Field: "name", Value: f.CompValue}
	}
	return Predicate{}
}
