package scim

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/identikit/scim-bridge/internal/repository"
)

// ErrNoPrimaryEmail is returned when an inbound user resource carries
// neither a primary email entry nor a userName to fall back on.
var ErrNoPrimaryEmail = fmt.Errorf("no primary email in resource")

// UserToResource maps a store record to its SCIM representation. The
// user's group memberships are not populated; groups is always emitted as
// an empty list.
func UserToResource(u repository.User) UserResource {
	return UserResource{
		Schemas:  []string{UserSchema},
		ID:       u.ID,
		UserName: u.Email,
		Name: Name{
			GivenName:  u.FirstName,
			FamilyName: u.LastName,
		},
		Emails: []Email{
			{Value: u.Email, Primary: true, Type: "work"},
		},
		DisplayName: u.FirstName + " " + u.LastName,
		Locale:      "en-US",
		Active:      u.Active,
		Groups:      []MemberRef{},
		Meta:        Meta{ResourceType: "User"},
	}
}

// GroupToResource maps a store record to its SCIM representation. Members
// are not populated; the list is always emitted empty.
func GroupToResource(g repository.Group) GroupResource {
	return GroupResource{
		Schemas:     []string{GroupSchema},
		ID:          g.ID,
		DisplayName: g.Name,
		Members:     []MemberRef{},
		Meta:        Meta{ResourceType: "Group"},
	}
}

// Excluding returns the group representation with the named top-level
// attributes removed, honoring the excludedAttributes query parameter.
// With no exclusions the resource is returned unchanged.
func (g GroupResource) Excluding(excluded string) any {
	excluded = strings.TrimSpace(excluded)
	if excluded == "" {
		return g
	}
	b, err := json.Marshal(g)
	if err != nil {
		return g
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return g
	}
	for _, attr := range strings.Split(excluded, ",") {
		delete(m, strings.TrimSpace(attr))
	}
	return m
}

// UserFieldsFromResource derives store columns from an inbound SCIM user.
// Name parts fall back to displayName, and the email is taken from the
// entry flagged primary, falling back to userName. An unresolvable email
// is a validation error, never a silent empty column.
func UserFieldsFromResource(r UserResource) (repository.UserFields, error) {
	email := ""
	for _, e := range r.Emails {
		if e.Primary {
			email = e.Value
			break
		}
	}
	if email == "" {
		email = r.UserName
	}
	if strings.TrimSpace(email) == "" {
		return repository.UserFields{}, ErrNoPrimaryEmail
	}

	first := r.Name.GivenName
	if first == "" {
		first = r.DisplayName
	}
	last := r.Name.FamilyName
	if last == "" {
		last = r.DisplayName
	}

	return repository.UserFields{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Active:    r.Active,
	}, nil
}
