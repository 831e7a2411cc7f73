package scim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identikit/scim-bridge/internal/repository"
)

func TestUserToResource(t *testing.T) {
	u := repository.User{
		ID:        "u1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Active:    true,
	}
	r := UserToResource(u)

	assert.Equal(t, []string{UserSchema}, r.Schemas)
	assert.Equal(t, "u1", r.ID)
	assert.Equal(t, "ada@example.com", r.UserName)
	assert.Equal(t, "Ada", r.Name.GivenName)
	assert.Equal(t, "Lovelace", r.Name.FamilyName)
	assert.Equal(t, "Ada Lovelace", r.DisplayName)
	assert.Equal(t, "en-US", r.Locale)
	assert.True(t, r.Active)
	require.Len(t, r.Emails, 1)
	assert.Equal(t, Email{Value: "ada@example.com", Primary: true, Type: "work"}, r.Emails[0])
	assert.Empty(t, r.Groups)
	assert.NotNil(t, r.Groups)
	assert.Equal(t, "User", r.Meta.ResourceType)
}

func TestGroupToResource(t *testing.T) {
	r := GroupToResource(repository.Group{ID: "g1", Name: "Engineering"})

	assert.Equal(t, []string{GroupSchema}, r.Schemas)
	assert.Equal(t, "g1", r.ID)
	assert.Equal(t, "Engineering", r.DisplayName)
	assert.Empty(t, r.Members)
	assert.NotNil(t, r.Members)
	assert.Equal(t, "Group", r.Meta.ResourceType)
}

func TestGroupResource_Excluding(t *testing.T) {
	r := GroupToResource(repository.Group{ID: "g1", Name: "Engineering"})

	b, err := json.Marshal(r.Excluding("members"))
	require.NoError(t, err)
	m := map[string]any{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "members")
	assert.Contains(t, m, "displayName")

	// Multiple attributes, comma separated.
	b, err = json.Marshal(r.Excluding("members, meta"))
	require.NoError(t, err)
	m = map[string]any{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "members")
	assert.NotContains(t, m, "meta")

	// No exclusions returns the resource untouched.
	assert.Equal(t, r, r.Excluding(""))
}

func TestUserFieldsFromResource_PrimaryEmail(t *testing.T) {
	fields, err := UserFieldsFromResource(UserResource{
		UserName: "fallback@example.com",
		Name:     Name{GivenName: "Ada", FamilyName: "Lovelace"},
		Emails: []Email{
			{Value: "other@example.com"},
			{Value: "ada@example.com", Primary: true},
		},
		Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", fields.Email)
	assert.Equal(t, "Ada", fields.FirstName)
	assert.Equal(t, "Lovelace", fields.LastName)
	assert.True(t, fields.Active)
}

func TestUserFieldsFromResource_UserNameFallback(t *testing.T) {
	fields, err := UserFieldsFromResource(UserResource{
		UserName: "ada@example.com",
		Emails:   []Email{{Value: "other@example.com"}}, // none primary
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", fields.Email)
}

func TestUserFieldsFromResource_DisplayNameFallback(t *testing.T) {
	fields, err := UserFieldsFromResource(UserResource{
		UserName:    "ada@example.com",
		DisplayName: "Ada Lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", fields.FirstName)
	assert.Equal(t, "Ada Lovelace", fields.LastName)
}

func TestUserFieldsFromResource_NoEmail(t *testing.T) {
	_, err := UserFieldsFromResource(UserResource{DisplayName: "Nameless"})
	assert.ErrorIs(t, err, ErrNoPrimaryEmail)
}

func TestNewListResponse(t *testing.T) {
	resources := []any{"a", "b"}
	lr := NewListResponse(resources, 3, 5)

	assert.Equal(t, []string{ListResponseSchema}, lr.Schemas)
	assert.Equal(t, 5, lr.TotalResults)
	assert.Equal(t, 3, lr.StartIndex)
	assert.Equal(t, 2, lr.ItemsPerPage)
	assert.Equal(t, resources, lr.Resources)
}

func TestNewError(t *testing.T) {
	e := NewError(409, "Conflict - User already exists")
	assert.Equal(t, []string{ErrorSchema}, e.Schemas)
	assert.Equal(t, 409, e.Status)
	assert.Equal(t, "Conflict - User already exists", e.Detail)
}
