package scim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter_RoundTrip(t *testing.T) {
	cases := []struct {
		attr  string
		value string
	}{
		{"userName", "bob@example.com"},
		{"displayName", "Engineering"},
		{"externalId", "0ujsswThIGTUYm2K8FjOOfXtY1K"},
		{"userName", "spaced out value"},
	}
	for _, tc := range cases {
		expr := fmt.Sprintf("%s eq %q", tc.attr, tc.value)
		f, err := ParseFilter(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, tc.attr, f.AttrPath)
		assert.Equal(t, "eq", f.Op)
		assert.Equal(t, tc.value, f.CompValue)
		assert.Nil(t, f.ValFilter)
	}
}

func TestParseFilter_OperatorCaseInsensitive(t *testing.T) {
	for _, op := range []string{"eq", "EQ", "Eq"} {
		f, err := ParseFilter(fmt.Sprintf(`userName %s "bob"`, op))
		require.NoError(t, err)
		assert.Equal(t, "eq", f.Op)
	}
}

func TestParseFilter_UnquotedValue(t *testing.T) {
	f, err := ParseFilter("userName eq bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", f.CompValue)
}

func TestParseFilter_Errors(t *testing.T) {
	for _, expr := range []string{
		"",
		"userName",
		"userName eq",
		`userName co "bob"`,
		`userName gt "bob"`,
	} {
		_, err := ParseFilter(expr)
		require.Error(t, err, expr)
		assert.ErrorIs(t, err, ErrFilterSyntax, expr)
	}
}

func TestParsePath_BareAttribute(t *testing.T) {
	f, err := ParsePath("members")
	require.NoError(t, err)
	assert.Equal(t, "members", f.AttrPath)
	assert.Nil(t, f.ValFilter)
}

func TestParsePath_ValueFilter(t *testing.T) {
	f, err := ParsePath(`members[value eq "42"]`)
	require.NoError(t, err)
	assert.Equal(t, "members", f.AttrPath)
	require.NotNil(t, f.ValFilter)
	assert.Equal(t, "value", f.ValFilter.AttrPath)
	assert.Equal(t, "eq", f.ValFilter.Op)
	assert.Equal(t, "42", f.ValFilter.CompValue)
}

func TestParsePath_Expression(t *testing.T) {
	f, err := ParsePath(`userName eq "bob"`)
	require.NoError(t, err)
	assert.Equal(t, "userName", f.AttrPath)
	assert.Equal(t, "bob", f.CompValue)
}

func TestParsePath_Errors(t *testing.T) {
	for _, path := range []string{
		"",
		`members[value eq "42"`,
		`[value eq "42"]`,
		`members[value co "42"]`,
	} {
		_, err := ParsePath(path)
		require.Error(t, err, path)
	}
}
