// Package scim implements the SCIM v2 protocol layer: wire representations
// for User and Group resources, filter-expression parsing, translation of
// PATCH/PUT operation lists into store mutation intents, and the list/error
// envelopes defined by the protocol. Everything in this package is pure
// translation; persistence lives in the repository package.
package scim

// Schema URIs used on the wire.
const (
	UserSchema         = "urn:ietf:params:scim:schemas:core:2.0:User"
	GroupSchema        = "urn:ietf:params:scim:schemas:core:2.0:Group"
	ListResponseSchema = "urn:ietf:params:scim:api:messages:2.0:ListResponse"
	ErrorSchema        = "urn:ietf:params:scim:api:messages:2.0:Error"
)

// ContentType is the media type SCIM responses are served with.
const ContentType = "application/scim+json"

// Error is the SCIM error envelope. Status carries the numeric HTTP
// status code, matching the response status line.
type Error struct {
	Schemas []string `json:"schemas"`
	Detail  string   `json:"detail"`
	Status  int      `json:"status"`
}

// NewError builds an error envelope for the given status and detail message.
func NewError(status int, detail string) Error {
	return Error{
		Schemas: []string{ErrorSchema},
		Detail:  detail,
		Status:  status,
	}
}

// ListResponse is the SCIM list envelope. Resources holds already-mapped
// resource representations; StartIndex is 1-based and echoed from the query.
type ListResponse struct {
	Schemas      []string `json:"schemas"`
	TotalResults int      `json:"totalResults"`
	StartIndex   int      `json:"startIndex"`
	ItemsPerPage int      `json:"itemsPerPage"`
	Resources    []any    `json:"Resources"`
}

// NewListResponse wraps mapped resources in a list envelope. totalResults
// is the exact store count, not the page size.
func NewListResponse(resources []any, startIndex, totalResults int) ListResponse {
	return ListResponse{
		Schemas:      []string{ListResponseSchema},
		TotalResults: totalResults,
		StartIndex:   startIndex,
		ItemsPerPage: len(resources),
		Resources:    resources,
	}
}

// Name is the structured name component of a SCIM user.
type Name struct {
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
}

// Email is one entry of a SCIM user's emails list.
type Email struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary"`
	Type    string `json:"type,omitempty"`
}

// MemberRef is a reference to another resource, used in a group's members
// list and a user's groups list.
type MemberRef struct {
	Value   string `json:"value"`
	Display string `json:"display,omitempty"`
}

// Meta carries SCIM resource metadata.
type Meta struct {
	ResourceType string `json:"resourceType"`
}

// UserResource is the SCIM wire shape of a user. It doubles as the bind
// target for POST and PUT bodies; unknown inbound fields are ignored.
type UserResource struct {
	Schemas     []string    `json:"schemas"`
	ID          string      `json:"id,omitempty"`
	UserName    string      `json:"userName"`
	Name        Name        `json:"name"`
	Emails      []Email     `json:"emails"`
	DisplayName string      `json:"displayName"`
	Locale      string      `json:"locale,omitempty"`
	Active      bool        `json:"active"`
	Groups      []MemberRef `json:"groups"`
	Meta        Meta        `json:"meta"`
}

// GroupResource is the SCIM wire shape of a group.
type GroupResource struct {
	Schemas     []string    `json:"schemas"`
	ID          string      `json:"id,omitempty"`
	DisplayName string      `json:"displayName"`
	Members     []MemberRef `json:"members"`
	Meta        Meta        `json:"meta"`
}

// PatchOp is a single entry of a PATCH request's Operations array. Value is
// left untyped: depending on op and path it may be an object, a string, a
// bool or a list.
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path,omitempty"`
	Value any    `json:"value,omitempty"`
}

// PatchRequest is the body of a PATCH request. PUT bodies for groups share
// the same Operations envelope.
type PatchRequest struct {
	Schemas    []string  `json:"schemas"`
	Operations []PatchOp `json:"Operations"`
}
