package scim

import (
	"strings"

	"github.com/identikit/scim-bridge/internal/repository"
)

// OpKind is the tagged classification of a PATCH operation. Classification
// happens once, in classifyOp; the translators below match on the result
// instead of re-comparing strings at every rule.
type OpKind int

const (
	OpUnknown OpKind = iota
	// OpReplaceResource is a replace with no path: whole-resource field
	// replacement out of an object value.
	OpReplaceResource
	// OpReplaceAttr is a replace with a scalar attribute path.
	OpReplaceAttr
	// OpAddMembers adds group members, one per entry of a list value.
	OpAddMembers
	// OpRemoveMember removes the single member selected by a
	// members[value eq "..."] value path.
	OpRemoveMember
	// OpRemoveAllMembers is a remove with a bare "members" path: a
	// group-wide membership clear.
	OpRemoveAllMembers
)

// classifyOp maps an operation to its kind. The op name is matched
// case-insensitively; attribute paths are exact. For OpRemoveMember the
// parsed value path is returned alongside the kind. Combinations outside
// the supported set classify as OpUnknown and are silently dropped by the
// translators, which keeps unrecognized operations backward-compatible
// no-ops.
func classifyOp(op PatchOp) (OpKind, Filter) {
	switch strings.ToLower(op.Op) {
	case "replace":
		if op.Path == "" {
			return OpReplaceResource, Filter{}
		}
		return OpReplaceAttr, Filter{}
	case "add":
		if op.Path == "members" {
			return OpAddMembers, Filter{}
		}
	case "remove":
		f, err := ParsePath(op.Path)
		if err != nil || f.AttrPath != "members" {
			return OpUnknown, Filter{}
		}
		if f.ValFilter == nil {
			return OpRemoveAllMembers, Filter{}
		}
		if f.ValFilter.AttrPath == "value" && f.ValFilter.Op == "eq" {
			return OpRemoveMember, f
		}
	}
	return OpUnknown, Filter{}
}

// TranslateUserPatch turns a PATCH operation list into partial user
// updates, one intent per effective operation. Only replace operations
// apply to users: with no path the object value's active, displayName and
// structured name are observed; with a path, the scalar attributes below.
// Everything else translates to nothing; an empty result means the request
// had no effective operation.
func TranslateUserPatch(ops []PatchOp) []repository.UserUpdate {
	intents := []repository.UserUpdate{}
	for _, op := range ops {
		kind, _ := classifyOp(op)
		var upd repository.UserUpdate
		switch kind {
		case OpReplaceResource:
			if active, ok := boolField(op.Value, "active"); ok {
				upd.Active = &active
			}
			if display, ok := stringField(op.Value, "displayName"); ok {
				upd.FirstName = &display
			}
			if name, ok := mapField(op.Value, "name"); ok {
				if given, ok := stringField(name, "givenName"); ok {
					upd.FirstName = &given
				}
				if family, ok := stringField(name, "familyName"); ok {
					upd.LastName = &family
				}
			}
		case OpReplaceAttr:
			switch op.Path {
			case "displayName":
				if s, ok := op.Value.(string); ok {
					upd.FirstName = &s
				}
			case "active":
				if b, ok := op.Value.(bool); ok {
					upd.Active = &b
				}
			case "name.givenName":
				if s, ok := op.Value.(string); ok {
					upd.FirstName = &s
				}
			case "name.familyName":
				if s, ok := op.Value.(string); ok {
					upd.LastName = &s
				}
			}
		}
		if !upd.IsZero() {
			intents = append(intents, upd)
		}
	}
	return intents
}

// GroupIntentKind tags a group mutation intent.
type GroupIntentKind int

const (
	// GroupReplaceName replaces the group's name.
	GroupReplaceName GroupIntentKind = iota
	// GroupAddMember inserts one membership row.
	GroupAddMember
	// GroupRemoveMember deletes one membership row.
	GroupRemoveMember
	// GroupClearMembers deletes every membership of the group.
	GroupClearMembers
)

// GroupIntent is a single store mutation derived from a PATCH operation.
// Name is set for GroupReplaceName, UserID for the per-member kinds.
type GroupIntent struct {
	Kind   GroupIntentKind
	Name   string
	UserID string
}

// TranslateGroupPatch turns a PATCH operation list into group mutation
// intents. An add of N members fans out into N intents; a remove with a
// value path yields one delete; a bare "members" remove yields a
// group-wide clear. Name replaces accept either a path-less object value
// or a scalar displayName path. Unsupported combinations are dropped.
func TranslateGroupPatch(ops []PatchOp) []GroupIntent {
	intents := []GroupIntent{}
	for _, op := range ops {
		kind, path := classifyOp(op)
		switch kind {
		case OpReplaceResource:
			if name, ok := stringField(op.Value, "displayName"); ok {
				intents = append(intents, GroupIntent{Kind: GroupReplaceName, Name: name})
			}
		case OpReplaceAttr:
			if op.Path != "displayName" {
				continue
			}
			if name, ok := op.Value.(string); ok {
				intents = append(intents, GroupIntent{Kind: GroupReplaceName, Name: name})
			}
		case OpAddMembers:
			entries, ok := op.Value.([]any)
			if !ok {
				continue
			}
			for _, entry := range entries {
				if userID, ok := stringField(entry, "value"); ok {
					intents = append(intents, GroupIntent{Kind: GroupAddMember, UserID: userID})
				}
			}
		case OpRemoveMember:
			intents = append(intents, GroupIntent{Kind: GroupRemoveMember, UserID: path.ValFilter.CompValue})
		case OpRemoveAllMembers:
			intents = append(intents, GroupIntent{Kind: GroupClearMembers})
		}
	}
	return intents
}

// TranslateGroupPut interprets a PUT body under the PUT-as-replace
// convention: only Operations[0] is considered, and only when its op is
// replace. The returned name is the group's new displayName; ok reports
// whether the body produced a replace at all.
func TranslateGroupPut(req PatchRequest) (name string, ok bool) {
	if len(req.Operations) == 0 {
		return "", false
	}
	first := req.Operations[0]
	if strings.ToLower(first.Op) != "replace" {
		return "", false
	}
	return stringField(first.Value, "displayName")
}

// stringField reads a string key out of an untyped JSON object.
func stringField(v any, key string) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[key].(string)
	return s, ok
}

// boolField reads a bool key out of an untyped JSON object.
func boolField(v any, key string) (bool, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return false, false
	}
	b, ok := m[key].(bool)
	return b, ok
}

// mapField reads a nested object key out of an untyped JSON object.
func mapField(v any, key string) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	nested, ok := m[key].(map[string]any)
	return nested, ok
}
