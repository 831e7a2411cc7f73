package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/identikit/scim-bridge/internal/repository"
	"github.com/identikit/scim-bridge/internal/scim"
)

// GroupHandler serves the /scim/v2/Groups endpoints.
type GroupHandler struct {
	Groups      GroupStore
	Memberships MembershipStore
}

// NewGroupHandler constructs a GroupHandler and panics if a dependency is nil.
func NewGroupHandler(groups GroupStore, memberships MembershipStore) *GroupHandler {
	if groups == nil || memberships == nil {
		panic("nil store passed to NewGroupHandler")
	}
	return &GroupHandler{Groups: groups, Memberships: memberships}
}

// List handles GET /Groups. A displayName equality filter narrows the
// page; excludedAttributes strips top-level fields from each resource.
func (h *GroupHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	pred := scim.Predicate{}
	if raw := c.QueryParam("filter"); raw != "" {
		f, err := scim.ParseFilter(raw)
		if err != nil {
			return scimError(c, http.StatusBadRequest, err.Error())
		}
		pred = scim.GroupPredicate(&f)
	}
	page := scim.PlanPage(c.QueryParam("startIndex"), c.QueryParam("count"))
	excluded := c.QueryParam("excludedAttributes")

	var (
		groups []repository.Group
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = h.Groups.Find(gctx, repository.ListParams{
			Offset: page.Offset,
			Limit:  page.Limit,
			Field:  pred.Field,
			Value:  pred.Value,
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.Groups.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return repoError(c, err, "group not found")
	}

	resources := make([]any, 0, len(groups))
	for _, grp := range groups {
		resources = append(resources, scim.GroupToResource(grp).Excluding(excluded))
	}
	return scimJSON(c, http.StatusOK, scim.NewListResponse(resources, page.StartIndex, total))
}

// Get handles GET /Groups/{id}.
func (h *GroupHandler) Get(c echo.Context) error {
	grp, err := h.Groups.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repoError(c, err, "group not found")
	}
	return scimJSON(c, http.StatusOK, scim.GroupToResource(grp).Excluding(c.QueryParam("excludedAttributes")))
}

// Create handles POST /Groups.
func (h *GroupHandler) Create(c echo.Context) error {
	var body scim.GroupResource
	if err := bindJSON(c, &body); err != nil {
		return scimError(c, http.StatusBadRequest, "invalid JSON body")
	}
	if body.DisplayName == "" {
		return scimError(c, http.StatusBadRequest, "displayName is required")
	}

	grp, err := h.Groups.Create(c.Request().Context(), body.DisplayName)
	if err != nil {
		return repoError(c, err, "group not found")
	}
	publishActivity("Group", grp.ID, "create")
	return scimJSON(c, http.StatusOK, scim.GroupToResource(grp))
}

// Patch handles PATCH /Groups/{id}: name replaces and membership add,
// remove and clear. All intents are dispatched concurrently and the
// handler waits for the batch; the intents target disjoint rows, so their
// relative order is immaterial, but there is no transaction around them
// and a partial batch stays applied when one intent fails. Zero effective
// operations answer 404, which conflates a no-op with a missing resource;
// the contract is kept as is.
func (h *GroupHandler) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var req scim.PatchRequest
	if err := bindJSON(c, &req); err != nil {
		return scimError(c, http.StatusBadRequest, "invalid JSON body")
	}

	if _, err := h.Groups.FindByID(ctx, id); err != nil {
		return repoError(c, err, "group not found")
	}

	intents := scim.TranslateGroupPatch(req.Operations)
	if len(intents) == 0 {
		return scimError(c, http.StatusNotFound, "no operations found")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, intent := range intents {
		intent := intent
		g.Go(func() error {
			return h.applyIntent(gctx, id, intent)
		})
	}
	if err := g.Wait(); err != nil {
		return repoError(c, err, "group not found")
	}

	grp, err := h.Groups.FindByID(ctx, id)
	if err != nil {
		return repoError(c, err, "group not found")
	}
	publishActivity("Group", id, "patch")
	return scimJSON(c, http.StatusOK, scim.GroupToResource(grp))
}

// applyIntent executes one translated mutation against the store.
func (h *GroupHandler) applyIntent(ctx context.Context, groupID string, intent scim.GroupIntent) error {
	switch intent.Kind {
	case scim.GroupReplaceName:
		_, err := h.Groups.UpdateName(ctx, groupID, intent.Name)
		return err
	case scim.GroupAddMember:
		return h.Memberships.Create(ctx, groupID, intent.UserID)
	case scim.GroupRemoveMember:
		return h.Memberships.DeleteByGroupAndUser(ctx, groupID, intent.UserID)
	case scim.GroupClearMembers:
		return h.Memberships.DeleteAllForGroup(ctx, groupID)
	default:
		return fmt.Errorf("unknown group intent kind %d", intent.Kind)
	}
}

// Put handles PUT /Groups/{id} under the PUT-as-replace convention: only
// Operations[0] is interpreted, and only when it is a replace. Any other
// body produces no update and answers 404.
func (h *GroupHandler) Put(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var req scim.PatchRequest
	if err := bindJSON(c, &req); err != nil {
		return scimError(c, http.StatusBadRequest, "invalid JSON body")
	}

	name, ok := scim.TranslateGroupPut(req)
	if !ok {
		return scimError(c, http.StatusNotFound, "no operations found")
	}

	grp, err := h.Groups.UpdateName(ctx, id, name)
	if err != nil {
		return repoError(c, err, "group not found")
	}
	publishActivity("Group", id, "replace")
	return scimJSON(c, http.StatusOK, scim.GroupToResource(grp))
}

// Delete handles DELETE /Groups/{id}. Memberships go first so a deleted
// group leaves no rows behind; deleting an absent group still answers 204.
func (h *GroupHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.Memberships.DeleteAllForGroup(ctx, id); err != nil {
		return repoError(c, err, "group not found")
	}
	if err := h.Groups.Delete(ctx, id); err != nil {
		return repoError(c, err, "group not found")
	}
	publishActivity("Group", id, "delete")
	return c.NoContent(http.StatusNoContent)
}
