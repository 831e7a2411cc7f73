package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/identikit/scim-bridge/internal/repository"
	"github.com/identikit/scim-bridge/internal/scim"
)

// UserHandler serves the /scim/v2/Users endpoints.
type UserHandler struct {
	Users       UserStore
	Memberships MembershipStore
}

// NewUserHandler constructs a UserHandler and panics if a dependency is nil.
func NewUserHandler(users UserStore, memberships MembershipStore) *UserHandler {
	if users == nil || memberships == nil {
		panic("nil store passed to NewUserHandler")
	}
	return &UserHandler{Users: users, Memberships: memberships}
}

// List handles GET /Users. A userName equality filter narrows the page;
// the total count runs as a second query alongside the page fetch.
func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	pred := scim.Predicate{}
	if raw := c.QueryParam("filter"); raw != "" {
		f, err := scim.ParseFilter(raw)
		if err != nil {
			return scimError(c, http.StatusBadRequest, err.Error())
		}
		pred = scim.UserPredicate(&f)
	}
	page := scim.PlanPage(c.QueryParam("startIndex"), c.QueryParam("count"))

	var (
		users []repository.User
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = h.Users.Find(gctx, repository.ListParams{
			Offset: page.Offset,
			Limit:  page.Limit,
			Field:  pred.Field,
			Value:  pred.Value,
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.Users.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return repoError(c, err, "user not found")
	}

	resources := make([]any, 0, len(users))
	for _, u := range users {
		resources = append(resources, scim.UserToResource(u))
	}
	return scimJSON(c, http.StatusOK, scim.NewListResponse(resources, page.StartIndex, total))
}

// Get handles GET /Users/{id}.
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.Users.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repoError(c, err, "user not found")
	}
	return scimJSON(c, http.StatusOK, scim.UserToResource(u))
}

// Create handles POST /Users. The primary email doubles as userName and
// must be unique: a pre-insert count catches the common race-free case and
// the unique index backs it up.
func (h *UserHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var body scim.UserResource
	if err := bindJSON(c, &body); err != nil {
		return scimError(c, http.StatusBadRequest, "invalid JSON body")
	}
	fields, err := scim.UserFieldsFromResource(body)
	if err != nil {
		return scimError(c, http.StatusBadRequest, err.Error())
	}

	n, err := h.Users.CountByEmail(ctx, fields.Email)
	if err != nil {
		return repoError(c, err, "user not found")
	}
	if n > 0 {
		return scimError(c, http.StatusConflict, "Conflict - User already exists")
	}

	u, err := h.Users.Create(ctx, fields)
	if err != nil {
		return repoError(c, err, "user not found")
	}
	publishActivity("User", u.ID, "create")
	return scimJSON(c, http.StatusOK, scim.UserToResource(u))
}

// Patch handles PATCH /Users/{id}. Each effective operation becomes one
// partial update; updates are dispatched concurrently and the handler
// waits for all before re-fetching the resource. There is no transaction
// around the batch, so one failing operation can leave the others applied.
// A list that translates to zero updates reports 404, which conflates
// "nothing to do" with "no such resource"; the contract is kept as is.
func (h *UserHandler) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var req scim.PatchRequest
	if err := bindJSON(c, &req); err != nil {
		return scimError(c, http.StatusBadRequest, "invalid JSON body")
	}

	intents := scim.TranslateUserPatch(req.Operations)
	if len(intents) == 0 {
		return scimError(c, http.StatusNotFound, "no operations found")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, upd := range intents {
		upd := upd
		g.Go(func() error {
			_, err := h.Users.Update(gctx, id, upd)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return repoError(c, err, "user not found")
	}

	u, err := h.Users.FindByID(ctx, id)
	if err != nil {
		return repoError(c, err, "user not found")
	}
	publishActivity("User", id, "patch")
	return scimJSON(c, http.StatusOK, scim.UserToResource(u))
}

// Put handles PUT /Users/{id}: a full replace of name, email and active
// with the same field derivation as create.
func (h *UserHandler) Put(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var body scim.UserResource
	if err := bindJSON(c, &body); err != nil {
		return scimError(c, http.StatusBadRequest, "invalid JSON body")
	}
	fields, err := scim.UserFieldsFromResource(body)
	if err != nil {
		return scimError(c, http.StatusBadRequest, err.Error())
	}

	u, err := h.Users.Update(ctx, id, repository.UserUpdate{
		FirstName: &fields.FirstName,
		LastName:  &fields.LastName,
		Email:     &fields.Email,
		Active:    &fields.Active,
	})
	if err != nil {
		return repoError(c, err, "user not found")
	}
	publishActivity("User", id, "replace")
	return scimJSON(c, http.StatusOK, scim.UserToResource(u))
}

// Delete handles DELETE /Users/{id}. Memberships are cascaded first so the
// relation table holds no rows for ids that no longer resolve; deleting an
// absent user still answers 204.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.Memberships.DeleteAllForUser(ctx, id); err != nil {
		return repoError(c, err, "user not found")
	}
	if err := h.Users.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return repoError(c, err, "user not found")
	}
	publishActivity("User", id, "delete")
	return c.NoContent(http.StatusNoContent)
}
