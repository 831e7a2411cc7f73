// Package handler contains the echo handlers for the SCIM v2 surface.
// Handlers depend on the store through the interfaces below so tests can
// substitute in-memory doubles for MySQL.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/identikit/scim-bridge/internal/queue"
	"github.com/identikit/scim-bridge/internal/repository"
	"github.com/identikit/scim-bridge/internal/scim"
	queuepublisher "github.com/identikit/scim-bridge/internal/service"
)

// UserStore is the repository contract the user handlers need.
type UserStore interface {
	Find(ctx context.Context, p repository.ListParams) ([]repository.User, error)
	FindByID(ctx context.Context, id string) (repository.User, error)
	Create(ctx context.Context, f repository.UserFields) (repository.User, error)
	Update(ctx context.Context, id string, u repository.UserUpdate) (repository.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountByEmail(ctx context.Context, email string) (int, error)
}

// GroupStore is the repository contract the group handlers need.
type GroupStore interface {
	Find(ctx context.Context, p repository.ListParams) ([]repository.Group, error)
	FindByID(ctx context.Context, id string) (repository.Group, error)
	Create(ctx context.Context, name string) (repository.Group, error)
	UpdateName(ctx context.Context, id, name string) (repository.Group, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// MembershipStore is the repository contract for the membership relation.
type MembershipStore interface {
	Create(ctx context.Context, groupID, userID string) error
	DeleteByGroupAndUser(ctx context.Context, groupID, userID string) error
	DeleteAllForGroup(ctx context.Context, groupID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// scimJSON writes v as an application/scim+json response. Setting the
// header first keeps echo's JSON writer from stamping application/json.
func scimJSON(c echo.Context, status int, v any) error {
	c.Response().Header().Set(echo.HeaderContentType, scim.ContentType)
	return c.JSON(status, v)
}

// scimError writes a SCIM error envelope whose status field matches the
// HTTP status code.
func scimError(c echo.Context, status int, detail string) error {
	return scimJSON(c, status, scim.NewError(status, detail))
}

// repoError converts a repository failure into the matching SCIM error
// response. Unexpected errors are logged with context and surfaced as a
// sanitized 500; transport internals never reach the client.
func repoError(c echo.Context, err error, notFoundDetail string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return scimError(c, http.StatusNotFound, notFoundDetail)
	case errors.Is(err, repository.ErrEmailExists):
		return scimError(c, http.StatusConflict, "Conflict - User already exists")
	default:
		log.Printf("scim: store operation failed: %v", err)
		return scimError(c, http.StatusInternalServerError, "database error")
	}
}

// bindJSON decodes a request body. The SCIM media type is
// application/scim+json, which echo's binder does not recognize as JSON,
// so bodies are decoded directly.
func bindJSON(c echo.Context, v any) error {
	return json.NewDecoder(c.Request().Body).Decode(v)
}

// publishActivity emits a best-effort provisioning event off the request
// path. Publish failures are logged by the publisher and never affect the
// response.
func publishActivity(resource, resourceID, operation string) {
	ev := queue.ProvisioningEvent{
		Resource:   resource,
		ResourceID: resourceID,
		Operation:  operation,
		Status:     "success",
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		_ = queuepublisher.PublishProvisioningActivity(context.Background(), ev)
	}()
}
