package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/identikit/scim-bridge/internal/repository"
)

// fakeUserStore is an in-memory UserStore preserving insertion order.
type fakeUserStore struct {
	mu      sync.Mutex
	seq     int
	users   map[string]repository.User
	order   []string
	updates int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]repository.User{}}
}

func (s *fakeUserStore) Find(_ context.Context, p repository.ListParams) ([]repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []repository.User{}
	for _, id := range s.order {
		u := s.users[id]
		if p.Field == "email" && u.Email != p.Value {
			continue
		}
		matched = append(matched, u)
	}
	if p.Offset >= len(matched) {
		return []repository.User{}, nil
	}
	matched = matched[p.Offset:]
	if p.Limit < len(matched) {
		matched = matched[:p.Limit]
	}
	return matched, nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) Create(_ context.Context, f repository.UserFields) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == f.Email {
			return repository.User{}, repository.ErrEmailExists
		}
	}
	s.seq++
	u := repository.User{
		ID:        fmt.Sprintf("u%d", s.seq),
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Active:    f.Active,
	}
	s.users[u.ID] = u
	s.order = append(s.order, u.ID)
	return u, nil
}

func (s *fakeUserStore) Update(_ context.Context, id string, upd repository.UserUpdate) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Active != nil {
		u.Active = *upd.Active
	}
	s.users[id] = u
	s.updates++
	return u, nil
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeUserStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *fakeUserStore) CountByEmail(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.users {
		if u.Email == email {
			n++
		}
	}
	return n, nil
}

// fakeGroupStore is an in-memory GroupStore preserving insertion order.
type fakeGroupStore struct {
	mu      sync.Mutex
	seq     int
	groups  map[string]repository.Group
	order   []string
	updates int
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{groups: map[string]repository.Group{}}
}

func (s *fakeGroupStore) Find(_ context.Context, p repository.ListParams) ([]repository.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []repository.Group{}
	for _, id := range s.order {
		g := s.groups[id]
		if p.Field == "name" && g.Name != p.Value {
			continue
		}
		matched = append(matched, g)
	}
	if p.Offset >= len(matched) {
		return []repository.Group{}, nil
	}
	matched = matched[p.Offset:]
	if p.Limit < len(matched) {
		matched = matched[:p.Limit]
	}
	return matched, nil
}

func (s *fakeGroupStore) FindByID(_ context.Context, id string) (repository.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return repository.Group{}, repository.ErrNotFound
	}
	return g, nil
}

func (s *fakeGroupStore) Create(_ context.Context, name string) (repository.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	g := repository.Group{ID: fmt.Sprintf("g%d", s.seq), Name: name}
	s.groups[g.ID] = g
	s.order = append(s.order, g.ID)
	return g, nil
}

func (s *fakeGroupStore) UpdateName(_ context.Context, id, name string) (repository.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return repository.Group{}, repository.ErrNotFound
	}
	g.Name = name
	s.groups[id] = g
	s.updates++
	return g, nil
}

func (s *fakeGroupStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeGroupStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups), nil
}

// fakeMembershipStore is an in-memory MembershipStore keyed by
// (group, user) pairs, mirroring the composite primary key.
type memKey struct{ group, user string }

type fakeMembershipStore struct {
	mu   sync.Mutex
	rows map[memKey]bool
}

func newFakeMembershipStore() *fakeMembershipStore {
	return &fakeMembershipStore{rows: map[memKey]bool{}}
}

func (s *fakeMembershipStore) Create(_ context.Context, groupID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[memKey{groupID, userID}] = true
	return nil
}

func (s *fakeMembershipStore) DeleteByGroupAndUser(_ context.Context, groupID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, memKey{groupID, userID})
	return nil
}

func (s *fakeMembershipStore) DeleteAllForGroup(_ context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.rows {
		if k.group == groupID {
			delete(s.rows, k)
		}
	}
	return nil
}

func (s *fakeMembershipStore) DeleteAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.rows {
		if k.user == userID {
			delete(s.rows, k)
		}
	}
	return nil
}

func (s *fakeMembershipStore) countByGroup(groupID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.rows {
		if k.group == groupID {
			n++
		}
	}
	return n
}

// doJSON runs one handler against a synthetic request and returns the
// recorder. A trailing id pair binds the :id route parameter.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target string, body any, id ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, "application/scim+json")
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if len(id) > 0 {
		c.SetParamNames("id")
		c.SetParamValues(id[0])
	}
	require.NoError(t, h(c))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
