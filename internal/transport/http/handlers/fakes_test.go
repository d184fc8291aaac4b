package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/repository"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/middleware"
)

type memoryStore struct {
	mu             sync.Mutex
	users          map[string]*domain.User
	establishments map[string]domain.Establishment
	interventions  map[string]domain.Intervention
	comments       []domain.Comment
	pending        map[string][]domain.PendingAction
	switchErr      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:          make(map[string]*domain.User),
		establishments: make(map[string]domain.Establishment),
		interventions:  make(map[string]domain.Intervention),
		pending:        make(map[string][]domain.PendingAction),
	}
}

func (m *memoryStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryStore) UpdateCurrentEstablishment(_ context.Context, userID, establishmentID string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.switchErr != nil {
		return m.switchErr
	}
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	id := establishmentID
	u.CurrentEstablishmentID = &id
	u.UpdatedAt = updatedAt
	return nil
}

type establishmentRepo struct{ store *memoryStore }

func (r establishmentRepo) List(context.Context) ([]domain.Establishment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.Establishment, 0, len(r.store.establishments))
	for _, e := range r.store.establishments {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r establishmentRepo) GetByID(_ context.Context, id string) (*domain.Establishment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.establishments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

type interventionRepo struct{ store *memoryStore }

func (r interventionRepo) Create(_ context.Context, i domain.Intervention) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.interventions[i.ID] = i
	return nil
}

func (r interventionRepo) GetByID(_ context.Context, id string) (*domain.Intervention, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	i, ok := r.store.interventions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &i, nil
}

func (r interventionRepo) ListByEstablishment(_ context.Context, establishmentID string) ([]domain.Intervention, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Intervention
	for _, i := range r.store.interventions {
		if i.EstablishmentID == establishmentID {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r interventionRepo) UpdateStatus(_ context.Context, id string, status domain.InterventionStatus, updatedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	i, ok := r.store.interventions[id]
	if !ok {
		return repository.ErrNotFound
	}
	i.Status = status
	i.UpdatedAt = updatedAt
	r.store.interventions[id] = i
	return nil
}

func (r interventionRepo) UpdateAssignees(_ context.Context, id string, assigneeIDs []string, updatedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	i, ok := r.store.interventions[id]
	if !ok {
		return repository.ErrNotFound
	}
	i.AssignedToIDs = assigneeIDs
	i.UpdatedAt = updatedAt
	r.store.interventions[id] = i
	return nil
}

func (r interventionRepo) AddComment(_ context.Context, c domain.Comment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.comments = append(r.store.comments, c)
	return nil
}

func (r interventionRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.interventions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.interventions, id)
	return nil
}

type pendingQueue struct{ store *memoryStore }

func (q pendingQueue) Enqueue(_ context.Context, a domain.PendingAction) error {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	q.store.pending[a.UserID] = append(q.store.pending[a.UserID], a)
	return nil
}

func (q pendingQueue) Peek(_ context.Context, userID string) ([]domain.PendingAction, error) {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	return append([]domain.PendingAction(nil), q.store.pending[userID]...), nil
}

func (q pendingQueue) Ack(_ context.Context, userID string, n int) error {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	queued := q.store.pending[userID]
	if n > len(queued) {
		n = len(queued)
	}
	q.store.pending[userID] = queued[n:]
	return nil
}

func (q pendingQueue) Len(_ context.Context, userID string) (int64, error) {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	return int64(len(q.store.pending[userID])), nil
}

// asUser stands in for RequireAuth.
func asUser(store *memoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Test-User")
		if id == "" {
			c.Next()
			return
		}
		user, err := store.GetByID(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(middleware.UserIDKey, user.ID)
		c.Set(middleware.UserKey, user)
		c.Next()
	}
}

func newTestRouter(store *memoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(asUser(store))
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func strPtr(s string) *string { return &s }

func seedHotels(store *memoryStore) {
	store.establishments["est-a"] = domain.Establishment{ID: "est-a", Name: "Hôtel A", Active: true, Features: map[string]bool{"planning": true}}
	store.establishments["est-b"] = domain.Establishment{ID: "est-b", Name: "Hôtel B", Active: true}
	store.establishments["est-c"] = domain.Establishment{ID: "est-c", Name: "Hôtel C", Active: false}

	store.users["manager"] = &domain.User{ID: "manager", Role: domain.RoleManager, EstablishmentIDs: []string{"est-a", "est-b"}, CurrentEstablishmentID: strPtr("est-a")}
	store.users["tech"] = &domain.User{ID: "tech", Role: domain.RoleTechnician, EstablishmentIDs: []string{"est-a"}}
	store.users["reception"] = &domain.User{ID: "reception", Role: domain.RoleReception, EstablishmentIDs: []string{"est-a"}}
}
