package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/repository"
)

type establishmentRepoStub struct {
	mu        sync.Mutex
	items     map[string]domain.Establishment
	order     []string
	listErr   error
	getErr    error
	listCalls int
	getCalls  []string
	// block, when set, is waited on by the first GetByID/List call carrying that id ("*" for List).
	block map[string]chan struct{}
}

func newEstablishmentRepoStub(items ...domain.Establishment) *establishmentRepoStub {
	s := &establishmentRepoStub{items: make(map[string]domain.Establishment)}
	for _, it := range items {
		s.items[it.ID] = it
		s.order = append(s.order, it.ID)
	}
	return s
}

func (s *establishmentRepoStub) List(ctx context.Context) ([]domain.Establishment, error) {
	s.mu.Lock()
	s.listCalls++
	ch := s.block["*"]
	s.mu.Unlock()
	if ch != nil {
		<-ch
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.Establishment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *establishmentRepoStub) GetByID(ctx context.Context, id string) (*domain.Establishment, error) {
	s.mu.Lock()
	s.getCalls = append(s.getCalls, id)
	ch := s.block[id]
	s.mu.Unlock()
	if ch != nil {
		<-ch
	}
	if s.getErr != nil {
		return nil, s.getErr
	}
	est, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &est, nil
}

type userRepoStub struct {
	mu        sync.Mutex
	users     map[string]domain.User
	updateErr error
	updates   []userUpdateCall
}

type userUpdateCall struct {
	userID          string
	establishmentID string
	updatedAt       time.Time
}

func (s *userRepoStub) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *userRepoStub) UpdateCurrentEstablishment(_ context.Context, userID, establishmentID string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, userUpdateCall{userID: userID, establishmentID: establishmentID, updatedAt: updatedAt})
	return nil
}

type eventPublisherStub struct {
	mu       sync.Mutex
	created  []domain.InterventionCreatedEvent
	assigned []domain.InterventionAssignedEvent
	switched []domain.EstablishmentSwitchedEvent
	synced   []domain.SyncCompletedEvent
}

func (p *eventPublisherStub) PublishInterventionCreated(_ context.Context, e domain.InterventionCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, e)
	return nil
}

func (p *eventPublisherStub) PublishInterventionAssigned(_ context.Context, e domain.InterventionAssignedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.assigned = append(p.assigned, e)
	return nil
}

func (p *eventPublisherStub) PublishEstablishmentSwitched(_ context.Context, e domain.EstablishmentSwitchedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switched = append(p.switched, e)
	return nil
}

func (p *eventPublisherStub) PublishSyncCompleted(_ context.Context, e domain.SyncCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.synced = append(p.synced, e)
	return nil
}

type interventionRepoStub struct {
	mu        sync.Mutex
	items     map[string]domain.Intervention
	comments  []domain.Comment
	updateErr error
	// blockUpdates makes UpdateStatus wait for ctx to end, like a store that stopped answering.
	blockUpdates bool
}

func newInterventionRepoStub(items ...domain.Intervention) *interventionRepoStub {
	s := &interventionRepoStub{items: make(map[string]domain.Intervention)}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *interventionRepoStub) Create(_ context.Context, i domain.Intervention) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[i.ID] = i
	return nil
}

func (s *interventionRepoStub) GetByID(_ context.Context, id string) (*domain.Intervention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &it, nil
}

func (s *interventionRepoStub) ListByEstablishment(_ context.Context, establishmentID string) ([]domain.Intervention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Intervention
	for _, it := range s.items {
		if it.EstablishmentID == establishmentID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *interventionRepoStub) UpdateStatus(ctx context.Context, id string, status domain.InterventionStatus, at time.Time) error {
	if s.blockUpdates {
		<-ctx.Done()
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	it, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	it.Status = status
	it.UpdatedAt = at
	s.items[id] = it
	return nil
}

func (s *interventionRepoStub) UpdateAssignees(_ context.Context, id string, ids []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	it, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	it.AssignedToIDs = ids
	it.UpdatedAt = at
	s.items[id] = it
	return nil
}

func (s *interventionRepoStub) AddComment(_ context.Context, c domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, c)
	return nil
}

func (s *interventionRepoStub) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type pendingQueueStub struct {
	mu     sync.Mutex
	byUser map[string][]domain.PendingAction
	acked  []domain.PendingAction
}

func newPendingQueueStub() *pendingQueueStub {
	return &pendingQueueStub{byUser: make(map[string][]domain.PendingAction)}
}

func (q *pendingQueueStub) Enqueue(_ context.Context, a domain.PendingAction) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.byUser[a.UserID] = append(q.byUser[a.UserID], a)
	return nil
}

func (q *pendingQueueStub) Peek(_ context.Context, userID string) ([]domain.PendingAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.PendingAction(nil), q.byUser[userID]...), nil
}

func (q *pendingQueueStub) Ack(_ context.Context, userID string, n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	queued := q.byUser[userID]
	if n > len(queued) {
		n = len(queued)
	}
	q.acked = append(q.acked, queued[:n]...)
	q.byUser[userID] = queued[n:]
	return nil
}

func (q *pendingQueueStub) Len(_ context.Context, userID string) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.byUser[userID])), nil
}

type toastSinkStub struct {
	mu     sync.Mutex
	toasts []domain.Toast
}

func (s *toastSinkStub) Toast(_ context.Context, t domain.Toast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, t)
}

func (s *toastSinkStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toasts)
}

func strPtr(s string) *string { return &s }
