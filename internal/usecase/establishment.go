package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/repository"
)

// SwitchResult reports the outcome of an establishment switch without raising.
type SwitchResult struct {
	Success bool
	Error   string
}

// EstablishmentSnapshot is a consistent read of an establishment context.
type EstablishmentSnapshot struct {
	Establishments []domain.Establishment
	Current        *domain.Establishment
	Error          string
}

// EstablishmentContext tracks the establishments one user may operate in and the active one.
type EstablishmentContext struct {
	establishments port.EstablishmentRepository
	users          port.UserRepository
	events         port.EventPublisher
	logger         *zap.Logger
	now            func() time.Time

	mu         sync.RWMutex
	user       *domain.User
	list       []domain.Establishment
	current    *domain.Establishment
	loadErr    string
	loadedKey  string
	loaded     bool
	generation uint64
}

func newEstablishmentContext(establishments port.EstablishmentRepository, users port.UserRepository, events port.EventPublisher, logger *zap.Logger, now func() time.Time) *EstablishmentContext {
	return &EstablishmentContext{
		establishments: establishments,
		users:          users,
		events:         events,
		logger:         logger,
		now:            now,
	}
}

// Refresh reloads the context when the user's identity, role, establishment set or
// stored current establishment differ from the last load.
func (c *EstablishmentContext) Refresh(ctx context.Context, user *domain.User) error {
	key := dependencyKey(user)

	c.mu.RLock()
	upToDate := c.loaded && c.loadedKey == key
	c.mu.RUnlock()
	if upToDate {
		return nil
	}

	return c.Load(ctx, user)
}

// Load fetches the user's establishments from scratch and selects the active one.
// When loads overlap, only the most recently started one is kept.
func (c *EstablishmentContext) Load(ctx context.Context, user *domain.User) error {
	c.mu.Lock()
	c.generation++
	token := c.generation
	c.mu.Unlock()

	key := dependencyKey(user)

	var (
		list []domain.Establishment
		err  error
	)
	if user != nil {
		list, err = c.fetch(ctx, user)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.generation {
		c.logger.Debug("discard superseded establishment load", zap.Uint64("generation", token))
		return nil
	}

	c.user = cloneUser(user)

	if err != nil {
		// A failed load is not cached so the next Refresh retries it.
		c.loaded = false
		c.loadedKey = ""
		c.list = nil
		c.current = nil
		c.loadErr = err.Error()
		return fmt.Errorf("load establishments: %w", err)
	}

	c.loadedKey = key
	c.loaded = true
	c.list = list
	c.loadErr = ""
	c.current = selectCurrent(list, user)
	return nil
}

func (c *EstablishmentContext) fetch(ctx context.Context, user *domain.User) ([]domain.Establishment, error) {
	if user.Role == domain.RoleSuperAdmin {
		list, err := c.establishments.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list establishments: %w", err)
		}
		return list, nil
	}

	list := make([]domain.Establishment, 0, len(user.EstablishmentIDs))
	for _, id := range user.EstablishmentIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		est, err := c.establishments.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.logger.Debug("skip dangling establishment reference",
					zap.String("user_id", user.ID),
					zap.String("establishment_id", id),
				)
				continue
			}
			return nil, fmt.Errorf("get establishment %s: %w", id, err)
		}
		if est != nil {
			list = append(list, *est)
		}
	}
	return list, nil
}

func selectCurrent(list []domain.Establishment, user *domain.User) *domain.Establishment {
	if len(list) == 0 {
		return nil
	}
	if user != nil && user.CurrentEstablishmentID != nil {
		for i := range list {
			if list[i].ID == *user.CurrentEstablishmentID {
				return &list[i]
			}
		}
	}
	for i := range list {
		if list[i].Active {
			return &list[i]
		}
	}
	return &list[0]
}

// Switch persists the target establishment as the user's current one and updates local state.
func (c *EstablishmentContext) Switch(ctx context.Context, establishmentID string) SwitchResult {
	establishmentID = strings.TrimSpace(establishmentID)

	c.mu.RLock()
	user := cloneUser(c.user)
	var target *domain.Establishment
	for i := range c.list {
		if c.list[i].ID == establishmentID {
			est := c.list[i]
			target = &est
			break
		}
	}
	previous := c.current
	c.mu.RUnlock()

	if user == nil {
		return SwitchResult{Error: ErrUnauthenticated.Error()}
	}
	if target == nil {
		return SwitchResult{Error: ErrEstablishmentNotAccessible.Error()}
	}

	now := c.now()
	if err := c.users.UpdateCurrentEstablishment(ctx, user.ID, target.ID, now); err != nil {
		c.logger.Error("switch establishment failed",
			zap.String("user_id", user.ID),
			zap.String("establishment_id", target.ID),
			zap.Error(err),
		)
		return SwitchResult{Error: err.Error()}
	}

	c.mu.Lock()
	for i := range c.list {
		if c.list[i].ID == target.ID {
			c.current = &c.list[i]
			break
		}
	}
	if c.user != nil {
		id := target.ID
		c.user.CurrentEstablishmentID = &id
		c.user.UpdatedAt = now
	}
	c.mu.Unlock()

	if c.events != nil {
		var previousID *string
		if previous != nil {
			id := previous.ID
			previousID = &id
		}
		event := domain.EstablishmentSwitchedEvent{
			EventID:         uuid.NewString(),
			UserID:          user.ID,
			EstablishmentID: target.ID,
			PreviousID:      previousID,
			SwitchedAt:      now,
		}
		if err := c.events.PublishEstablishmentSwitched(ctx, event); err != nil {
			c.logger.Warn("publish establishment switched event", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return SwitchResult{Success: true}
}

// HasFeature reports whether the current establishment has the feature flag enabled.
func (c *EstablishmentContext) HasFeature(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.HasFeature(key)
}

// Current returns a copy of the active establishment, or nil.
func (c *EstablishmentContext) Current() *domain.Establishment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	est := *c.current
	return &est
}

// ActiveEstablishments lists the establishments not flagged inactive.
func (c *EstablishmentContext) ActiveEstablishments() []domain.Establishment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	active := make([]domain.Establishment, 0, len(c.list))
	for _, est := range c.list {
		if est.Active {
			active = append(active, est)
		}
	}
	return active
}

// HasMultiple reports whether the user can switch between establishments.
func (c *EstablishmentContext) HasMultiple() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.list) > 1
}

// Snapshot returns the full state under one lock.
func (c *EstablishmentContext) Snapshot() EstablishmentSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := EstablishmentSnapshot{
		Establishments: append([]domain.Establishment(nil), c.list...),
		Error:          c.loadErr,
	}
	if c.current != nil {
		est := *c.current
		snap.Current = &est
	}
	return snap
}

func dependencyKey(user *domain.User) string {
	if user == nil {
		return ""
	}
	ids := append([]string(nil), user.EstablishmentIDs...)
	sort.Strings(ids)
	current := ""
	if user.CurrentEstablishmentID != nil {
		current = *user.CurrentEstablishmentID
	}
	return strings.Join([]string{user.ID, string(user.Role), strings.Join(ids, ","), current}, "|")
}

func cloneUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	cp := *user
	cp.EstablishmentIDs = append([]string(nil), user.EstablishmentIDs...)
	if user.CurrentEstablishmentID != nil {
		id := *user.CurrentEstablishmentID
		cp.CurrentEstablishmentID = &id
	}
	return &cp
}

// EstablishmentService holds one establishment context per signed-in user.
type EstablishmentService struct {
	establishments port.EstablishmentRepository
	users          port.UserRepository
	events         port.EventPublisher
	logger         *zap.Logger
	now            func() time.Time

	contexts *sessionCache[*EstablishmentContext]
}

// NewEstablishmentService constructs an EstablishmentService.
func NewEstablishmentService(establishments port.EstablishmentRepository, users port.UserRepository, events port.EventPublisher, logger *zap.Logger) *EstablishmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &EstablishmentService{
		establishments: establishments,
		users:          users,
		events:         events,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
	s.contexts = newSessionCache[*EstablishmentContext](0, func() time.Time { return s.now() }, nil)
	return s
}

// WithIdleTTL drops contexts not looked up for ttl on a later lookup.
func (s *EstablishmentService) WithIdleTTL(ttl time.Duration) *EstablishmentService {
	s.contexts.ttl = ttl
	return s
}

// WithClock overrides the service clock for deterministic testing.
func (s *EstablishmentService) WithClock(clock func() time.Time) *EstablishmentService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// ContextFor returns the user's establishment context, reloading it when authorisation data changed.
func (s *EstablishmentService) ContextFor(ctx context.Context, user *domain.User) (*EstablishmentContext, error) {
	if user == nil || user.ID == "" {
		return nil, ErrUnauthenticated
	}

	ec := s.contexts.get(user.ID, func() *EstablishmentContext {
		return newEstablishmentContext(s.establishments, s.users, s.events, s.logger, s.now)
	})

	if err := ec.Refresh(ctx, user); err != nil {
		s.logger.Error("load establishments failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return ec, nil
}

// Release drops the context of a user whose session ended.
func (s *EstablishmentService) Release(userID string) {
	s.contexts.release(userID)
}
