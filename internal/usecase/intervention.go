package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/ids"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/repository"
)

// CreateInterventionInput captures the payload for opening an intervention.
type CreateInterventionInput struct {
	Location       string
	MissionSummary string
	Priority       domain.Priority
	AssigneeIDs    []string
}

// InterventionView pairs an intervention with the caller's capabilities on it.
type InterventionView struct {
	Intervention domain.Intervention
	Capabilities domain.Capabilities
}

// InterventionService manages maintenance tickets within the caller's establishment scope.
type InterventionService struct {
	interventions  port.InterventionRepository
	establishments *EstablishmentService
	pending        port.PendingActionQueue
	events         port.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
	newActionID    func() string
}

// NewInterventionService constructs an InterventionService.
func NewInterventionService(interventions port.InterventionRepository, establishments *EstablishmentService, pending port.PendingActionQueue, events port.EventPublisher, logger *zap.Logger) *InterventionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterventionService{
		interventions:  interventions,
		establishments: establishments,
		pending:        pending,
		events:         events,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
		newActionID:    ids.New,
	}
}

// WithClock overrides the service clock for deterministic testing.
func (s *InterventionService) WithClock(clock func() time.Time) *InterventionService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Create opens a new intervention in the user's current establishment.
func (s *InterventionService) Create(ctx context.Context, user *domain.User, input CreateInterventionInput) (*domain.Intervention, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if !CanCreateIntervention(user) {
		return nil, ErrPermissionDenied
	}

	location := strings.TrimSpace(input.Location)
	summary := strings.TrimSpace(input.MissionSummary)
	if location == "" || summary == "" {
		return nil, fmt.Errorf("%w: location and mission summary are required", ErrInvalidAction)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	establishmentID, err := s.currentEstablishment(ctx, user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	intervention := domain.Intervention{
		ID:              uuid.NewString(),
		EstablishmentID: establishmentID,
		CreatedBy:       user.ID,
		AssignedToIDs:   normalizeIDs(input.AssigneeIDs),
		Status:          domain.InterventionStatusTodo,
		Priority:        priority,
		Location:        location,
		MissionSummary:  summary,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if len(intervention.AssignedToIDs) > 0 {
		first := intervention.AssignedToIDs[0]
		intervention.AssignedTo = &first
	}

	if err := s.interventions.Create(ctx, intervention); err != nil {
		return nil, fmt.Errorf("create intervention: %w", err)
	}

	s.publishCreated(ctx, intervention)
	if len(intervention.AssignedToIDs) > 0 {
		s.publishAssigned(ctx, intervention, user.ID)
	}

	return &intervention, nil
}

// Get returns the intervention and the caller's capabilities on it.
func (s *InterventionService) Get(ctx context.Context, user *domain.User, id string) (*InterventionView, error) {
	intervention, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	caps := ResolvePermissions(user, intervention)
	if !caps.CanView {
		return nil, ErrPermissionDenied
	}
	return &InterventionView{Intervention: *intervention, Capabilities: caps}, nil
}

// List returns the viewable interventions of the user's current establishment.
func (s *InterventionService) List(ctx context.Context, user *domain.User) ([]InterventionView, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	establishmentID, err := s.currentEstablishment(ctx, user)
	if err != nil {
		return nil, err
	}

	interventions, err := s.interventions.ListByEstablishment(ctx, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("list interventions: %w", err)
	}

	views := make([]InterventionView, 0, len(interventions))
	for i := range interventions {
		caps := ResolvePermissions(user, &interventions[i])
		if !caps.CanView {
			continue
		}
		views = append(views, InterventionView{Intervention: interventions[i], Capabilities: caps})
	}
	return views, nil
}

// UpdateStatus moves the intervention to a new status.
func (s *InterventionService) UpdateStatus(ctx context.Context, user *domain.User, id string, status domain.InterventionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidAction, status)
	}
	intervention, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !ResolvePermissions(user, intervention).CanChangeStatus {
		return ErrPermissionDenied
	}
	if err := s.interventions.UpdateStatus(ctx, intervention.ID, status, s.now()); err != nil {
		return mapNotFound(fmt.Errorf("update intervention status: %w", err))
	}
	return nil
}

// Assign replaces the assignee set of the intervention.
func (s *InterventionService) Assign(ctx context.Context, user *domain.User, id string, assigneeIDs []string) error {
	intervention, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !ResolvePermissions(user, intervention).CanAssign {
		return ErrPermissionDenied
	}
	assignees := normalizeIDs(assigneeIDs)
	if err := s.interventions.UpdateAssignees(ctx, intervention.ID, assignees, s.now()); err != nil {
		return mapNotFound(fmt.Errorf("update intervention assignees: %w", err))
	}
	if len(assignees) > 0 {
		intervention.AssignedToIDs = assignees
		s.publishAssigned(ctx, *intervention, user.ID)
	}
	return nil
}

// AddComment attaches a comment to the intervention.
func (s *InterventionService) AddComment(ctx context.Context, user *domain.User, id, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: empty comment", ErrInvalidAction)
	}
	intervention, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ResolvePermissions(user, intervention).CanAddComments {
		return nil, ErrPermissionDenied
	}
	comment := domain.Comment{
		ID:             uuid.NewString(),
		InterventionID: intervention.ID,
		AuthorID:       user.ID,
		Body:           body,
		CreatedAt:      s.now(),
	}
	if err := s.interventions.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return &comment, nil
}

// Delete removes the intervention.
func (s *InterventionService) Delete(ctx context.Context, user *domain.User, id string) error {
	intervention, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !ResolvePermissions(user, intervention).CanDelete {
		return ErrPermissionDenied
	}
	if err := s.interventions.Delete(ctx, intervention.ID); err != nil {
		return mapNotFound(fmt.Errorf("delete intervention: %w", err))
	}
	return nil
}

// Enqueue records a mutation made while offline so the next sync replays it.
func (s *InterventionService) Enqueue(ctx context.Context, user *domain.User, action domain.PendingAction) (*domain.PendingAction, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(action.InterventionID) == "" {
		return nil, fmt.Errorf("%w: intervention id is required", ErrInvalidAction)
	}
	switch action.Kind {
	case domain.PendingActionStatus, domain.PendingActionComment, domain.PendingActionAssign:
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, action.Kind)
	}

	action.ID = s.newActionID()
	action.UserID = user.ID
	if action.RecordedAt.IsZero() {
		action.RecordedAt = s.now()
	}

	if err := s.pending.Enqueue(ctx, action); err != nil {
		return nil, fmt.Errorf("enqueue pending action: %w", err)
	}
	return &action, nil
}

// Apply replays a pending action on behalf of the user.
func (s *InterventionService) Apply(ctx context.Context, user *domain.User, action domain.PendingAction) error {
	switch action.Kind {
	case domain.PendingActionStatus:
		return s.UpdateStatus(ctx, user, action.InterventionID, domain.InterventionStatus(action.Status))
	case domain.PendingActionComment:
		_, err := s.AddComment(ctx, user, action.InterventionID, action.Comment)
		return err
	case domain.PendingActionAssign:
		return s.Assign(ctx, user, action.InterventionID, action.AssigneeIDs)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, action.Kind)
	}
}

func (s *InterventionService) load(ctx context.Context, id string) (*domain.Intervention, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInterventionNotFound
	}
	intervention, err := s.interventions.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(fmt.Errorf("get intervention: %w", err))
	}
	return intervention, nil
}

func (s *InterventionService) currentEstablishment(ctx context.Context, user *domain.User) (string, error) {
	ec, err := s.establishments.ContextFor(ctx, user)
	if err != nil {
		return "", err
	}
	current := ec.Current()
	if current == nil {
		return "", ErrNoActiveEstablishment
	}
	return current.ID, nil
}

func (s *InterventionService) publishCreated(ctx context.Context, intervention domain.Intervention) {
	if s.events == nil {
		return
	}
	event := domain.InterventionCreatedEvent{
		EventID:         uuid.NewString(),
		InterventionID:  intervention.ID,
		EstablishmentID: intervention.EstablishmentID,
		CreatedBy:       intervention.CreatedBy,
		Priority:        intervention.Priority,
		Location:        intervention.Location,
		CreatedAt:       intervention.CreatedAt,
	}
	if err := s.events.PublishInterventionCreated(ctx, event); err != nil {
		s.logger.Warn("publish intervention created event", zap.String("intervention_id", intervention.ID), zap.Error(err))
	}
}

func (s *InterventionService) publishAssigned(ctx context.Context, intervention domain.Intervention, actorID string) {
	if s.events == nil {
		return
	}
	event := domain.InterventionAssignedEvent{
		EventID:         uuid.NewString(),
		InterventionID:  intervention.ID,
		EstablishmentID: intervention.EstablishmentID,
		AssigneeIDs:     intervention.AssignedToIDs,
		AssignedBy:      actorID,
		Priority:        intervention.Priority,
		MissionSummary:  intervention.MissionSummary,
		AssignedAt:      s.now(),
	}
	if err := s.events.PublishInterventionAssigned(ctx, event); err != nil {
		s.logger.Warn("publish intervention assigned event", zap.String("intervention_id", intervention.ID), zap.Error(err))
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInterventionNotFound
	}
	return err
}

func normalizeIDs(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
