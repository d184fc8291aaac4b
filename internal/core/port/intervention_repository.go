package port

import (
	"context"
	"time"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

// InterventionRepository persists maintenance tickets.
type InterventionRepository interface {
	Create(ctx context.Context, intervention domain.Intervention) error
	GetByID(ctx context.Context, id string) (*domain.Intervention, error)
	ListByEstablishment(ctx context.Context, establishmentID string) ([]domain.Intervention, error)
	UpdateStatus(ctx context.Context, id string, status domain.InterventionStatus, updatedAt time.Time) error
	UpdateAssignees(ctx context.Context, id string, assigneeIDs []string, updatedAt time.Time) error
	AddComment(ctx context.Context, comment domain.Comment) error
	Delete(ctx context.Context, id string) error
}
