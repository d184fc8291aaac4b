package port

import (
	"context"
	"time"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

// UserRepository exposes the directory's read view of users and the establishment switch write.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateCurrentEstablishment(ctx context.Context, userID, establishmentID string, updatedAt time.Time) error
}
