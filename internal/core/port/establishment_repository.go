package port

import (
	"context"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

// EstablishmentRepository reads establishments from the document store.
type EstablishmentRepository interface {
	List(ctx context.Context) ([]domain.Establishment, error)
	GetByID(ctx context.Context, id string) (*domain.Establishment, error)
}
