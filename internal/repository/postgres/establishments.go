package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/repository"
)

var establishmentColumns = []string{
	"id",
	"name",
	"is_active",
	"features",
	"created_at",
	"updated_at",
}

// EstablishmentRepository implements port.EstablishmentRepository using PostgreSQL.
type EstablishmentRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewEstablishmentRepository constructs a PostgreSQL-backed establishment repository.
func NewEstablishmentRepository(exec pgExecutor) *EstablishmentRepository {
	return &EstablishmentRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns every establishment ordered by name.
func (r *EstablishmentRepository) List(ctx context.Context) ([]domain.Establishment, error) {
	stmt, args, err := r.builder.
		Select(establishmentColumns...).
		From(table("establishments")).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list establishments sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query establishments: %w", err)
	}
	defer rows.Close()

	var establishments []domain.Establishment
	for rows.Next() {
		est, err := scanEstablishment(rows)
		if err != nil {
			return nil, err
		}
		establishments = append(establishments, *est)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate establishments: %w", err)
	}

	return establishments, nil
}

// GetByID loads a single establishment.
func (r *EstablishmentRepository) GetByID(ctx context.Context, id string) (*domain.Establishment, error) {
	stmt, args, err := r.builder.
		Select(establishmentColumns...).
		From(table("establishments")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select establishment sql: %w", err)
	}

	est, err := scanEstablishment(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return est, nil
}

func scanEstablishment(row pgx.Row) (*domain.Establishment, error) {
	var (
		est      domain.Establishment
		active   *bool
		features []byte
	)
	if err := row.Scan(
		&est.ID,
		&est.Name,
		&active,
		&features,
		&est.CreatedAt,
		&est.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan establishment: %w", err)
	}
	// Only an explicit false deactivates an establishment.
	est.Active = active == nil || *active

	if len(features) > 0 {
		if err := json.Unmarshal(features, &est.Features); err != nil {
			return nil, fmt.Errorf("decode establishment features: %w", err)
		}
	}

	return &est, nil
}

var _ port.EstablishmentRepository = (*EstablishmentRepository)(nil)
