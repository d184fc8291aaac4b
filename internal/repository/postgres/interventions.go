package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/repository"
)

var interventionColumns = []string{
	"id",
	"establishment_id",
	"created_by",
	"assigned_to",
	"assigned_to_ids",
	"status",
	"priority",
	"location",
	"mission_summary",
	"created_at",
	"updated_at",
}

// InterventionRepository implements port.InterventionRepository using PostgreSQL.
type InterventionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewInterventionRepository constructs a PostgreSQL-backed intervention repository.
func NewInterventionRepository(exec pgExecutor) *InterventionRepository {
	return &InterventionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *InterventionRepository) WithTx(tx pgx.Tx) *InterventionRepository {
	if tx == nil {
		return r
	}
	return &InterventionRepository{exec: tx, builder: r.builder}
}

// Create inserts a new intervention row.
func (r *InterventionRepository) Create(ctx context.Context, i domain.Intervention) error {
	assignees := i.AssignedToIDs
	if assignees == nil {
		assignees = []string{}
	}

	stmt, args, err := r.builder.Insert(table("interventions")).
		Columns(interventionColumns...).
		Values(
			i.ID,
			i.EstablishmentID,
			i.CreatedBy,
			optionalString(i.AssignedTo),
			assignees,
			string(i.Status),
			string(i.Priority),
			i.Location,
			i.MissionSummary,
			i.CreatedAt,
			i.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert intervention sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert intervention: %w", err)
	}
	return nil
}

// GetByID loads an intervention.
func (r *InterventionRepository) GetByID(ctx context.Context, id string) (*domain.Intervention, error) {
	stmt, args, err := r.builder.
		Select(interventionColumns...).
		From(table("interventions")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select intervention sql: %w", err)
	}

	intervention, err := scanIntervention(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return intervention, nil
}

// ListByEstablishment returns the interventions of an establishment, newest first.
func (r *InterventionRepository) ListByEstablishment(ctx context.Context, establishmentID string) ([]domain.Intervention, error) {
	stmt, args, err := r.builder.
		Select(interventionColumns...).
		From(table("interventions")).
		Where(squirrel.Eq{"establishment_id": establishmentID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list interventions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query interventions: %w", err)
	}
	defer rows.Close()

	var interventions []domain.Intervention
	for rows.Next() {
		intervention, err := scanIntervention(rows)
		if err != nil {
			return nil, err
		}
		interventions = append(interventions, *intervention)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interventions: %w", err)
	}
	return interventions, nil
}

// UpdateStatus sets the intervention status.
func (r *InterventionRepository) UpdateStatus(ctx context.Context, id string, status domain.InterventionStatus, updatedAt time.Time) error {
	stmt, args, err := r.builder.Update(table("interventions")).
		Set("status", string(status)).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update intervention status sql: %w", err)
	}
	return r.execAffecting(ctx, "update intervention status", stmt, args)
}

// UpdateAssignees replaces the assignee set. The first assignee is kept as the single-assignee field.
func (r *InterventionRepository) UpdateAssignees(ctx context.Context, id string, assigneeIDs []string, updatedAt time.Time) error {
	var first any
	if len(assigneeIDs) > 0 {
		first = assigneeIDs[0]
	}
	if assigneeIDs == nil {
		assigneeIDs = []string{}
	}

	stmt, args, err := r.builder.Update(table("interventions")).
		Set("assigned_to", first).
		Set("assigned_to_ids", assigneeIDs).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update intervention assignees sql: %w", err)
	}
	return r.execAffecting(ctx, "update intervention assignees", stmt, args)
}

// AddComment inserts a comment row.
func (r *InterventionRepository) AddComment(ctx context.Context, c domain.Comment) error {
	stmt, args, err := r.builder.Insert(table("intervention_comments")).
		Columns("id", "intervention_id", "author_id", "body", "created_at").
		Values(c.ID, c.InterventionID, c.AuthorID, c.Body, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert comment sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// Delete removes the intervention. Comments cascade in the schema.
func (r *InterventionRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete(table("interventions")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete intervention sql: %w", err)
	}
	return r.execAffecting(ctx, "delete intervention", stmt, args)
}

func (r *InterventionRepository) execAffecting(ctx context.Context, op, stmt string, args []any) error {
	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanIntervention(row pgx.Row) (*domain.Intervention, error) {
	var (
		i          domain.Intervention
		assignedTo sql.NullString
		status     string
		priority   string
	)
	if err := row.Scan(
		&i.ID,
		&i.EstablishmentID,
		&i.CreatedBy,
		&assignedTo,
		&i.AssignedToIDs,
		&status,
		&priority,
		&i.Location,
		&i.MissionSummary,
		&i.CreatedAt,
		&i.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan intervention: %w", err)
	}
	i.AssignedTo = nullableStringPtr(assignedTo)
	i.Status = domain.InterventionStatus(status)
	i.Priority = domain.Priority(priority)
	return &i, nil
}

var _ port.InterventionRepository = (*InterventionRepository)(nil)
