package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActionRun records one remote action execution request.
type ActionRun struct {
	ID         string
	ActionID   string
	ActionName string
	DeviceName string
	Technician string
	RequestID  string
	Status     string
}

// ActionRepository persists remote action execution runs.
type ActionRepository interface {
	CreateRun(ctx context.Context, run *ActionRun) error
	UpdateStatus(ctx context.Context, id, status string) error
}

type actionRepository struct {
	pool *pgxpool.Pool
}

// NewActionRepository instantiates repository.
func NewActionRepository(pool *pgxpool.Pool) ActionRepository {
	return &actionRepository{pool: pool}
}

func (r *actionRepository) CreateRun(ctx context.Context, run *ActionRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if r.pool == nil {
		return nil
	}
	const query = `
        INSERT INTO remote_action_runs (id, action_id, action_name, device_name, technician, request_id, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.ActionID,
		run.ActionName,
		run.DeviceName,
		run.Technician,
		run.RequestID,
		run.Status,
	)
	return err
}

func (r *actionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        UPDATE remote_action_runs SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, status, id)
	return err
}
