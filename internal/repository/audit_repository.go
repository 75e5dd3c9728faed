package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository appends technician activity to the audit trail.
type AuditRepository interface {
	Record(ctx context.Context, technician, eventType, entity string, detail any) error
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository instantiates repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Record(ctx context.Context, technician, eventType, entity string, detail any) error {
	if r.pool == nil {
		return nil
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		payload = []byte("{}")
	}
	const query = `
        INSERT INTO audit_log (technician, event_type, entity, detail)
        VALUES ($1,$2,$3,$4)`
	_, err = r.pool.Exec(ctx, query, technician, eventType, entity, payload)
	return err
}
