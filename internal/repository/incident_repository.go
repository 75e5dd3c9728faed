package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/cockpit-service/internal/domain"
)

// IncidentRepository persists incident snapshots pulled from upstream so the
// service keeps a queryable local trail even when upstreams are down.
type IncidentRepository interface {
	UpsertSnapshot(ctx context.Context, inc *domain.Incident) error
	UpsertSnapshots(ctx context.Context, incidents []domain.Incident) error
	SaveSolution(ctx context.Context, number string, summary *domain.SolutionSummary) error
	UpdateDeviceName(ctx context.Context, number, deviceName string) error
	RecordSync(ctx context.Context, source string, records int, ok bool, detail string, startedAt time.Time) error
}

type incidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository instantiates repository. A nil pool makes every
// method a no-op, matching the optional-database deployment mode.
func NewIncidentRepository(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepository{pool: pool}
}

func (r *incidentRepository) UpsertSnapshot(ctx context.Context, inc *domain.Incident) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        INSERT INTO incident_snapshots (sys_id, number, title, description, category, status,
            priority, raw_priority, active, assigned_to, device_name, caller_id, caller_name,
            opened_at, upstream_updated_at, synced_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW())
        ON CONFLICT (sys_id) DO UPDATE SET
            title=EXCLUDED.title, description=EXCLUDED.description, category=EXCLUDED.category,
            status=EXCLUDED.status, priority=EXCLUDED.priority, raw_priority=EXCLUDED.raw_priority,
            active=EXCLUDED.active, assigned_to=EXCLUDED.assigned_to,
            device_name=CASE WHEN EXCLUDED.device_name <> '' THEN EXCLUDED.device_name ELSE incident_snapshots.device_name END,
            caller_id=EXCLUDED.caller_id, caller_name=EXCLUDED.caller_name,
            opened_at=EXCLUDED.opened_at, upstream_updated_at=EXCLUDED.upstream_updated_at,
            synced_at=NOW()`
	_, err := r.pool.Exec(ctx, query,
		inc.SysID,
		inc.Number,
		inc.Title,
		inc.Description,
		inc.Category,
		inc.Status,
		inc.Priority,
		inc.RawPriority,
		inc.Active,
		inc.AssignedTo,
		inc.DeviceName,
		inc.CallerID,
		inc.CallerName,
		nullableTime(inc.OpenedAt),
		nullableTime(inc.UpdatedAt),
	)
	return err
}

func (r *incidentRepository) UpsertSnapshots(ctx context.Context, incidents []domain.Incident) error {
	if r.pool == nil {
		return nil
	}
	for i := range incidents {
		if err := r.UpsertSnapshot(ctx, &incidents[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *incidentRepository) SaveSolution(ctx context.Context, number string, summary *domain.SolutionSummary) error {
	if r.pool == nil || summary == nil {
		return nil
	}
	const query = `
        UPDATE incident_snapshots SET solution_points=$1, solution_source=$2, synced_at=NOW()
        WHERE number=$3`
	_, err := r.pool.Exec(ctx, query, summary.Points, string(summary.Source), number)
	return err
}

func (r *incidentRepository) UpdateDeviceName(ctx context.Context, number, deviceName string) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        UPDATE incident_snapshots SET device_name=$1, synced_at=NOW()
        WHERE number=$2 AND device_name=''`
	_, err := r.pool.Exec(ctx, query, deviceName, number)
	return err
}

func (r *incidentRepository) RecordSync(ctx context.Context, source string, records int, ok bool, detail string, startedAt time.Time) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        INSERT INTO sync_history (source, records, ok, detail, started_at, finished_at)
        VALUES ($1,$2,$3,$4,$5,NOW())`
	_, err := r.pool.Exec(ctx, query, source, records, ok, detail, startedAt)
	return err
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
