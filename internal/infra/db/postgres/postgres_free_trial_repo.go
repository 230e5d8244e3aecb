package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"smm-storefront/internal/domain"
	"smm-storefront/internal/domain/model"
	"smm-storefront/internal/domain/ports/repository"
)

var _ repository.FreeTrialRepository = (*freeTrialRepo)(nil)

type freeTrialRepo struct{ pool *pgxpool.Pool }

func NewFreeTrialRepo(pool *pgxpool.Pool) *freeTrialRepo {
	return &freeTrialRepo{pool: pool}
}

const trialColumns = `id, email, target, ip, upstream_order_id, status, created_at`

func scanTrial(row pgx.Row) (*model.FreeTrial, error) {
	t := &model.FreeTrial{}
	err := row.Scan(&t.ID, &t.Email, &t.Target, &t.IP, &t.UpstreamOrderID, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrReadDatabaseRow, err)
	}
	return t, nil
}

// Insert claims the guard row for the target. ON CONFLICT DO NOTHING makes the
// claim atomic at the store level: of two concurrent requests for the same
// target, exactly one sees inserted=true.
func (r *freeTrialRepo) Insert(ctx context.Context, tx repository.Tx, t *model.FreeTrial) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	const q = `
INSERT INTO free_trials (id, email, target, ip, upstream_order_id, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (target) DO NOTHING;`
	tag, err := ex.Exec(ctx, q, t.ID, t.Email, t.Target, t.IP, t.UpstreamOrderID, t.Status, t.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert free trial: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *freeTrialRepo) FindAnyMatch(ctx context.Context, tx repository.Tx, email, target, ip string) (*model.FreeTrial, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + trialColumns + ` FROM free_trials
WHERE email=$1 OR target=$2 OR ip=$3
ORDER BY created_at ASC LIMIT 1;`
	return scanTrial(ex.QueryRow(ctx, q, email, target, ip))
}

func (r *freeTrialRepo) SetResult(ctx context.Context, tx repository.Tx, id string, upstreamOrderID *string, status model.FreeTrialStatus) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `UPDATE free_trials SET upstream_order_id=COALESCE($2, upstream_order_id), status=$3 WHERE id=$1;`
	if _, err := ex.Exec(ctx, q, id, upstreamOrderID, status); err != nil {
		return fmt.Errorf("set free trial result: %w", err)
	}
	return nil
}
