package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"smm-storefront/internal/domain"
	"smm-storefront/internal/domain/model"
	"smm-storefront/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, payment_ref, provider, platform, service, target, quantity, price_minor, currency, status, upstream_order_id, customer_email, created_at, updated_at, refill_eligible_until`

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	err := row.Scan(&o.ID, &o.PaymentRef, &o.Provider, &o.Platform, &o.Service, &o.Target,
		&o.Quantity, &o.PriceMinor, &o.Currency, &o.Status, &o.UpstreamOrderID,
		&o.CustomerEmail, &o.CreatedAt, &o.UpdatedAt, &o.RefillEligibleUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrReadDatabaseRow, err)
	}
	return o, nil
}

// Claim implements the atomic check-and-claim of the submission protocol in a
// single statement, safe to run inside a caller transaction:
//
//   - no row for the payment reference: insert wins the claim
//   - existing row in failed_submission: the DO UPDATE arm re-claims it
//     (status back to pending_submission) so the redelivery can retry the
//     submission that provably concluded without an upstream order
//   - existing row pending_submission, processing or beyond: the DO UPDATE
//     arm matches nothing, no row comes back, and the winner is read and
//     returned as a duplicate
//
// A fresh pending row is never re-claimed: its first submission may still be
// in flight, and re-claiming it would place the upstream order twice. If the
// claimant crashed instead, the sweeper's stale-pending retry resubmits it.
// The UNIQUE(payment_ref) constraint closes the race between two concurrent
// deliveries of the same payment reference.
func (r *orderRepo) Claim(ctx context.Context, tx repository.Tx, o *model.Order) (*model.Order, bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, false, err
	}

	const qClaim = `
INSERT INTO orders (
  id, payment_ref, provider, platform, service, target, quantity, price_minor, currency, status, upstream_order_id, customer_email, created_at, updated_at, refill_eligible_until
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (payment_ref) DO UPDATE
  SET status=excluded.status, updated_at=NOW()
  WHERE orders.status = 'failed_submission'
RETURNING ` + orderColumns + `;`

	claimed, err := scanOrder(ex.QueryRow(ctx, qClaim,
		o.ID, o.PaymentRef, o.Provider, o.Platform, o.Service, o.Target,
		o.Quantity, o.PriceMinor, o.Currency, o.Status, o.UpstreamOrderID,
		o.CustomerEmail, o.CreatedAt, o.UpdatedAt, o.RefillEligibleUntil))
	if err == nil {
		return claimed, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		if isUniqueViolation(err) {
			return nil, false, domain.ErrStoreConflict
		}
		return nil, false, fmt.Errorf("claim order: %w", err)
	}

	existing, err := r.FindByPaymentRef(ctx, tx, o.PaymentRef)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error,
// e.g. an id collision that the payment_ref conflict target does not absorb.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *orderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	return r.findBy(ctx, tx, "id", id)
}

func (r *orderRepo) FindByPaymentRef(ctx context.Context, tx repository.Tx, paymentRef string) (*model.Order, error) {
	return r.findBy(ctx, tx, "payment_ref", paymentRef)
}

func (r *orderRepo) FindByUpstreamID(ctx context.Context, tx repository.Tx, upstreamID string) (*model.Order, error) {
	return r.findBy(ctx, tx, "upstream_order_id", upstreamID)
}

func (r *orderRepo) findBy(ctx context.Context, tx repository.Tx, column, value string) (*model.Order, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + `=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	return scanOrder(ex.QueryRow(ctx, q+";", value))
}

func (r *orderRepo) MarkProcessing(ctx context.Context, tx repository.Tx, id, upstreamOrderID string, refillUntil time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
UPDATE orders SET status=$2, upstream_order_id=$3, refill_eligible_until=$4, updated_at=NOW()
WHERE id=$1 AND status=$5;`
	tag, err := ex.Exec(ctx, q, id, model.OrderStatusProcessing, upstreamOrderID, refillUntil, model.OrderStatusPendingSubmission)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *orderRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string, status model.OrderStatus) error {
	if status != model.OrderStatusFailedUnsupported && status != model.OrderStatusFailedSubmission {
		return domain.ErrInvalidArgument
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1 AND status=$3;`
	tag, err := ex.Exec(ctx, q, id, status, model.OrderStatusPendingSubmission)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// UpdateStatus is the sweeper's conditional write. The WHERE clause keeps the
// write idempotent under overlapping sweeps and makes terminal states sticky.
func (r *orderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, from, to model.OrderStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, domain.ErrInvalidTransition
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	const q = `UPDATE orders SET status=$3, updated_at=NOW() WHERE id=$1 AND status=$2;`
	tag, err := ex.Exec(ctx, q, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepo) ListProcessing(ctx context.Context, tx repository.Tx, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + orderColumns + ` FROM orders
WHERE status=$1 AND upstream_order_id IS NOT NULL
ORDER BY created_at ASC LIMIT $2;`
	return r.list(ctx, tx, q, model.OrderStatusProcessing, limit)
}

func (r *orderRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + orderColumns + ` FROM orders
WHERE status=$1 AND created_at < $2
ORDER BY created_at ASC LIMIT $3;`
	return r.list(ctx, tx, q, model.OrderStatusPendingSubmission, olderThan, limit)
}

func (r *orderRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.OrderStatus, offset, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT ` + orderColumns + ` FROM orders
WHERE status=$1 ORDER BY created_at DESC OFFSET $2 LIMIT $3;`
	return r.list(ctx, tx, q, status, offset, limit)
}

func (r *orderRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Order, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *orderRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.OrderStatus]int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status;`)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	defer rows.Close()

	out := make(map[model.OrderStatus]int)
	for rows.Next() {
		var status model.OrderStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *orderRepo) SumRevenueByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	switch period {
	case "week", "month", "year":
	default:
		return 0, domain.ErrInvalidArgument
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const q = `SELECT COALESCE(SUM(price_minor),0) FROM orders
WHERE status IN ('processing','completed','partial') AND created_at >= DATE_TRUNC($1, NOW());`
	var sum int64
	if err := ex.QueryRow(ctx, q, period).Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}
