package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Schema creates the two tables the service owns. UNIQUE(payment_ref) and
// UNIQUE(target) are the store-level constraints the idempotent claim and the
// free-trial guard rely on; they are not optional.
const Schema = `
CREATE TABLE IF NOT EXISTS orders (
    id                    TEXT PRIMARY KEY,
    payment_ref           TEXT NOT NULL UNIQUE,
    provider              TEXT NOT NULL,
    platform              TEXT NOT NULL,
    service               TEXT NOT NULL,
    target                TEXT NOT NULL,
    quantity              INTEGER NOT NULL CHECK (quantity > 0),
    price_minor           BIGINT NOT NULL CHECK (price_minor >= 0),
    currency              TEXT NOT NULL DEFAULT 'USD',
    status                TEXT NOT NULL,
    upstream_order_id     TEXT,
    customer_email        TEXT NOT NULL DEFAULT '',
    created_at            TIMESTAMPTZ NOT NULL,
    updated_at            TIMESTAMPTZ NOT NULL,
    refill_eligible_until TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);
CREATE INDEX IF NOT EXISTS idx_orders_upstream ON orders (upstream_order_id);

CREATE TABLE IF NOT EXISTS free_trials (
    id                TEXT PRIMARY KEY,
    email             TEXT NOT NULL,
    target            TEXT NOT NULL UNIQUE,
    ip                TEXT NOT NULL,
    upstream_order_id TEXT,
    status            TEXT NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_free_trials_email ON free_trials (email);
CREATE INDEX IF NOT EXISTS idx_free_trials_ip ON free_trials (ip);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
