// Package journal persists completed kiosk orders to a local Postgres
// instance for end-of-day reconciliation. The journal is strictly
// best-effort: the kiosk keeps selling when the database is down.
package journal

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andeanlabs/farmakiosk/db"
	"github.com/andeanlabs/farmakiosk/internal/domain/catalog"
	"github.com/andeanlabs/farmakiosk/pkg/money"
)

// Entry is one journal row.
type Entry struct {
	OrderID    string
	StoreID    string
	Status     string
	Total      decimal.Decimal
	RecordedAt time.Time
}

// FromReceipt builds a journal entry out of a fetched receipt.
func FromReceipt(rec catalog.Receipt, storeID string) Entry {
	return Entry{
		OrderID:    rec.OrderID,
		StoreID:    storeID,
		Status:     rec.Status,
		Total:      money.ToDecimal(rec.TotalCents),
		RecordedAt: time.Now().UTC(),
	}
}

// Journal writes order entries to Postgres.
type Journal struct {
	pool *pgxpool.Pool
	lg   *zap.Logger
}

// Open connects to the journal database, registers decimal support for
// NUMERIC columns, and applies the embedded schema.
func Open(ctx context.Context, databaseURL string, lg *zap.Logger) (*Journal, error) {
	if lg == nil {
		lg = zap.NewNop()
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse journal database config")
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create journal pool")
	}
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "apply journal schema")
	}

	return &Journal{pool: pool, lg: lg}, nil
}

// Record inserts an entry. Replays of the same order id are ignored so the
// receipt screen can refetch without duplicating rows.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	_, err := j.pool.Exec(ctx, `
		INSERT INTO kiosk_orders (order_id, store_id, status, total, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO NOTHING`,
		e.OrderID, e.StoreID, e.Status, e.Total, e.RecordedAt,
	)
	if err != nil {
		return errors.Wrap(err, "record journal entry")
	}
	return nil
}

// ReceiptHook adapts the journal into a session receipt hook. Writes run
// in the background with their own deadline; failures are logged and
// dropped.
func (j *Journal) ReceiptHook(storeID string) func(catalog.Receipt) {
	return func(rec catalog.Receipt) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := j.Record(ctx, FromReceipt(rec, storeID)); err != nil {
				j.lg.Warn("journal write failed",
					zap.String("order_id", rec.OrderID),
					zap.Error(err),
				)
			}
		}()
	}
}

// Ping checks journal database connectivity.
func (j *Journal) Ping(ctx context.Context) error {
	return j.pool.Ping(ctx)
}

// Close releases the pool.
func (j *Journal) Close() {
	j.pool.Close()
}
