// File: internal/infra/db/postgres/postgres_order_repo.go
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nexus-ai-portal/internal/domain"
	"nexus-ai-portal/internal/domain/model"
	"nexus-ai-portal/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, order_id, user_id, amount_fen, plan, status, gateway_trade_id, subject, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	var tradeID *string
	if err := row.Scan(&o.ID, &o.OrderID, &o.UserID, &o.AmountFen, &o.Plan, &o.Status, &tradeID, &o.Subject, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if tradeID != nil {
		o.GatewayTradeID = *tradeID
	}
	return o, nil
}

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO payment_orders (
  id, order_id, user_id, amount_fen, plan, status, gateway_trade_id, subject, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9,$10
) ON CONFLICT (order_id) DO NOTHING;`

	cmd, err := execSQL(ctx, r.pool, tx, q, o.ID, o.OrderID, o.UserID, o.AmountFen, o.Plan, o.Status, o.GatewayTradeID, o.Subject, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *orderRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM payment_orders WHERE order_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *orderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + orderColumns + ` FROM payment_orders WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		return nil, mapQueryErr(err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + orderColumns + ` FROM payment_orders ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, mapQueryErr(err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]*model.Order, error) {
	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// UpdateStatusIfPending atomically transitions the order to a terminal status
// only when the current status is still 'pending'. RowsAffected tells the
// caller whether it won the transition.
func (r *orderRepo) UpdateStatusIfPending(
	ctx context.Context, tx repository.Tx, orderID string, status model.OrderStatus, gatewayTradeID string,
) (bool, error) {
	const q = `
    UPDATE payment_orders
       SET status = $2,
           gateway_trade_id = COALESCE(NULLIF($3,''), gateway_trade_id),
           updated_at = NOW()
     WHERE order_id = $1
       AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, string(status), gatewayTradeID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *orderRepo) Revenue(ctx context.Context, tx repository.Tx, since time.Time) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount_fen),0) FROM payment_orders WHERE status='completed' AND updated_at >= $1;`
	row, err := pickRow(ctx, r.pool, tx, q, since)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	const q = `SELECT status, COUNT(*) FROM payment_orders GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapQueryErr(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[status] = n
	}
	return counts, nil
}

func mapQueryErr(err error) error {
	switch err {
	case pgx.ErrNoRows:
		return domain.ErrNotFound
	case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
		return err
	default:
		return domain.ErrOperationFailed
	}
}
