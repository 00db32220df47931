package repository

import (
	"context"
	"time"

	"nexus-ai-portal/internal/domain/model"
)

// OrderRepository persists purchase attempts. Orders are append-on-create;
// the only mutation is the single transition to a terminal status, performed
// through the conditional update below.
type OrderRepository interface {
	Save(ctx context.Context, tx Tx, o *model.Order) error
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Order, error)
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Order, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Order, error)

	// UpdateStatusIfPending transitions the order to status only when the
	// current status is 'pending'. Returns false when another writer already
	// took the order terminal. This is the concurrency primitive duplicate
	// gateway callbacks race on.
	UpdateStatusIfPending(ctx context.Context, tx Tx, orderID string, status model.OrderStatus, gatewayTradeID string) (bool, error)

	// Revenue sums completed-order amounts since the given instant.
	Revenue(ctx context.Context, tx Tx, since time.Time) (int64, error)
	CountByStatus(ctx context.Context, tx Tx) (map[string]int, error)
}
