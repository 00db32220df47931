package model

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"nexus-ai-portal/internal/domain"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // created; awaiting gateway notification
	OrderStatusCompleted OrderStatus = "completed" // paid and entitlement applied (terminal)
	OrderStatusFailed    OrderStatus = "failed"    // closed or cancelled at the gateway (terminal)
)

// Order records a single purchase attempt. OrderID is the merchant order
// number handed to the payment gateway; it never changes after creation.
type Order struct {
	ID             string // internal UUID-class key
	OrderID        string // merchant order number (out_trade_no)
	UserID         string
	AmountFen      int64 // minor units (fen); fixed at creation
	Plan           Plan
	Status         OrderStatus
	GatewayTradeID string // gateway transaction id, set on terminal transition
	Subject        string // human-readable description shown at the gateway
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewOrderID mints a fresh merchant order number. ULIDs are unique,
// lexically sortable and safe to expose to the gateway.
func NewOrderID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

func NewOrder(userID string, amountFen int64, plan Plan, subject string) (*Order, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if amountFen <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if !ValidPlan(string(plan)) {
		return nil, domain.ErrInvalidPlan
	}
	now := time.Now()
	return &Order{
		ID:        uuid.NewString(),
		OrderID:   NewOrderID(now),
		UserID:    userID,
		AmountFen: amountFen,
		Plan:      plan,
		Status:    OrderStatusPending,
		Subject:   subject,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Terminal reports whether the order has reached a final state.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusFailed
}
