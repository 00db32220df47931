// File: internal/infra/payment/noop_gateway.go
package payment

import (
	"context"
	"fmt"

	"nexus-ai-portal/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway stands in for the real gateway in development. Artifacts are
// fabricated and every notification verifies, so the callback flow can be
// exercised with curl.
type NoopGateway struct{}

func NewNoopGateway() *NoopGateway { return &NoopGateway{} }

func (NoopGateway) Name() string { return "noop" }

func (NoopGateway) RequestPrecreate(_ context.Context, orderID string, amountFen int64, _ string) (string, error) {
	return fmt.Sprintf("https://example.invalid/qr/%s?amount=%d", orderID, amountFen), nil
}

func (NoopGateway) RequestPagePay(_ context.Context, orderID string, _ int64, _, returnURL string) (string, error) {
	return fmt.Sprintf(`<form action="https://example.invalid/pay/%s" data-return="%s"></form>`, orderID, returnURL), nil
}

func (NoopGateway) VerifyNotification(map[string]string) bool { return true }
