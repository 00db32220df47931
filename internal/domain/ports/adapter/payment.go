package adapter

import "context"

// PaymentGateway is the hex port for the payment provider. The core never
// builds gateway requests or verifies signatures itself; both live behind
// this boundary.
type PaymentGateway interface {
	Name() string

	// RequestPrecreate asks the gateway for a scan-to-pay QR code bound to
	// the merchant order number and amount (minor units).
	RequestPrecreate(ctx context.Context, orderID string, amountFen int64, subject string) (qrCodeURL string, err error)

	// RequestPagePay builds a self-submitting redirect form for desktop
	// checkout. returnURL is where the payer lands after paying.
	RequestPagePay(ctx context.Context, orderID string, amountFen int64, subject, returnURL string) (htmlForm string, err error)

	// VerifyNotification checks the RSA2 signature of an async notification
	// payload (flat key-value map as delivered by the gateway).
	VerifyNotification(params map[string]string) bool
}
