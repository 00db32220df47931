// File: internal/usecase/order_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nexus-ai-portal/internal/domain"
	"nexus-ai-portal/internal/domain/model"
	"nexus-ai-portal/internal/domain/ports/adapter"
	"nexus-ai-portal/internal/domain/ports/repository"
	"nexus-ai-portal/internal/infra/metrics"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

// CallbackResult is the literal body the payment gateway expects. It retries
// delivery until it reads "success", so anything but a fully committed
// outcome must answer "fail".
type CallbackResult string

const (
	CallbackSuccess CallbackResult = "success"
	CallbackFail    CallbackResult = "fail"
)

// Gateway trade_status values the reconciliation machine recognizes.
const (
	tradeStatusSuccess  = "TRADE_SUCCESS"
	tradeStatusFinished = "TRADE_FINISHED"
	tradeStatusClosed   = "TRADE_CLOSED"
	tradeStatusCanceled = "TRADE_CANCELED"
)

// PaymentArtifact is what the buyer needs to actually pay: a scan-to-pay QR
// URL, or a self-submitting redirect form for desktop checkout.
type PaymentArtifact struct {
	QRCodeURL string
	FormHTML  string
}

type OrderUseCase interface {
	// Create persists a pending order and requests a payable artifact for
	// it. The order survives an artifact failure so payment can be retried
	// against the same order number.
	Create(ctx context.Context, userID string, amountFen int64, plan model.Plan, subject, returnURL string) (*model.Order, *PaymentArtifact, error)
	// RequestArtifact asks the gateway for a fresh artifact for an order
	// that is still pending.
	RequestArtifact(ctx context.Context, orderID, returnURL string) (*model.Order, *PaymentArtifact, error)
	// HandleGatewayCallback drives an order through the async notification:
	// verify, look up, transition, entitle. Never returns an error; every
	// failure maps to CallbackFail so the gateway redelivers.
	HandleGatewayCallback(ctx context.Context, params map[string]string) CallbackResult
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Order, error)
	List(ctx context.Context, offset, limit int) ([]*model.Order, error)
}

type orderUC struct {
	orders   repository.OrderRepository
	profiles repository.ProfileRepository
	gateway  adapter.PaymentGateway
	prices   map[model.Plan]int64 // fixed plan prices in fen
	log      *zerolog.Logger
}

func NewOrderUseCase(orders repository.OrderRepository, profiles repository.ProfileRepository, gateway adapter.PaymentGateway, prices map[model.Plan]int64, logger *zerolog.Logger) *orderUC {
	return &orderUC{orders: orders, profiles: profiles, gateway: gateway, prices: prices, log: logger}
}

func (u *orderUC) Create(ctx context.Context, userID string, amountFen int64, plan model.Plan, subject, returnURL string) (*model.Order, *PaymentArtifact, error) {
	if !model.ValidPlan(string(plan)) {
		return nil, nil, domain.ErrInvalidPlan
	}
	if price, ok := u.prices[plan]; !ok || amountFen != price {
		return nil, nil, domain.ErrAmountMismatch
	}

	// The profile must already exist; registration is the only writer of
	// new profile rows.
	if _, err := u.profiles.FindByUserID(ctx, nil, userID); err != nil {
		return nil, nil, err
	}

	o, err := model.NewOrder(userID, amountFen, plan, subject)
	if err != nil {
		return nil, nil, err
	}

	// Durability first: the pending order is committed before the gateway
	// is asked for anything.
	if err := u.orders.Save(ctx, nil, o); err != nil {
		return nil, nil, err
	}
	metrics.IncOrder(string(model.OrderStatusPending))

	artifact, err := u.requestArtifact(ctx, o, returnURL)
	if err != nil {
		u.log.Warn().Err(err).Str("order_id", o.OrderID).Msg("gateway artifact request failed; order stays pending")
		return o, nil, err
	}
	return o, artifact, nil
}

func (u *orderUC) RequestArtifact(ctx context.Context, orderID, returnURL string) (*model.Order, *PaymentArtifact, error) {
	o, err := u.orders.FindByOrderID(ctx, nil, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o.Terminal() {
		return nil, nil, domain.ErrOrderTerminal
	}
	artifact, err := u.requestArtifact(ctx, o, returnURL)
	if err != nil {
		return o, nil, err
	}
	return o, artifact, nil
}

func (u *orderUC) requestArtifact(ctx context.Context, o *model.Order, returnURL string) (*PaymentArtifact, error) {
	if returnURL != "" {
		form, err := u.gateway.RequestPagePay(ctx, o.OrderID, o.AmountFen, o.Subject, returnURL)
		if err != nil {
			return nil, err
		}
		return &PaymentArtifact{FormHTML: form}, nil
	}
	qr, err := u.gateway.RequestPrecreate(ctx, o.OrderID, o.AmountFen, o.Subject)
	if err != nil {
		return nil, err
	}
	return &PaymentArtifact{QRCodeURL: qr}, nil
}

func (u *orderUC) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	return u.orders.FindByOrderID(ctx, nil, orderID)
}

func (u *orderUC) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Order, error) {
	return u.orders.ListByUser(ctx, nil, userID, limit)
}

func (u *orderUC) List(ctx context.Context, offset, limit int) ([]*model.Order, error) {
	return u.orders.List(ctx, nil, offset, limit)
}

// HandleGatewayCallback implements the reconciliation state machine. The
// steps run in strict order; nothing is written before the signature and
// order lookup pass.
func (u *orderUC) HandleGatewayCallback(ctx context.Context, params map[string]string) (result CallbackResult) {
	defer func() {
		// The gateway must never see an unhandled failure mode.
		if rec := recover(); rec != nil {
			u.log.Error().Interface("panic", rec).Msg("panic in gateway callback")
			result = CallbackFail
		}
		metrics.IncCallback(string(result))
	}()

	if !u.gateway.VerifyNotification(params) {
		u.log.Warn().Str("out_trade_no", params["out_trade_no"]).Msg("callback signature rejected")
		return CallbackFail
	}

	orderID := params["out_trade_no"]
	if orderID == "" {
		u.log.Warn().Msg("callback missing out_trade_no")
		return CallbackFail
	}
	tradeStatus := params["trade_status"]
	gatewayTradeID := params["trade_no"]

	o, err := u.orders.FindByOrderID(ctx, nil, orderID)
	if err != nil {
		u.log.Warn().Err(err).Str("order_id", orderID).Msg("callback for unknown order")
		return CallbackFail
	}

	switch tradeStatus {
	case tradeStatusSuccess, tradeStatusFinished:
		return u.completeOrder(ctx, o, gatewayTradeID)
	case tradeStatusClosed, tradeStatusCanceled:
		return u.closeOrder(ctx, o, gatewayTradeID)
	default:
		u.log.Warn().Str("order_id", orderID).Str("trade_status", tradeStatus).Msg("unrecognized trade_status")
		return CallbackFail
	}
}

func (u *orderUC) completeOrder(ctx context.Context, o *model.Order, gatewayTradeID string) CallbackResult {
	switch o.Status {
	case model.OrderStatusCompleted:
		// Duplicate delivery. Acknowledge without re-applying, unless a
		// previous delivery committed the order but lost the profile write;
		// then repair it now.
		return u.ensureEntitlement(ctx, o)
	case model.OrderStatusFailed:
		// Terminal states never flip. A success notification for a closed
		// order is a gateway anomaly worth keeping loud.
		u.log.Error().Str("order_id", o.OrderID).Msg("success callback for failed order ignored")
		return CallbackFail
	}

	ok, err := u.orders.UpdateStatusIfPending(ctx, nil, o.OrderID, model.OrderStatusCompleted, gatewayTradeID)
	if err != nil {
		u.log.Error().Err(err).Str("order_id", o.OrderID).Msg("order completion write failed")
		return CallbackFail
	}
	if !ok {
		// Lost the race against a concurrent duplicate. Re-read and defer
		// to whatever terminal state won.
		o2, err := u.orders.FindByOrderID(ctx, nil, o.OrderID)
		if err != nil {
			return CallbackFail
		}
		if o2.Status == model.OrderStatusCompleted {
			return u.ensureEntitlement(ctx, o2)
		}
		return CallbackFail
	}

	metrics.IncOrder(string(model.OrderStatusCompleted))
	o.Status = model.OrderStatusCompleted
	o.GatewayTradeID = gatewayTradeID
	o.UpdatedAt = time.Now()
	return u.ensureEntitlement(ctx, o)
}

func (u *orderUC) closeOrder(ctx context.Context, o *model.Order, gatewayTradeID string) CallbackResult {
	if o.Terminal() {
		// Already failed: duplicate close, nothing to do. Already
		// completed: keep the completed state; acknowledge so the gateway
		// stops retrying a notification we can no longer honor.
		return CallbackSuccess
	}
	if _, err := u.orders.UpdateStatusIfPending(ctx, nil, o.OrderID, model.OrderStatusFailed, gatewayTradeID); err != nil {
		u.log.Error().Err(err).Str("order_id", o.OrderID).Msg("order close write failed")
		return CallbackFail
	}
	metrics.IncOrder(string(model.OrderStatusFailed))
	u.log.Info().Str("order_id", o.OrderID).Msg("order closed at gateway")
	return CallbackSuccess
}

// ensureEntitlement makes the profile reflect the completed order, writing
// only when it does not already. The order row is committed before this runs,
// so a failed profile write answers "fail" and the gateway's redelivery
// lands back here until the write sticks.
func (u *orderUC) ensureEntitlement(ctx context.Context, o *model.Order) CallbackResult {
	p, err := u.profiles.FindByUserID(ctx, nil, o.UserID)
	if err != nil {
		u.log.Error().Err(err).Str("order_id", o.OrderID).Str("user_id", o.UserID).Msg("profile lookup failed after order completion")
		return CallbackFail
	}
	if entitlementApplied(p, o.Plan, o.UpdatedAt) {
		return CallbackSuccess
	}

	next := *p
	next.ApplyPlan(o.Plan, time.Now())
	if err := u.profiles.UpdateMembership(ctx, nil, o.UserID, next.MembershipType, next.MembershipExpiresAt); err != nil {
		u.log.Error().Err(err).Str("order_id", o.OrderID).Str("user_id", o.UserID).Msg("membership write failed; awaiting gateway redelivery")
		return CallbackFail
	}
	metrics.AddRevenue(string(o.Plan), o.AmountFen)
	u.log.Info().
		Str("order_id", o.OrderID).
		Str("user_id", o.UserID).
		Str("plan", string(o.Plan)).
		Msg("membership granted")
	return CallbackSuccess
}

// entitlementApplied reports whether the profile already carries the
// entitlement a completed order of this plan grants. For annual plans the
// expiry must be at least ~365 days past the completion instant, which
// distinguishes a fresh grant from a stale one left by an earlier purchase.
func entitlementApplied(p *model.Profile, plan model.Plan, completedAt time.Time) bool {
	switch plan.Membership() {
	case model.MembershipLifetime:
		return p.MembershipType == model.MembershipLifetime
	case model.MembershipAnnual:
		if p.MembershipType == model.MembershipLifetime {
			// A lifetime member stays lifetime; an annual grant on top
			// would only downgrade.
			return true
		}
		return p.MembershipType == model.MembershipAnnual &&
			p.MembershipExpiresAt != nil &&
			!p.MembershipExpiresAt.Before(completedAt.Add(364*24*time.Hour))
	}
	return false
}
