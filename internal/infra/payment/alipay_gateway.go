// File: internal/infra/payment/alipay_gateway.go
package payment

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nexus-ai-portal/internal/config"
	"nexus-ai-portal/internal/domain"
	"nexus-ai-portal/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*AlipayGateway)(nil)

const gatewayTimestampLayout = "2006-01-02 15:04:05"

// AlipayGateway talks to the Alipay open gateway: precreate for QR checkout,
// page.pay for desktop redirect, and RSA2 verification of async notifications.
type AlipayGateway struct {
	cfg        config.AlipayConfig
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	client     *http.Client
	log        *zerolog.Logger
}

func NewAlipayGateway(cfg config.AlipayConfig, logger *zerolog.Logger) (*AlipayGateway, error) {
	priv, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("alipay private key: %w", err)
	}
	pub, err := parsePublicKey(cfg.AlipayPublicKey)
	if err != nil {
		return nil, fmt.Errorf("alipay public key: %w", err)
	}
	return &AlipayGateway{
		cfg:        cfg,
		privateKey: priv,
		publicKey:  pub,
		client:     &http.Client{Timeout: 15 * time.Second},
		log:        logger,
	}, nil
}

func (g *AlipayGateway) Name() string { return "alipay" }

// fenToYuan renders a minor-unit amount the way the gateway wants it: a
// decimal string with two places.
func fenToYuan(fen int64) string {
	return fmt.Sprintf("%d.%02d", fen/100, fen%100)
}

func (g *AlipayGateway) commonParams(method string) map[string]string {
	return map[string]string{
		"app_id":    g.cfg.AppID,
		"method":    method,
		"format":    "JSON",
		"charset":   "utf-8",
		"sign_type": "RSA2",
		"timestamp": time.Now().Format(gatewayTimestampLayout),
		"version":   "1.0",
	}
}

func (g *AlipayGateway) signedQuery(params map[string]string) (url.Values, error) {
	sign, err := signParams(params, g.privateKey)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	for k, v := range params {
		if v != "" {
			form.Set(k, v)
		}
	}
	form.Set("sign", sign)
	return form, nil
}

type precreateResponse struct {
	Response struct {
		Code    string `json:"code"`
		Msg     string `json:"msg"`
		SubMsg  string `json:"sub_msg"`
		QRCode  string `json:"qr_code"`
		TradeNo string `json:"out_trade_no"`
	} `json:"alipay_trade_precreate_response"`
	Sign string `json:"sign"`
}

func (g *AlipayGateway) RequestPrecreate(ctx context.Context, orderID string, amountFen int64, subject string) (string, error) {
	biz, _ := json.Marshal(map[string]string{
		"out_trade_no": orderID,
		"total_amount": fenToYuan(amountFen),
		"subject":      subject,
	})
	params := g.commonParams("alipay.trade.precreate")
	params["notify_url"] = g.cfg.NotifyURL
	params["biz_content"] = string(biz)

	form, err := g.signedQuery(params)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.GatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var out precreateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("alipay precreate: bad response: %w", err)
	}
	if out.Response.Code != "10000" {
		g.log.Warn().
			Str("order_id", orderID).
			Str("code", out.Response.Code).
			Str("sub_msg", out.Response.SubMsg).
			Msg("alipay precreate rejected")
		return "", fmt.Errorf("alipay precreate: %s %s: %w", out.Response.Code, out.Response.SubMsg, domain.ErrOperationFailed)
	}
	return out.Response.QRCode, nil
}

// RequestPagePay builds a self-submitting POST form; the browser lands on
// the gateway's cashier and comes back to returnURL after paying.
func (g *AlipayGateway) RequestPagePay(ctx context.Context, orderID string, amountFen int64, subject, returnURL string) (string, error) {
	biz, _ := json.Marshal(map[string]string{
		"out_trade_no": orderID,
		"product_code": "FAST_INSTANT_TRADE_PAY",
		"total_amount": fenToYuan(amountFen),
		"subject":      subject,
	})
	params := g.commonParams("alipay.trade.page.pay")
	params["notify_url"] = g.cfg.NotifyURL
	params["return_url"] = returnURL
	params["biz_content"] = string(biz)

	form, err := g.signedQuery(params)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(`<form id="alipay_submit" method="POST" action="` + html.EscapeString(g.cfg.GatewayURL) + `">`)
	for k := range form {
		b.WriteString(`<input type="hidden" name="` + html.EscapeString(k) + `" value="` + html.EscapeString(form.Get(k)) + `">`)
	}
	b.WriteString(`</form><script>document.getElementById("alipay_submit").submit();</script>`)
	return b.String(), nil
}

func (g *AlipayGateway) VerifyNotification(params map[string]string) bool {
	if params["sign"] == "" {
		return false
	}
	if st := params["sign_type"]; st != "" && st != "RSA2" {
		return false
	}
	return verifyParams(params, g.publicKey)
}
