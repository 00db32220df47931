//go:build !integration

// File: internal/infra/payment/alipay_gateway_test.go
package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"nexus-ai-portal/internal/config"
)

func testNopLogger() zerolog.Logger { return zerolog.Nop() }

func testAlipayConfig(privPEM, pubPEM string) config.AlipayConfig {
	return config.AlipayConfig{
		AppID:           "2021000000000000",
		PrivateKey:      privPEM,
		AlipayPublicKey: pubPEM,
		GatewayURL:      "https://example.invalid/gateway.do",
		NotifyURL:       "https://example.invalid/api/alipay/notify",
	}
}

func TestRequestPrecreate(t *testing.T) {
	// --- Arrange ---
	privPEM, pubPEM := testKeyPair(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := r.Form.Get("method"); got != "alipay.trade.precreate" {
			t.Fatalf("method = %q", got)
		}
		if r.Form.Get("sign") == "" {
			t.Fatal("request must be signed")
		}
		var biz map[string]string
		if err := json.Unmarshal([]byte(r.Form.Get("biz_content")), &biz); err != nil {
			t.Fatalf("biz_content: %v", err)
		}
		if biz["out_trade_no"] != "01ABC" || biz["total_amount"] != "99.00" {
			t.Fatalf("unexpected biz_content: %v", biz)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"alipay_trade_precreate_response": map[string]string{
				"code":    "10000",
				"qr_code": "https://qr.example.invalid/01ABC",
			},
		})
	}))
	defer srv.Close()

	cfg := testAlipayConfig(privPEM, pubPEM)
	cfg.GatewayURL = srv.URL
	logger := testNopLogger()
	g, err := NewAlipayGateway(cfg, &logger)
	if err != nil {
		t.Fatalf("NewAlipayGateway: %v", err)
	}

	// --- Act ---
	qr, err := g.RequestPrecreate(context.Background(), "01ABC", 9900, "annual membership")

	// --- Assert ---
	if err != nil {
		t.Fatalf("RequestPrecreate: %v", err)
	}
	if qr != "https://qr.example.invalid/01ABC" {
		t.Fatalf("qr = %q", qr)
	}
}

func TestRequestPrecreateGatewayError(t *testing.T) {
	privPEM, pubPEM := testKeyPair(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"alipay_trade_precreate_response": map[string]string{
				"code":    "40004",
				"sub_msg": "invalid app_id",
			},
		})
	}))
	defer srv.Close()

	cfg := testAlipayConfig(privPEM, pubPEM)
	cfg.GatewayURL = srv.URL
	logger := testNopLogger()
	g, err := NewAlipayGateway(cfg, &logger)
	if err != nil {
		t.Fatalf("NewAlipayGateway: %v", err)
	}

	if _, err := g.RequestPrecreate(context.Background(), "01ABC", 9900, "x"); err == nil {
		t.Fatal("expected error from non-10000 response")
	}
}

func TestRequestPagePayForm(t *testing.T) {
	privPEM, pubPEM := testKeyPair(t)
	logger := testNopLogger()
	g, err := NewAlipayGateway(testAlipayConfig(privPEM, pubPEM), &logger)
	if err != nil {
		t.Fatalf("NewAlipayGateway: %v", err)
	}

	form, err := g.RequestPagePay(context.Background(), "01ABC", 39900, "lifetime membership", "https://app.example.com/paid")
	if err != nil {
		t.Fatalf("RequestPagePay: %v", err)
	}
	for _, want := range []string{"alipay.trade.page.pay", "name=\"sign\"", "FAST_INSTANT_TRADE_PAY", "https://app.example.com/paid"} {
		if !strings.Contains(form, want) {
			t.Fatalf("form missing %q:\n%s", want, form)
		}
	}
}

func TestVerifyNotificationRoundTrip(t *testing.T) {
	// --- Arrange --- sign as the gateway would, with its own private key.
	privPEM, pubPEM := testKeyPair(t)
	priv, err := parsePrivateKey(privPEM)
	if err != nil {
		t.Fatalf("parsePrivateKey: %v", err)
	}
	logger := testNopLogger()
	g, err := NewAlipayGateway(testAlipayConfig(privPEM, pubPEM), &logger)
	if err != nil {
		t.Fatalf("NewAlipayGateway: %v", err)
	}

	params := map[string]string{
		"out_trade_no": "01ABC",
		"trade_no":     "2026090122001400001",
		"trade_status": "TRADE_SUCCESS",
		"total_amount": "99.00",
	}
	sign, err := signParams(params, priv)
	if err != nil {
		t.Fatalf("signParams: %v", err)
	}
	params["sign"] = sign
	params["sign_type"] = "RSA2"

	// --- Act / Assert ---
	if !g.VerifyNotification(params) {
		t.Fatal("genuine notification must verify")
	}
	params["total_amount"] = "0.01"
	if g.VerifyNotification(params) {
		t.Fatal("tampered notification must not verify")
	}
}
