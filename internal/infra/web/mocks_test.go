//go:build !integration

// File: internal/infra/web/mocks_test.go
package web

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"nexus-ai-portal/internal/domain"
	"nexus-ai-portal/internal/domain/model"
	"nexus-ai-portal/internal/domain/ports/adapter"
	"nexus-ai-portal/internal/usecase"
)

const testJWTSecret = "test-secret"

var testLogger = zerolog.Nop()

func mintToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return tok
}

// --- order usecase mock ---

type mockOrderUC struct {
	CreateFunc          func(ctx context.Context, userID string, amountFen int64, plan model.Plan, subject, returnURL string) (*model.Order, *usecase.PaymentArtifact, error)
	RequestArtifactFunc func(ctx context.Context, orderID, returnURL string) (*model.Order, *usecase.PaymentArtifact, error)
	CallbackFunc        func(ctx context.Context, params map[string]string) usecase.CallbackResult
	FindFunc            func(ctx context.Context, orderID string) (*model.Order, error)
	ListByUserFunc      func(ctx context.Context, userID string, limit int) ([]*model.Order, error)
	ListFunc            func(ctx context.Context, offset, limit int) ([]*model.Order, error)
}

func (m *mockOrderUC) Create(ctx context.Context, userID string, amountFen int64, plan model.Plan, subject, returnURL string) (*model.Order, *usecase.PaymentArtifact, error) {
	return m.CreateFunc(ctx, userID, amountFen, plan, subject, returnURL)
}

func (m *mockOrderUC) RequestArtifact(ctx context.Context, orderID, returnURL string) (*model.Order, *usecase.PaymentArtifact, error) {
	return m.RequestArtifactFunc(ctx, orderID, returnURL)
}

func (m *mockOrderUC) HandleGatewayCallback(ctx context.Context, params map[string]string) usecase.CallbackResult {
	return m.CallbackFunc(ctx, params)
}

func (m *mockOrderUC) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	return m.FindFunc(ctx, orderID)
}

func (m *mockOrderUC) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Order, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockOrderUC) List(ctx context.Context, offset, limit int) ([]*model.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, offset, limit)
	}
	return nil, nil
}

// --- profile usecase mock ---

type mockProfileUC struct {
	profiles map[string]*model.Profile

	RegisterFunc       func(ctx context.Context, email, password, username string) (*model.Profile, error)
	LoginFunc          func(ctx context.Context, email, password string) (*usecase.Session, error)
	ManualActivateFunc func(ctx context.Context, identifier string, plan model.Plan) (*model.Profile, error)
}

func (m *mockProfileUC) Register(ctx context.Context, email, password, username string) (*model.Profile, error) {
	return m.RegisterFunc(ctx, email, password, username)
}

func (m *mockProfileUC) Login(ctx context.Context, email, password string) (*usecase.Session, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockProfileUC) Me(_ context.Context, userID string) (*model.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func (m *mockProfileUC) ManualActivate(ctx context.Context, identifier string, plan model.Plan) (*model.Profile, error) {
	return m.ManualActivateFunc(ctx, identifier, plan)
}

func (m *mockProfileUC) List(context.Context, int, int) ([]*model.Profile, error) {
	var out []*model.Profile
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, nil
}

// --- generation usecase mock ---

type mockGenerationUC struct {
	TextFunc  func(ctx context.Context, userID, modelName, prompt string) (string, error)
	ImageFunc func(ctx context.Context, userID, prompt string) (*adapter.GeneratedImage, error)
}

func (m *mockGenerationUC) GenerateText(ctx context.Context, userID, modelName, prompt string) (string, error) {
	return m.TextFunc(ctx, userID, modelName, prompt)
}

func (m *mockGenerationUC) GenerateImage(ctx context.Context, userID, prompt string) (*adapter.GeneratedImage, error) {
	return m.ImageFunc(ctx, userID, prompt)
}

// --- stats usecase mock ---

type mockStatsUC struct {
	SnapshotFunc func(ctx context.Context) (*usecase.Stats, error)
}

func (m *mockStatsUC) Snapshot(ctx context.Context) (*usecase.Stats, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx)
	}
	return &usecase.Stats{}, nil
}

// --- fixtures ---

func testProfile(userID string, role model.Role) *model.Profile {
	now := time.Now()
	return &model.Profile{
		UserID:         userID,
		Email:          userID + "@example.com",
		Role:           role,
		MembershipType: model.MembershipFree,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func testOrder(userID string) *model.Order {
	o, _ := model.NewOrder(userID, 9900, model.PlanAnnual, "annual membership")
	return o
}
