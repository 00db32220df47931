//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"nexus-ai-portal/internal/domain"
	"nexus-ai-portal/internal/domain/model"
	"nexus-ai-portal/internal/domain/ports/adapter"
	"nexus-ai-portal/internal/domain/ports/repository"
)

var testLogger = zerolog.Nop()

// --- in-memory order repository ---

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order // keyed by merchant order number

	SaveErr error
	FindErr error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*model.Order)}
}

func (r *memOrderRepo) Save(_ context.Context, _ repository.Tx, o *model.Order) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.OrderID] = &cp
	return nil
}

func (r *memOrderRepo) FindByOrderID(_ context.Context, _ repository.Tx, orderID string) (*model.Order, error) {
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) ListByUser(_ context.Context, _ repository.Tx, userID string, limit int) ([]*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memOrderRepo) List(_ context.Context, _ repository.Tx, _ int, limit int) ([]*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Order
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memOrderRepo) UpdateStatusIfPending(_ context.Context, _ repository.Tx, orderID string, status model.OrderStatus, gatewayTradeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return false, domain.ErrOrderNotFound
	}
	if o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = status
	o.GatewayTradeID = gatewayTradeID
	o.UpdatedAt = time.Now()
	return true, nil
}

func (r *memOrderRepo) Revenue(_ context.Context, _ repository.Tx, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, o := range r.orders {
		if o.Status == model.OrderStatusCompleted && !o.UpdatedAt.Before(since) {
			sum += o.AmountFen
		}
	}
	return sum, nil
}

func (r *memOrderRepo) CountByStatus(_ context.Context, _ repository.Tx) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, o := range r.orders {
		counts[string(o.Status)]++
	}
	return counts, nil
}

// --- in-memory profile repository ---

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile // keyed by user id

	updateCalls int
	UpdateErr   error
	FindErr     error
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (r *memProfileRepo) put(p *model.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.UserID] = &cp
}

func (r *memProfileRepo) Create(_ context.Context, _ repository.Tx, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.UserID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *memProfileRepo) FindByUserID(_ context.Context, _ repository.Tx, userID string) (*model.Profile, error) {
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProfileRepo) FindByIdentifier(_ context.Context, _ repository.Tx, identifier string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.UserID == identifier || p.Email == identifier || (p.Username != "" && p.Username == identifier) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (r *memProfileRepo) UpdateMembership(_ context.Context, _ repository.Tx, userID string, membership model.MembershipType, expiresAt *time.Time) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	r.updateCalls++
	p.MembershipType = membership
	if expiresAt != nil {
		cp := *expiresAt
		p.MembershipExpiresAt = &cp
	} else {
		p.MembershipExpiresAt = nil
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memProfileRepo) List(_ context.Context, _ repository.Tx, _ int, limit int) ([]*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Profile
	for _, p := range r.profiles {
		cp := *p
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memProfileRepo) Count(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles), nil
}

func (r *memProfileRepo) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateCalls
}

// --- gateway mock ---

type mockGateway struct {
	VerifyFunc    func(params map[string]string) bool
	PrecreateFunc func(ctx context.Context, orderID string, amountFen int64, subject string) (string, error)
	PagePayFunc   func(ctx context.Context, orderID string, amountFen int64, subject, returnURL string) (string, error)
}

func (m *mockGateway) Name() string { return "mock" }

func (m *mockGateway) RequestPrecreate(ctx context.Context, orderID string, amountFen int64, subject string) (string, error) {
	if m.PrecreateFunc != nil {
		return m.PrecreateFunc(ctx, orderID, amountFen, subject)
	}
	return "https://qr.example.com/" + orderID, nil
}

func (m *mockGateway) RequestPagePay(ctx context.Context, orderID string, amountFen int64, subject, returnURL string) (string, error) {
	if m.PagePayFunc != nil {
		return m.PagePayFunc(ctx, orderID, amountFen, subject, returnURL)
	}
	return "<form></form>", nil
}

func (m *mockGateway) VerifyNotification(params map[string]string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(params)
	}
	return true
}

// --- identity mock ---

type mockIdentity struct {
	SignUpFunc          func(ctx context.Context, email, password, username string) (*adapter.IdentityUser, error)
	SignInFunc          func(ctx context.Context, email, password string) (string, *adapter.IdentityUser, error)
	GetUserFunc         func(ctx context.Context, userID string) (*adapter.IdentityUser, error)
	AdminCreateUserFunc func(ctx context.Context, email, password string) (*adapter.IdentityUser, error)
}

func (m *mockIdentity) SignUp(ctx context.Context, email, password, username string) (*adapter.IdentityUser, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, email, password, username)
	}
	return &adapter.IdentityUser{ID: "user-" + email, Email: email, Username: username}, nil
}

func (m *mockIdentity) SignInWithPassword(ctx context.Context, email, password string) (string, *adapter.IdentityUser, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return "token", &adapter.IdentityUser{ID: "user-" + email, Email: email}, nil
}

func (m *mockIdentity) GetUser(ctx context.Context, userID string) (*adapter.IdentityUser, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	return &adapter.IdentityUser{ID: userID}, nil
}

func (m *mockIdentity) AdminCreateUser(ctx context.Context, email, password string) (*adapter.IdentityUser, error) {
	if m.AdminCreateUserFunc != nil {
		return m.AdminCreateUserFunc(ctx, email, password)
	}
	return &adapter.IdentityUser{ID: "user-" + email, Email: email}, nil
}

// --- transaction manager mock ---

type mockTM struct{}

func (mockTM) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// --- AI adapter mock ---

type mockAI struct {
	TextFunc  func(ctx context.Context, modelName, prompt string) (string, error)
	ImageFunc func(ctx context.Context, prompt string) (*adapter.GeneratedImage, error)
}

func (m *mockAI) Name() string { return "mock-ai" }

func (m *mockAI) GenerateText(ctx context.Context, modelName, prompt string) (string, error) {
	if m.TextFunc != nil {
		return m.TextFunc(ctx, modelName, prompt)
	}
	return "generated", nil
}

func (m *mockAI) GenerateImage(ctx context.Context, prompt string) (*adapter.GeneratedImage, error) {
	if m.ImageFunc != nil {
		return m.ImageFunc(ctx, prompt)
	}
	return &adapter.GeneratedImage{URL: "https://img.example.com/1.png"}, nil
}

var testPrices = map[model.Plan]int64{
	model.PlanAnnual:   9900,
	model.PlanLifetime: 39900,
	model.PlanAgent:    199900,
}
