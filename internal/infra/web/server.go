// File: internal/infra/web/server.go
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"nexus-ai-portal/internal/config"
	"nexus-ai-portal/internal/infra/logging"
	red "nexus-ai-portal/internal/infra/redis"
	"nexus-ai-portal/internal/usecase"
)

type Server struct {
	orderUC   usecase.OrderUseCase
	profileUC usecase.ProfileUseCase
	genUC     usecase.GenerationUseCase
	statsUC   usecase.StatsUseCase
	auth      *AuthManager
	limiter   *red.RateLimiter
	rates     config.RateLimitConfig
	log       *zerolog.Logger
}

func NewServer(
	orderUC usecase.OrderUseCase,
	profileUC usecase.ProfileUseCase,
	genUC usecase.GenerationUseCase,
	statsUC usecase.StatsUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	rates config.RateLimitConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		orderUC:   orderUC,
		profileUC: profileUC,
		genUC:     genUC,
		statsUC:   statsUC,
		auth:      auth,
		limiter:   limiter,
		rates:     rates,
		log:       logger,
	}
}

// Router assembles the full route tree. The gateway callback stays outside
// the auth chain; the gateway signs, it does not log in.
func (s *Server) Router(requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return Chain(next,
			TraceID(),
			RequestLog(s.log),
			Recover(s.log),
			Timeout(requestTimeout),
		)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/alipay/notify", s.handleGatewayNotify)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/api/me", s.handleMe)

		r.With(s.rateLimit("orders", s.rates.OrdersPerMinute)).
			Post("/api/orders", s.handleCreateOrder)
		r.Get("/api/orders", s.handleListMyOrders)
		r.Get("/api/orders/{orderID}", s.handleGetOrder)
		r.Post("/api/orders/{orderID}/artifact", s.handleRequestArtifact)

		r.With(s.rateLimit("generate", s.rates.GeneratePerMinute)).
			Post("/api/generate/text", s.handleGenerateText)
		r.With(s.rateLimit("generate", s.rates.GeneratePerMinute)).
			Post("/api/generate/image", s.handleGenerateImage)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/api/admin/activate", s.handleAdminActivate)
			r.Get("/api/admin/orders", s.handleAdminListOrders)
			r.Get("/api/admin/profiles", s.handleAdminListProfiles)
			r.Get("/api/admin/stats", s.handleAdminStats)
		})
	})

	return r
}

// rateLimit is a fixed-window per-user limit. Redis trouble fails open; a
// throttle outage must not take checkout down with it.
func (s *Server) rateLimit(action string, perMinute int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := profileFromContext(r.Context())
			if p == nil || s.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			key := red.UserActionKey(p.UserID, action)
			ok, err := s.limiter.Allow(r.Context(), key, perMinute, time.Minute)
			if err != nil {
				logging.With(r.Context(), s.log).Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
