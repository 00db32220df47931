// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"nexus-ai-portal/internal/domain"
	"nexus-ai-portal/internal/domain/model"
	"nexus-ai-portal/internal/infra/logging"
	"nexus-ai-portal/internal/usecase"
)

// ===== JSON plumbing =====

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrInvalidPlan),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrOrderTerminal),
		errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNoAccess):
		writeError(w, http.StatusForbidden, "membership required")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

// ===== DTOs =====

type profileResponse struct {
	UserID              string     `json:"userId"`
	Email               string     `json:"email"`
	Username            string     `json:"username,omitempty"`
	Role                string     `json:"role"`
	MembershipType      string     `json:"membershipType"`
	MembershipExpiresAt *time.Time `json:"membershipExpiresAt,omitempty"`
	HasAccess           bool       `json:"hasAccess"`
}

func toProfileResponse(p *model.Profile) profileResponse {
	return profileResponse{
		UserID:              p.UserID,
		Email:               p.Email,
		Username:            p.Username,
		Role:                string(p.Role),
		MembershipType:      string(p.MembershipType),
		MembershipExpiresAt: p.MembershipExpiresAt,
		HasAccess:           p.HasAccess(),
	}
}

type orderResponse struct {
	OrderID   string    `json:"orderId"`
	AmountFen int64     `json:"amountFen"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	Subject   string    `json:"subject,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toOrderResponse(o *model.Order) orderResponse {
	return orderResponse{
		OrderID:   o.OrderID,
		AmountFen: o.AmountFen,
		Plan:      string(o.Plan),
		Status:    string(o.Status),
		Subject:   o.Subject,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

type artifactResponse struct {
	QRCodeURL string `json:"qrCodeUrl,omitempty"`
	FormHTML  string `json:"formHtml,omitempty"`
}

// ===== auth =====

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := s.profileUC.Register(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProfileResponse(p))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := s.profileUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeDomainError(w, err)
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken": sess.AccessToken,
		"profile":     toProfileResponse(sess.Profile),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p := profileFromContext(r.Context())
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// ===== orders =====

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan      string `json:"plan"`
		AmountFen int64  `json:"amountFen"`
		Subject   string `json:"subject"`
		ReturnURL string `json:"returnUrl"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p := profileFromContext(r.Context())
	if req.Subject == "" {
		req.Subject = req.Plan + " membership"
	}

	o, artifact, err := s.orderUC.Create(r.Context(), p.UserID, req.AmountFen, model.Plan(req.Plan), req.Subject, req.ReturnURL)
	if err != nil {
		// A persisted order with a failed artifact is reported with its id
		// so the client can retry against the same order.
		if o != nil {
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error": "payment gateway unavailable",
				"order": toOrderResponse(o),
			})
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"order":    toOrderResponse(o),
		"artifact": artifactResponse{QRCodeURL: artifact.QRCodeURL, FormHTML: artifact.FormHTML},
	})
}

func (s *Server) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	p := profileFromContext(r.Context())
	orders, err := s.orderUC.ListByUser(r.Context(), p.UserID, queryInt(r, "limit", 50))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetOrder serves an order to its owner or to an admin.
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	p := profileFromContext(r.Context())
	o, err := s.orderUC.FindByOrderID(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if o.UserID != p.UserID && !p.IsAdmin() {
		// Indistinguishable from a missing order on purpose.
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (s *Server) handleRequestArtifact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReturnURL string `json:"returnUrl"`
	}
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}
	p := profileFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")

	o, err := s.orderUC.FindByOrderID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if o.UserID != p.UserID && !p.IsAdmin() {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	_, artifact, err := s.orderUC.RequestArtifact(r.Context(), orderID, req.ReturnURL)
	if err != nil {
		if errors.Is(err, domain.ErrOrderTerminal) {
			writeDomainError(w, err)
			return
		}
		writeError(w, http.StatusBadGateway, "payment gateway unavailable")
		return
	}
	writeJSON(w, http.StatusOK, artifactResponse{QRCodeURL: artifact.QRCodeURL, FormHTML: artifact.FormHTML})
}

// handleGatewayNotify answers the gateway's async notification with the
// literal body it expects: "success" stops redelivery, anything else
// triggers a retry.
func (s *Server) handleGatewayNotify(w http.ResponseWriter, r *http.Request) {
	params, err := flattenNotifyParams(r)
	if err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("unparseable gateway notification")
		respondToGateway(w, usecase.CallbackFail)
		return
	}
	result := s.orderUC.HandleGatewayCallback(r.Context(), params)
	respondToGateway(w, result)
}

func respondToGateway(w http.ResponseWriter, result usecase.CallbackResult) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result))
}

// flattenNotifyParams accepts both urlencoded and multipart form posts and
// flattens them to the single-value map the signature check runs over.
func flattenNotifyParams(r *http.Request) (map[string]string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	}
	params := make(map[string]string, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params, nil
}

// ===== generation =====

func (s *Server) handleGenerateText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p := profileFromContext(r.Context())
	out, err := s.genUC.GenerateText(r.Context(), p.UserID, req.Model, req.Prompt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": out})
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p := profileFromContext(r.Context())
	img, err := s.genUC.GenerateImage(r.Context(), p.UserID, req.Prompt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"url":     img.URL,
		"b64Data": img.B64Data,
	})
}

// ===== admin =====

func (s *Server) handleAdminActivate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Plan       string `json:"plan"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := s.profileUC.ManualActivate(r.Context(), req.Identifier, model.Plan(req.Plan))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (s *Server) handleAdminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orderUC.List(r.Context(), queryInt(r, "offset", 0), queryInt(r, "limit", 100))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profileUC.List(r.Context(), queryInt(r, "offset", 0), queryInt(r, "limit", 100))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles":        stats.Profiles,
		"ordersPending":   stats.OrdersPending,
		"ordersCompleted": stats.OrdersCompleted,
		"ordersFailed":    stats.OrdersFailed,
		"revenueFenDay":   stats.RevenueFenDay,
		"revenueFenMonth": stats.RevenueFenMonth,
		"revenueFenTotal": stats.RevenueFenTotal,
	})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
