package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"

	"gymgate/cmd/identity"
	"gymgate/cmd/internal/auth/session"
	"gymgate/cmd/security/password"
)

// Handler serves the auth endpoints.
type Handler struct {
	cfg       Config
	sessions  *session.Service
	users     identity.Store
	passwords password.Config
	metrics   *Metrics
	log       *slog.Logger
	now       func() time.Time

	// dummyHash absorbs a Verify call when the email is unknown so
	// login timing does not reveal which emails exist.
	dummyHash string
}

func NewHandler(
	cfg Config,
	sessions *session.Service,
	users identity.Store,
	passwords password.Config,
	reg prometheus.Registerer,
	log *slog.Logger,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	m := NewMetrics(reg)
	sessions.ReuseHook = m.reuse

	dummy, err := passwords.Hash("gymgate-dummy-password-000")
	if err != nil {
		log.Warn("auth.dummy_hash_failed", "err", err)
	}
	return &Handler{
		cfg:       cfg,
		sessions:  sessions,
		users:     users,
		passwords: passwords,
		metrics:   m,
		log:       log,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// Routes registers the auth endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/refresh", h.handleRefresh)
	mux.HandleFunc("POST /auth/logout", h.handleLogout)
	mux.HandleFunc("POST /auth/logout_all", h.handleLogoutAll)
	mux.HandleFunc("GET /me", h.handleMe)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}
	email := identity.NormalizeEmail(req.Email)
	if !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "invalid_email")
		return
	}

	hash, err := h.passwords.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrPolicy) {
			writeError(w, http.StatusBadRequest, "weak_password")
			return
		}
		h.log.Error("auth.register_hash_failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "service_unavailable")
		return
	}

	now := h.now()
	u, err := h.users.CreateUser(r.Context(), identity.CreateUserInput{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
	}, now)
	if identity.IsConflict(err) {
		writeError(w, http.StatusConflict, "email_taken")
		return
	}
	if err != nil {
		h.log.Error("auth.register_failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "service_unavailable")
		return
	}

	issued, err := h.sessions.IssueInitialSession(r.Context(), u.ID, now)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	h.log.Info("auth.registered", "user_id", u.ID, "ip", clientIP(r))
	h.issueCookies(w, issued)
	writeJSON(w, http.StatusCreated, tokenResponse{
		AccessToken:     issued.AccessToken,
		AccessExpiresAt: issued.AccessExpiresAt,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}
	email := identity.NormalizeEmail(req.Email)
	now := h.now()

	u, err := h.users.GetUserByEmail(r.Context(), email)
	if identity.IsNotFound(err) {
		// Burn the same work as a real verification.
		_, _ = h.passwords.Verify(h.dummyHash, req.Password)
		h.metrics.login("invalid")
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if err != nil {
		h.log.Error("auth.login_lookup_failed", "err", err)
		h.metrics.login("unavailable")
		writeError(w, http.StatusServiceUnavailable, "service_unavailable")
		return
	}

	ok, err := h.passwords.Verify(u.PasswordHash, req.Password)
	if err != nil || !ok {
		h.metrics.login("invalid")
		h.log.Info("auth.login_denied", "user_id", u.ID, "ip", clientIP(r))
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	issued, err := h.sessions.IssueInitialSession(r.Context(), u.ID, now)
	if err != nil {
		h.metrics.login("unavailable")
		h.writeSessionError(w, err)
		return
	}

	h.metrics.login("ok")
	h.log.Info("auth.login", "user_id", u.ID, "ip", clientIP(r))
	h.issueCookies(w, issued)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:     issued.AccessToken,
		AccessExpiresAt: issued.AccessExpiresAt,
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	secret, fromCookie := refreshSecretFromRequest(r, h.cfg)
	if secret == "" {
		h.metrics.rotation("invalid")
		writeError(w, http.StatusUnauthorized, "session_invalid")
		return
	}
	if fromCookie && !checkCSRF(r, h.cfg) {
		writeError(w, http.StatusForbidden, "csrf_mismatch")
		return
	}

	issued, err := h.sessions.Refresh(r.Context(), secret, h.now())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrStorageUnavailable), errors.Is(err, session.ErrSignerUnavailable):
			// Retryable; the presented token is still good.
			h.metrics.rotation("unavailable")
			h.log.Error("auth.refresh_unavailable", "err", err)
			writeError(w, http.StatusServiceUnavailable, "service_unavailable")
		default:
			// Invalid sessions and vanished users answer identically.
			h.metrics.rotation("invalid")
			clearRefreshCookie(w, h.cfg)
			writeError(w, http.StatusUnauthorized, "session_invalid")
		}
		return
	}

	h.metrics.rotation("ok")
	h.issueCookies(w, issued)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:     issued.AccessToken,
		AccessExpiresAt: issued.AccessExpiresAt,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	secret, fromCookie := refreshSecretFromRequest(r, h.cfg)
	if fromCookie && !checkCSRF(r, h.cfg) {
		writeError(w, http.StatusForbidden, "csrf_mismatch")
		return
	}
	if secret != "" {
		if err := h.sessions.Logout(r.Context(), secret, h.now()); err != nil {
			h.log.Error("auth.logout_failed", "err", err)
			writeError(w, http.StatusServiceUnavailable, "service_unavailable")
			return
		}
	}
	clearRefreshCookie(w, h.cfg)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if err := h.sessions.LogoutAll(r.Context(), claims.UserID, h.now()); err != nil {
		h.log.Error("auth.logout_all_failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "service_unavailable")
		return
	}
	h.log.Info("auth.logout_all", "user_id", claims.UserID, "ip", clientIP(r))
	clearRefreshCookie(w, h.cfg)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	u, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if identity.IsNotFound(err) {
		writeError(w, http.StatusUnauthorized, "session_invalid")
		return
	}
	if err != nil {
		h.log.Error("auth.me_lookup_failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "service_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		UserID:      u.ID,
		Email:       u.Email,
		WebsiteRole: claims.WebsiteRole,
		OrgRoles:    claims.OrgRoles,
	})
}

// authenticate verifies the bearer access token and writes the 401
// itself on failure.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (session.AccessClaims, bool) {
	tok, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "token_invalid")
		return session.AccessClaims{}, false
	}
	claims, err := h.sessions.VerifyAccessToken(tok, h.now())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "token_invalid")
		return session.AccessClaims{}, false
	}
	return claims, true
}

// issueCookies sets the refresh and CSRF cookies for a freshly minted
// session.
func (h *Handler) issueCookies(w http.ResponseWriter, issued session.Issued) {
	setRefreshCookie(w, h.cfg, issued.RefreshSecret, issued.RefreshExpiresAt)
	if csrf, err := newCSRFToken(); err == nil {
		setCSRFCookie(w, h.cfg, csrf, issued.RefreshExpiresAt)
	} else {
		h.log.Error("auth.csrf_token_failed", "err", err)
	}
}

func (h *Handler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrStorageUnavailable), errors.Is(err, session.ErrSignerUnavailable):
		h.log.Error("auth.session_unavailable", "err", err)
		writeError(w, http.StatusServiceUnavailable, "service_unavailable")
	default:
		writeError(w, http.StatusUnauthorized, "session_invalid")
	}
}
