// Package server is the thin HTTP boundary over the auth service: it decodes
// JSON, builds the AuthContext from the bearer token, and maps typed auth
// errors to statuses. Cookie/CORS/CSRF policy belongs to the deployment's
// edge, not here.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fittrack/backend/internal/auth"
	"fittrack/backend/internal/logger"
	"fittrack/backend/internal/security"
)

// Server exposes the auth service over HTTP.
type Server struct {
	svc    *auth.Service
	tokens *security.TokenProvider
	log    *logger.Logger
}

// New returns an HTTP boundary over svc. tokens verifies bearer access tokens
// for the session-management endpoints.
func New(svc *auth.Service, tokens *security.TokenProvider, log *logger.Logger) *Server {
	return &Server{svc: svc, tokens: tokens, log: log}
}

// Register mounts all auth routes on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/verify-email", s.handleVerifyEmail)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("POST /auth/password-reset", s.handleResetRequest)
	mux.HandleFunc("POST /auth/password-reset/confirm", s.handleResetConfirm)
	mux.HandleFunc("GET /auth/sessions", s.requireAuth(s.handleListSessions))
	mux.HandleFunc("POST /auth/sessions/revoke", s.requireAuth(s.handleRevokeSessions))
}

// requireAuth verifies the bearer access token and constructs the AuthContext
// passed into the service. Identity is never read from the request elsewhere.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, auth.AuthContext)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeError(w, http.StatusUnauthorized, "AUTH_UNAUTHENTICATED", "missing bearer token")
			return
		}
		claims, err := s.tokens.VerifyAccess(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "AUTH_UNAUTHENTICATED", "invalid access token")
			return
		}
		next(w, r, auth.AuthContext{
			UserID:    claims.Subject,
			Role:      claims.Role,
			SessionID: claims.SessionID,
		})
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Username    string `json:"username"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.Register(r.Context(), auth.RegisterInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decode(w, r, &req) {
		return
	}
	user, err := s.svc.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.Login(r.Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: r.UserAgent(),
		IP:        clientIP(r),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse(res))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.Refresh(r.Context(), req.RefreshToken, r.UserAgent(), clientIP(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse(res))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.ContentLength > 0 && !decode(w, r, &req) {
		return
	}
	if err := s.svc.Logout(r.Context(), req.RefreshToken); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request, actx auth.AuthContext) {
	sessions, err := s.svc.ListSessions(r.Context(), actx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleRevokeSessions(w http.ResponseWriter, r *http.Request, actx auth.AuthContext) {
	var req struct {
		SessionID    string `json:"session_id"`
		RevokeAll    bool   `json:"revoke_all"`
		RevokeOthers bool   `json:"revoke_others"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.RevokeSessions(r.Context(), actx, auth.RevokeScope{
		SessionID: req.SessionID,
		All:       req.RevokeAll,
		Others:    req.RevokeOthers,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revoked": res.Revoked})
}

func loginResponse(res *auth.LoginResult) map[string]any {
	return map[string]any{
		"user":          res.User,
		"access_token":  res.Tokens.AccessToken,
		"refresh_token": res.Tokens.RefreshToken,
		"expires_at":    res.Tokens.AccessExpiresAt.Format(time.RFC3339),
		"session":       res.Session,
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		writeError(w, auth.HTTPStatus(err), string(authErr.Code), authErr.Message)
		return
	}
	if s.log != nil {
		s.log.Error("internal error", "error", err)
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "AUTH_INVALID_INPUT", "malformed request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		return host[:i]
	}
	return host
}
