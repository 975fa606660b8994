// Package auth composes the credential store, session registry, refresh-token
// store, one-time token issuer, token signer, and audit recorder into the
// register/login/refresh/logout/reset/session-management operations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"fittrack/backend/internal/audit"
	auditdomain "fittrack/backend/internal/audit/domain"
	onetimedomain "fittrack/backend/internal/onetime/domain"
	refreshdomain "fittrack/backend/internal/refreshtoken/domain"
	"fittrack/backend/internal/security"
	sessiondomain "fittrack/backend/internal/session/domain"
	userdomain "fittrack/backend/internal/user/domain"
)

// Audit actions emitted by the service.
const (
	ActionRegister              = "auth.register"
	ActionVerifyEmail           = "auth.verify_email"
	ActionLogin                 = "auth.login"
	ActionLoginFailure          = "auth.login_failure"
	ActionRefresh               = "auth.refresh"
	ActionRefreshReuse          = "auth.refresh_reuse"
	ActionRefreshSessionMismatch = "auth.refresh_session_mismatch"
	ActionLogout                = "auth.logout"
	ActionPasswordResetRequest  = "auth.password_reset_request"
	ActionPasswordReset         = "auth.password_reset"
	ActionSessionsRevoke        = "auth.sessions_revoke"
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	UpdateStatus(ctx context.Context, id string, status userdomain.UserStatus) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) (int64, error)
	RevokeAllByUser(ctx context.Context, userID string) (int64, error)
	RevokeOthersByUser(ctx context.Context, userID, keepID string) (int64, error)
	Touch(ctx context.Context, id string, expiresAt, lastActiveAt time.Time, userAgent, ip string) error
}

// RefreshTokenRepo is the minimal refresh-token repository needed by the auth service.
type RefreshTokenRepo interface {
	Create(ctx context.Context, rec *refreshdomain.Record) error
	GetActiveByHash(ctx context.Context, tokenHash string) (*refreshdomain.Record, error)
	GetByHash(ctx context.Context, tokenHash string) (*refreshdomain.Record, error)
	Consume(ctx context.Context, tokenHash string) (bool, error)
	Revoke(ctx context.Context, id string) error
	RevokeBySession(ctx context.Context, sessionID string) (int64, error)
	RevokeAllByUser(ctx context.Context, userID string) (int64, error)
}

// OneTimeTokenRepo is the minimal one-time token repository needed by the auth service.
type OneTimeTokenRepo interface {
	Create(ctx context.Context, t *onetimedomain.Token) error
	GetActiveByTypeHash(ctx context.Context, tokenType onetimedomain.TokenType, tokenHash string) (*onetimedomain.Token, error)
	Consume(ctx context.Context, id string) error
	ConsumeOthers(ctx context.Context, userID string, tokenType onetimedomain.TokenType, keepID string) (int64, error)
	CountCreatedSince(ctx context.Context, userID string, tokenType onetimedomain.TokenType, since time.Time) (int64, error)
	PurgeOlderThan(ctx context.Context, userID string, tokenType onetimedomain.TokenType, cutoff time.Time) error
}

// Options carries the tunables of the auth service.
type Options struct {
	VerifyTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	ResendWindow   time.Duration
	ResendLimit    int64
	TokenRetention time.Duration
	// ReturnRawTokens returns raw one-time tokens in results instead of
	// delivering them out of band. Never enable in production.
	ReturnRawTokens bool
}

// Service implements the authentication and session lifecycle operations.
// It is stateless between calls; all durable state lives in the repositories.
type Service struct {
	users         UserRepo
	sessions      SessionRepo
	refreshTokens RefreshTokenRepo
	oneTimeTokens OneTimeTokenRepo
	hasher        *security.Hasher
	tokens        *security.TokenProvider
	recorder      audit.Recorder
	limiter       RateLimiter
	opts          Options
}

// NewService returns a Service with the given dependencies. recorder and
// limiter may be nil (no auditing / no limiting).
func NewService(
	users UserRepo,
	sessions SessionRepo,
	refreshTokens RefreshTokenRepo,
	oneTimeTokens OneTimeTokenRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	recorder audit.Recorder,
	limiter RateLimiter,
	opts Options,
) *Service {
	if opts.VerifyTokenTTL <= 0 {
		opts.VerifyTokenTTL = 24 * time.Hour
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = time.Hour
	}
	if opts.ResendWindow <= 0 {
		opts.ResendWindow = time.Hour
	}
	if opts.ResendLimit <= 0 {
		opts.ResendLimit = 3
	}
	if opts.TokenRetention <= 0 {
		opts.TokenRetention = 720 * time.Hour
	}
	return &Service{
		users:         users,
		sessions:      sessions,
		refreshTokens: refreshTokens,
		oneTimeTokens: oneTimeTokens,
		hasher:        hasher,
		tokens:        tokens,
		recorder:      recorder,
		limiter:       limiter,
		opts:          opts,
	}
}

// UserInfo is the sanitized user projection returned to callers. It never
// carries the password hash.
type UserInfo struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
	Role        string
	Status      userdomain.UserStatus
}

func sanitizeUser(u *userdomain.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Status:      u.Status,
	}
}

// SessionMeta describes a session in operation results.
type SessionMeta struct {
	ID           string
	UserAgent    string
	IP           string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	LastActiveAt *time.Time
	Revoked      bool
	IsCurrent    bool
}

// TokenPair is a freshly issued access/refresh token pair with expiry metadata.
// Cookie attributes are the transport layer's concern.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RegisterInput is the registration request.
type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	DisplayName string
}

// RegisterResult is the registration outcome. VerificationToken is only set
// when the service is configured to return raw tokens (non-production).
type RegisterResult struct {
	User              UserInfo
	VerificationToken string
	// Resent is true when the email already had a pending account and a fresh
	// verification token was issued instead of creating a duplicate.
	Resent bool
}

// LoginInput is the login request. UserAgent and IP are recorded as session
// device metadata.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IP        string
}

// LoginResult is the outcome of Login and Refresh.
type LoginResult struct {
	User    UserInfo
	Tokens  TokenPair
	Session SessionMeta
}

// ResetRequestResult is the outcome of RequestPasswordReset. ResetToken is
// only set when the service returns raw tokens and the account exists; the
// public contract is identical either way.
type ResetRequestResult struct {
	ResetToken string
}

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{2,31}$`)
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a pending_verification account and issues an email
// verification token, or re-issues a verification token when the email
// already belongs to a pending account. Conflicts with any other account
// state fail with AUTH_CONFLICT.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidInput
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidInput
	}
	if err := AssertPasswordPolicy(in.Password, PasswordIdentifiers{Username: username, Email: email}); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status != userdomain.UserStatusPendingVerification {
			return nil, ErrConflict
		}
		// Same email, still unverified: treat as a resend instead of a duplicate.
		raw, err := s.issueOneTime(ctx, existing.ID, onetimedomain.TypeEmailVerification, s.opts.VerifyTokenTTL)
		if err != nil {
			return nil, err
		}
		s.record(ctx, auditdomain.Event{
			ActorUserID: existing.ID, Action: ActionRegister, Entity: "user",
			EntityID: existing.ID, Metadata: `{"resend":true}`,
		})
		res := &RegisterResult{User: sanitizeUser(existing), Resent: true}
		if s.opts.ReturnRawTokens {
			res.VerificationToken = raw
		}
		return res, nil
	}

	byName, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if byName != nil {
		return nil, ErrConflict
	}

	hashed, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Role:         userdomain.RoleMember,
		Status:       userdomain.UserStatusPendingVerification,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can win the insert between the lookups
		// above and here; the unique constraint is the authority.
		if errors.Is(err, userdomain.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	raw, err := s.issueOneTime(ctx, user.ID, onetimedomain.TypeEmailVerification, s.opts.VerifyTokenTTL)
	if err != nil {
		return nil, err
	}
	s.record(ctx, auditdomain.Event{
		ActorUserID: user.ID, Action: ActionRegister, Entity: "user", EntityID: user.ID,
	})
	res := &RegisterResult{User: sanitizeUser(user)}
	if s.opts.ReturnRawTokens {
		res.VerificationToken = raw
	}
	return res, nil
}

// VerifyEmail consumes an email verification token and activates the account.
// Expired tokens are consumed as a side effect so they cannot be retried.
// Any other outstanding verification tokens for the user are invalidated.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) (*UserInfo, error) {
	tok, err := s.resolveOneTime(ctx, onetimedomain.TypeEmailVerification, rawToken)
	if err != nil {
		return nil, err
	}
	if err := s.oneTimeTokens.Consume(ctx, tok.ID); err != nil {
		return nil, err
	}
	if _, err := s.oneTimeTokens.ConsumeOthers(ctx, tok.UserID, onetimedomain.TypeEmailVerification, tok.ID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateStatus(ctx, tok.UserID, userdomain.UserStatusActive); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, tok.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	s.record(ctx, auditdomain.Event{
		ActorUserID: user.ID, Action: ActionVerifyEmail, Entity: "user", EntityID: user.ID,
	})
	info := sanitizeUser(user)
	return &info, nil
}

// Login authenticates email/password, creates a session with a fresh refresh
// record, and returns the sanitized user, token pair, and session metadata.
// Missing accounts and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, "login:"+email) {
		return nil, ErrTooManyRequests
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		s.record(ctx, auditdomain.Event{
			Action: ActionLoginFailure, Entity: "user", Outcome: auditdomain.OutcomeFailure,
		})
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(in.Password)); err != nil {
		s.record(ctx, auditdomain.Event{
			ActorUserID: user.ID, Action: ActionLoginFailure, Entity: "user",
			EntityID: user.ID, Outcome: auditdomain.OutcomeFailure,
		})
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	sid := uuid.New().String()
	refreshToken, _, refreshExp, err := s.tokens.IssueRefresh(user.ID, sid)
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:        sid,
		UserID:    user.ID,
		UserAgent: in.UserAgent,
		IP:        in.IP,
		ExpiresAt: refreshExp,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.refreshTokens.Create(ctx, &refreshdomain.Record{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		SessionID: sid,
		TokenHash: security.HashToken(refreshToken),
		ExpiresAt: refreshExp,
		CreatedAt: now,
	}); err != nil {
		// No refresh record means the session just created can never be
		// used; revoke it rather than leave it live and orphaned.
		_, _ = s.sessions.Revoke(ctx, sid)
		return nil, err
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(user.ID, user.Role, sid)
	if err != nil {
		return nil, err
	}
	s.record(ctx, auditdomain.Event{
		ActorUserID: user.ID, Action: ActionLogin, Entity: "session", EntityID: sid,
	})
	return &LoginResult{
		User: sanitizeUser(user),
		Tokens: TokenPair{
			AccessToken:      accessToken,
			AccessExpiresAt:  accessExp,
			RefreshToken:     refreshToken,
			RefreshExpiresAt: refreshExp,
		},
		Session: sessionMeta(sess, sid),
	}, nil
}

// Refresh rotates a refresh token. Replay of an already-rotated token burns
// the whole session; concurrent refreshes of the same token produce exactly
// one winner, decided by the store's atomic consume.
func (s *Service) Refresh(ctx context.Context, refreshToken, userAgent, ip string) (*LoginResult, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	hash := security.HashToken(refreshToken)

	rec, err := s.refreshTokens.GetActiveByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, s.handleMissingRefresh(ctx, hash)
	}
	if rec.SessionID != claims.SessionID {
		_ = s.refreshTokens.Revoke(ctx, rec.ID)
		s.record(ctx, auditdomain.Event{
			ActorUserID: rec.UserID, Action: ActionRefreshSessionMismatch, Entity: "session",
			EntityID: rec.SessionID, Outcome: auditdomain.OutcomeFailure,
		})
		return nil, ErrInvalidRefresh
	}

	sess, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID != claims.Subject || sess.UserID != rec.UserID {
		_ = s.refreshTokens.Revoke(ctx, rec.ID)
		return nil, ErrInvalidRefresh
	}
	if sess.Revoked() {
		_ = s.refreshTokens.Revoke(ctx, rec.ID)
		return nil, ErrSessionRevoked
	}
	now := time.Now().UTC()
	if rec.Expired(now) || sess.Expired(now) {
		_ = s.refreshTokens.Revoke(ctx, rec.ID)
		_, _ = s.sessions.Revoke(ctx, sess.ID)
		return nil, ErrRefreshExpired
	}

	// The conditional consume is the winner/loser arbiter for concurrent
	// refreshes of the same token. The loser falls into the replay path.
	consumed, err := s.refreshTokens.Consume(ctx, hash)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, s.handleMissingRefresh(ctx, hash)
	}

	newRefresh, _, refreshExp, err := s.tokens.IssueRefresh(sess.UserID, sess.ID)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokens.Create(ctx, &refreshdomain.Record{
		ID:        uuid.New().String(),
		UserID:    sess.UserID,
		SessionID: sess.ID,
		TokenHash: security.HashToken(newRefresh),
		ExpiresAt: refreshExp,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	// Session expiry always covers the newest refresh token's expiry.
	if err := s.sessions.Touch(ctx, sess.ID, refreshExp, now, userAgent, ip); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRefresh
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(user.ID, user.Role, sess.ID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, auditdomain.Event{
		ActorUserID: user.ID, Action: ActionRefresh, Entity: "session", EntityID: sess.ID,
	})
	sess.ExpiresAt = refreshExp
	sess.LastActiveAt = &now
	sess.UserAgent = userAgent
	sess.IP = ip
	return &LoginResult{
		User: sanitizeUser(user),
		Tokens: TokenPair{
			AccessToken:      accessToken,
			AccessExpiresAt:  accessExp,
			RefreshToken:     newRefresh,
			RefreshExpiresAt: refreshExp,
		},
		Session: sessionMeta(sess, sess.ID),
	}, nil
}

// handleMissingRefresh decides between "fabricated token" and "replayed
// token". A hash present anywhere in history means the token was issued and
// already rotated away: evidence of theft, so the whole session is burned.
// A hash with no history has no session to escalate against and fails plain.
func (s *Service) handleMissingRefresh(ctx context.Context, hash string) error {
	hist, err := s.refreshTokens.GetByHash(ctx, hash)
	if err != nil {
		return err
	}
	if hist == nil {
		return ErrInvalidRefresh
	}
	if _, err := s.sessions.Revoke(ctx, hist.SessionID); err != nil {
		return err
	}
	if _, err := s.refreshTokens.RevokeBySession(ctx, hist.SessionID); err != nil {
		return err
	}
	s.record(ctx, auditdomain.Event{
		ActorUserID: hist.UserID, Action: ActionRefreshReuse, Entity: "session",
		EntityID: hist.SessionID, Outcome: auditdomain.OutcomeFailure,
	})
	return ErrInvalidRefresh
}

// Logout revokes the refresh record and session for the presented token. It
// is idempotent and forgiving: an absent token is a no-op, a garbled token
// still revokes by hash and succeeds, and an audit entry is emitted either way.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, decodeErr := s.tokens.VerifyRefresh(refreshToken)

	hash := security.HashToken(refreshToken)
	if _, err := s.refreshTokens.Consume(ctx, hash); err != nil {
		return err
	}
	if decodeErr == nil {
		if _, err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
			return err
		}
		if _, err := s.refreshTokens.RevokeBySession(ctx, claims.SessionID); err != nil {
			return err
		}
		s.record(ctx, auditdomain.Event{
			ActorUserID: claims.Subject, Action: ActionLogout, Entity: "session", EntityID: claims.SessionID,
		})
		return nil
	}
	// Undecodable token: still audited, with no actor or session attached.
	s.record(ctx, auditdomain.Event{Action: ActionLogout, Entity: "session"})
	return nil
}

// RequestPasswordReset issues a password-reset token for an active account.
// Whether the account exists is never revealed: missing or inactive accounts
// return the same empty success.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error) {
	email = normalizeEmail(email)
	if s.limiter != nil && !s.limiter.Allow(ctx, "reset:"+email) {
		return nil, ErrTooManyRequests
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		return &ResetRequestResult{}, nil
	}
	raw, err := s.issueOneTime(ctx, user.ID, onetimedomain.TypePasswordReset, s.opts.ResetTokenTTL)
	if err != nil {
		return nil, err
	}
	s.record(ctx, auditdomain.Event{
		ActorUserID: user.ID, Action: ActionPasswordResetRequest, Entity: "user", EntityID: user.ID,
	})
	res := &ResetRequestResult{}
	if s.opts.ReturnRawTokens {
		res.ResetToken = raw
	}
	return res, nil
}

// ResetPassword consumes a reset token, replaces the password, and forces
// logout of every device by revoking all sessions and refresh records.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	tok, err := s.resolveOneTime(ctx, onetimedomain.TypePasswordReset, rawToken)
	if err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, tok.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidToken
	}
	if err := AssertPasswordPolicy(newPassword, PasswordIdentifiers{Username: user.Username, Email: user.Email}); err != nil {
		return err
	}
	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hashed); err != nil {
		return err
	}
	if err := s.oneTimeTokens.Consume(ctx, tok.ID); err != nil {
		return err
	}
	if _, err := s.oneTimeTokens.ConsumeOthers(ctx, user.ID, onetimedomain.TypePasswordReset, tok.ID); err != nil {
		return err
	}
	// Mandatory: a reset invalidates every device's session.
	if _, err := s.refreshTokens.RevokeAllByUser(ctx, user.ID); err != nil {
		return err
	}
	if _, err := s.sessions.RevokeAllByUser(ctx, user.ID); err != nil {
		return err
	}
	s.record(ctx, auditdomain.Event{
		ActorUserID: user.ID, Action: ActionPasswordReset, Entity: "user", EntityID: user.ID,
	})
	return nil
}

// issueOneTime purges old tokens, enforces the resend throttle, mints a new
// token, and invalidates older outstanding issuances of the same type.
// Returns the raw token for out-of-band delivery.
func (s *Service) issueOneTime(ctx context.Context, userID string, tokenType onetimedomain.TokenType, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	if err := s.oneTimeTokens.PurgeOlderThan(ctx, userID, tokenType, now.Add(-s.opts.TokenRetention)); err != nil {
		return "", err
	}
	n, err := s.oneTimeTokens.CountCreatedSince(ctx, userID, tokenType, now.Add(-s.opts.ResendWindow))
	if err != nil {
		return "", err
	}
	if n >= s.opts.ResendLimit {
		return "", ErrTooManyRequests
	}
	raw, err := security.NewOneTimeToken()
	if err != nil {
		return "", err
	}
	tok := &onetimedomain.Token{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      tokenType,
		TokenHash: security.HashToken(raw),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.oneTimeTokens.Create(ctx, tok); err != nil {
		return "", err
	}
	// Only the newest issuance stays valid.
	if _, err := s.oneTimeTokens.ConsumeOthers(ctx, userID, tokenType, tok.ID); err != nil {
		return "", err
	}
	return raw, nil
}

// resolveOneTime looks up an unconsumed token by hash and checks expiry.
// Expired tokens are consumed on sight so they cannot feed retry storms.
func (s *Service) resolveOneTime(ctx context.Context, tokenType onetimedomain.TokenType, rawToken string) (*onetimedomain.Token, error) {
	if rawToken == "" {
		return nil, ErrInvalidToken
	}
	tok, err := s.oneTimeTokens.GetActiveByTypeHash(ctx, tokenType, security.HashToken(rawToken))
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrInvalidToken
	}
	if tok.Expired(time.Now().UTC()) {
		_ = s.oneTimeTokens.Consume(ctx, tok.ID)
		return nil, ErrInvalidToken
	}
	return tok, nil
}

func (s *Service) record(ctx context.Context, e auditdomain.Event) {
	if s.recorder != nil {
		s.recorder.Record(ctx, e)
	}
}

func sessionMeta(sess *sessiondomain.Session, currentSID string) SessionMeta {
	return SessionMeta{
		ID:           sess.ID,
		UserAgent:    sess.UserAgent,
		IP:           sess.IP,
		CreatedAt:    sess.CreatedAt,
		ExpiresAt:    sess.ExpiresAt,
		LastActiveAt: sess.LastActiveAt,
		Revoked:      sess.Revoked(),
		IsCurrent:    sess.ID == currentSID,
	}
}

func metadataJSON(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
