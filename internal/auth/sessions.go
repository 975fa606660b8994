package auth

import (
	"context"

	auditdomain "fittrack/backend/internal/audit/domain"
)

// RevokeScope selects which of the caller's sessions to revoke. Exactly one
// of SessionID, All, or Others must be set; Others additionally requires the
// caller's current session id.
type RevokeScope struct {
	SessionID string
	All       bool
	Others    bool
}

// RevokeResult reports how many sessions were actually revoked. Revoking
// already-revoked sessions reports 0, not an error.
type RevokeResult struct {
	Revoked int64
}

// ListSessions returns all of the user's sessions with the one matching
// actx.SessionID flagged as current.
func (s *Service) ListSessions(ctx context.Context, actx AuthContext) ([]SessionMeta, error) {
	sessions, err := s.sessions.ListByUser(ctx, actx.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]SessionMeta, len(sessions))
	for i, sess := range sessions {
		out[i] = sessionMeta(sess, actx.SessionID)
	}
	return out, nil
}

// RevokeSessions revokes the caller's sessions per scope. Each revoked
// session also has its refresh records revoked. The operation is idempotent
// and audited with the count revoked.
func (s *Service) RevokeSessions(ctx context.Context, actx AuthContext, scope RevokeScope) (*RevokeResult, error) {
	selected := 0
	if scope.SessionID != "" {
		selected++
	}
	if scope.All {
		selected++
	}
	if scope.Others {
		selected++
	}
	if selected != 1 {
		return nil, ErrInvalidScope
	}
	if scope.Others && actx.SessionID == "" {
		return nil, ErrInvalidScope
	}

	var revoked int64
	var scopeName string
	switch {
	case scope.SessionID != "":
		scopeName = "session"
		sess, err := s.sessions.GetByID(ctx, scope.SessionID)
		if err != nil {
			return nil, err
		}
		// Sessions owned by other users are indistinguishable from missing ones.
		if sess == nil || sess.UserID != actx.UserID {
			return nil, ErrSessionNotFound
		}
		revoked, err = s.sessions.Revoke(ctx, scope.SessionID)
		if err != nil {
			return nil, err
		}
		if _, err := s.refreshTokens.RevokeBySession(ctx, scope.SessionID); err != nil {
			return nil, err
		}
	case scope.All:
		scopeName = "all"
		var err error
		revoked, err = s.sessions.RevokeAllByUser(ctx, actx.UserID)
		if err != nil {
			return nil, err
		}
		if _, err := s.refreshTokens.RevokeAllByUser(ctx, actx.UserID); err != nil {
			return nil, err
		}
	case scope.Others:
		scopeName = "others"
		sessions, err := s.sessions.ListByUser(ctx, actx.UserID)
		if err != nil {
			return nil, err
		}
		revoked, err = s.sessions.RevokeOthersByUser(ctx, actx.UserID, actx.SessionID)
		if err != nil {
			return nil, err
		}
		for _, sess := range sessions {
			if sess.ID == actx.SessionID {
				continue
			}
			if _, err := s.refreshTokens.RevokeBySession(ctx, sess.ID); err != nil {
				return nil, err
			}
		}
	}

	s.record(ctx, auditdomain.Event{
		ActorUserID: actx.UserID,
		Action:      ActionSessionsRevoke,
		Entity:      "session",
		EntityID:    scope.SessionID,
		Metadata:    metadataJSON(`{"scope":%q,"revoked":%d}`, scopeName, revoked),
	})
	return &RevokeResult{Revoked: revoked}, nil
}
