// Package audit records security-relevant side effects. Writes are
// best-effort: failures are logged and never surface to the caller, so a
// broken audit store cannot block logins or refreshes.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fittrack/backend/internal/audit/domain"
	auditrepo "fittrack/backend/internal/audit/repository"
	"fittrack/backend/internal/logger"
)

// recordTimeout is the max time allowed for a single async audit write.
const recordTimeout = 5 * time.Second

// Recorder appends a single audit event. Record never returns an error and
// never blocks the caller beyond queueing the write.
type Recorder interface {
	Record(ctx context.Context, e domain.Event)
}

// StoreRecorder implements Recorder over the audit repository.
type StoreRecorder struct {
	repo auditrepo.Repository
	log  *logger.Logger
}

// NewStoreRecorder returns a Recorder that persists to repo and logs write
// failures via log. repo may be nil; then Record is a no-op.
func NewStoreRecorder(repo auditrepo.Repository, log *logger.Logger) *StoreRecorder {
	return &StoreRecorder{repo: repo, log: log}
}

// Record fills in id/outcome/timestamp defaults and writes the event in a
// goroutine. The write uses a detached context so request cancellation does
// not abort an in-flight append.
func (r *StoreRecorder) Record(ctx context.Context, e domain.Event) {
	if r == nil || r.repo == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Outcome == "" {
		e.Outcome = domain.OutcomeSuccess
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	go func() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
		if err := r.repo.Create(writeCtx, &e); err != nil && r.log != nil {
			r.log.Error("audit write failed", "action", e.Action, "entity", e.Entity, "error", err)
		}
	}()
}
