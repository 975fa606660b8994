package domain

import (
	"errors"
	"time"
)

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	// UserStatusPendingVerification marks accounts created via registration
	// that have not verified their email yet.
	UserStatusPendingVerification UserStatus = "pending_verification"
	// UserStatusActive marks accounts allowed to log in.
	UserStatusActive UserStatus = "active"
	// UserStatusArchived marks accounts disabled by account management.
	UserStatusArchived UserStatus = "archived"
	// UserStatusPendingDeletion marks accounts scheduled for deletion.
	UserStatusPendingDeletion UserStatus = "pending_deletion"
)

// RoleMember is the default role assigned at registration.
const RoleMember = "member"

// ErrDuplicate reports that a user with the same email or username already
// exists. Repositories return it on unique-constraint violations.
var ErrDuplicate = errors.New("user: duplicate email or username")

// User is a credential record. PasswordHash never leaves this subsystem;
// other modules only see sanitized projections.
type User struct {
	ID           string
	Username     string
	Email        string
	DisplayName  string
	Role         string
	Status       UserStatus
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks required fields and status.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("user: id is required")
	}
	if u.Username == "" {
		return errors.New("user: username is required")
	}
	if u.Email == "" {
		return errors.New("user: email is required")
	}
	switch u.Status {
	case UserStatusPendingVerification, UserStatusActive, UserStatusArchived, UserStatusPendingDeletion:
		return nil
	default:
		return errors.New("user: invalid status")
	}
}
