package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserStatus is the account standing
type UserStatus = string

const (
	// UserStatusActive accounts can authenticate
	UserStatusActive UserStatus = "active"
	// UserStatusInactive accounts are disabled by an admin or never activated
	UserStatusInactive UserStatus = "inactive"
	// UserStatusSuspended accounts are blocked pending review
	UserStatusSuspended UserStatus = "suspended"
)

// User is the account model.
//
// Soft deletion is tracked with an explicit is_deleted column rather
// than bun's soft_delete tag: lookups must still return deleted rows
// so callers can reject them explicitly.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	Department    string     `bun:"department" json:"department,omitempty"`
	Position      string     `bun:"position" json:"position,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Status        UserStatus `bun:"status,notnull" json:"status,omitempty"`
	LoginAttempts int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LockoutEnd    *time.Time `bun:"lockout_end,nullzero" json:"lockout_end,omitempty"`
	LastLoginAt   *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	IsDeleted     bool       `bun:"is_deleted" json:"is_deleted,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureStatus backfills the zero value so records predating the
// status column behave as active
func (u *User) EnsureStatus() {
	if u == nil {
		return
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// FullName joins the profile name parts
func (u *User) FullName() string {
	switch {
	case u == nil:
		return ""
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// IsValidStatus checks a raw status string against the known set
func IsValidStatus(status UserStatus) bool {
	switch status {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	default:
		return false
	}
}

func statusAuthError(status UserStatus) error {
	switch status {
	case UserStatusActive, "":
		return nil
	default:
		return ErrAccountNotActive
	}
}

// UserProjection is the read only view of an account handed back to
// callers. It never carries the password hash or lockout counters.
type UserProjection struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone_number,omitempty"`
	Department  string     `json:"department,omitempty"`
	Position    string     `json:"position,omitempty"`
	Role        UserRole   `json:"user_role"`
	Status      UserStatus `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// NewUserProjection builds the projection for a user record
func NewUserProjection(u *User) *UserProjection {
	if u == nil {
		return nil
	}
	return &UserProjection{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Department:  u.Department,
		Position:    u.Position,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
