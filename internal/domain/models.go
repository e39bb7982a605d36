package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DocumentType identifies the kind of legal document attached to a person.
type DocumentType = string

const (
	DocumentIDCard      DocumentType = "ID_Card"
	DocumentForeignID   DocumentType = "Foreign_ID"
	DocumentPassport    DocumentType = "Passport"
	DocumentCitizenCard DocumentType = "Citizen_Card"
	DocumentTaxID       DocumentType = "Tax_ID"
)

// User is the aggregate root for authentication. The failed attempt counter
// and lock timestamp live on the row itself; lockout is derived, never stored
// as a flag.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr" json:"-"`

	ID             uuid.UUID    `bun:"id,pk,type:uuid" json:"id"`
	Email          string       `bun:"email,notnull,unique" json:"email"`
	FullName       string       `bun:"full_name" json:"full_name,omitempty"`
	DocumentType   DocumentType `bun:"document_type" json:"document_type,omitempty"`
	DocumentNumber string       `bun:"document_number" json:"document_number,omitempty"`
	Phone          string       `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash   string       `bun:"password_hash" json:"-"`
	Active         bool         `bun:"is_active" json:"is_active"`
	RoleID         *uuid.UUID   `bun:"role_id,nullzero,type:uuid" json:"role_id,omitempty"`
	Role           *Role        `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
	FailedAttempts int          `bun:"failed_attempts" json:"-"`
	LockUntil      *time.Time   `bun:"lock_until,nullzero" json:"-"`
	CreatedAt      time.Time    `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time    `bun:"updated_at,notnull" json:"updated_at"`
}

// Locked reports whether the account is under an active lockout at the given
// instant. Expired locks read as unlocked; clearing the row is lazy.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// Touch refreshes the update timestamp before a save.
func (u *User) Touch(now time.Time) {
	u.UpdatedAt = now
}

type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol" json:"-"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull,unique" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// Guardian is an adult responsible for one or more students.
type Guardian struct {
	bun.BaseModel `bun:"table:guardians,alias:grd" json:"-"`

	ID             uuid.UUID    `bun:"id,pk,type:uuid" json:"id"`
	FullName       string       `bun:"full_name,notnull" json:"full_name"`
	DocumentType   DocumentType `bun:"document_type" json:"document_type,omitempty"`
	DocumentNumber string       `bun:"document_number" json:"document_number,omitempty"`
	Phone          string       `bun:"phone_number" json:"phone_number,omitempty"`
	Email          string       `bun:"email" json:"email,omitempty"`
	Students       []*Student   `bun:"rel:has-many,join:id=guardian_id" json:"students,omitempty"`
	CreatedAt      time.Time    `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time    `bun:"updated_at,notnull" json:"updated_at"`
}

type Student struct {
	bun.BaseModel `bun:"table:students,alias:std" json:"-"`

	ID             uuid.UUID    `bun:"id,pk,type:uuid" json:"id"`
	FullName       string       `bun:"full_name,notnull" json:"full_name"`
	DocumentType   DocumentType `bun:"document_type" json:"document_type,omitempty"`
	DocumentNumber string       `bun:"document_number" json:"document_number,omitempty"`
	GuardianID     *uuid.UUID   `bun:"guardian_id,nullzero,type:uuid" json:"guardian_id,omitempty"`
	Guardian       *Guardian    `bun:"rel:belongs-to,join:guardian_id=id" json:"guardian,omitempty"`
	CreatedAt      time.Time    `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time    `bun:"updated_at,notnull" json:"updated_at"`
}

// RefreshToken records one issued refresh assertion. Rotation revokes the row
// and writes a new one; a revoked or expired row can never mint tokens again.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt" json:"-"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	JTI       string    `bun:"jti,notnull,unique" json:"jti"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Revoked   bool      `bun:"revoked" json:"revoked"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	ExpiresAt time.Time `bun:"expires_at,notnull" json:"expires_at"`
}

// Live reports whether the row can still be exchanged for a new pair.
func (t *RefreshToken) Live(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}
