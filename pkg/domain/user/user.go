package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/utils"
	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when a user cannot be found in the
	// repository.
	ErrUserNotFound = fmt.Errorf("%w: user not found", domain.ErrNotFound)
	// ErrUserUnauthorized is returned when credentials do not match.
	ErrUserUnauthorized = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	// ErrEmailAlreadyRegistered is returned on duplicate registration.
	ErrEmailAlreadyRegistered = fmt.Errorf("%w: email already registered", domain.ErrConflict)
	// ErrPasswordTooLong is returned when the password exceeds what bcrypt accepts.
	ErrPasswordTooLong = fmt.Errorf("%w: password too long", domain.ErrInvalidArgument)
	// ErrInactive is returned when a deactivated user tries to act.
	ErrInactive = fmt.Errorf("%w: user is inactive", domain.ErrForbidden)
)

// KYCStatus is the identity verification state mirrored on the user.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCInReview KYCStatus = "in_review"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

// Role is the authorization role carried in the session token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user in the system.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone,omitempty"`
	HashedPassword string    `json:"-"`
	KYCStatus      KYCStatus `json:"kyc_status"`
	Role           Role      `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// New creates a new User with a hashed password, pending KYC and the default
// role.
func New(email, password, fullName, phone string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.IsEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, fmt.Errorf("%w: full name cannot be empty", domain.ErrInvalidArgument)
	}
	if len(password) > utils.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:             uuid.New(),
		Email:          email,
		FullName:       strings.TrimSpace(fullName),
		Phone:          phone,
		HashedPassword: hashedPassword,
		KYCStatus:      KYCPending,
		Role:           RoleUser,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanIssueCards reports whether the KYC gate for card issuance is open.
func (u *User) CanIssueCards() bool {
	return u.KYCStatus == KYCApproved
}
