package account

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Field length limits.
const (
	MaxEmailLength    = 254
	MaxFullNameLength = 100
	MinPasswordLength = 6
)

// Status constants for the users.status column.
const (
	StatusActive    = "Active"
	StatusNotActive = "notActive"
)

// bcryptCost is lowered in tests via SetBcryptCost.
var bcryptCost = 12

// Domain errors
var (
	ErrEmptyEmail       = errors.New("Email is required")
	ErrInvalidEmail     = errors.New("Invalid email format")
	ErrEmailTooLong     = errors.New("Email cannot exceed 254 characters")
	ErrEmptyFullName    = errors.New("Full name is required")
	ErrFullNameTooLong  = errors.New("Full name cannot exceed 100 characters")
	ErrInvalidRole      = errors.New("Invalid role")
	ErrInvalidStatus    = errors.New("Invalid status. Must be Active or notActive")
	ErrEmptyPassword    = errors.New("Password is required")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters")
	ErrWrongPassword    = errors.New("Invalid email or password")
	ErrNotFound         = errors.New("User not found")
	ErrEmailTaken       = errors.New("Email is already in use")
	ErrForbidden        = errors.New("Access denied")
)

// Account is a row of the users table.
type Account struct {
	ID           string     `json:"uid"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	PhoneNumber  string     `json:"phoneNumber"`
	Gender       string     `json:"gender"`
	DOB          string     `json:"dob"`
	Nationality  string     `json:"nationality"`
	NationalID   string     `json:"nationalID"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if err := ValidateEmail(a.Email); err != nil {
		return err
	}
	name := strings.TrimSpace(a.FullName)
	if name == "" {
		return ErrEmptyFullName
	}
	if len(name) > MaxFullNameLength {
		return ErrFullNameTooLong
	}
	if !IsValidRole(a.Role) {
		return ErrInvalidRole
	}
	if !IsValidStatus(a.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive reports whether the user may sign in.
// INVARIANT: Account fields are not mutated
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty and >= MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if err := ValidatePassword(plaintext); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// ValidateEmail checks presence, length and format of an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks presence and minimum length of a password.
func ValidatePassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// IsValidStatus reports whether s is a users.status value.
func IsValidStatus(s string) bool {
	return s == StatusActive || s == StatusNotActive
}

// SetBcryptCost overrides the hashing cost. Intended for tests.
func SetBcryptCost(cost int) {
	bcryptCost = cost
}
