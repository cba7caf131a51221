package entity

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyName     = errors.New("name must not be empty")
	ErrEmptyEmail    = errors.New("email must not be empty")
	ErrEmptyPassword = errors.New("password must not be empty")
)

// User is the aggregate root for the user domain.
// PasswordHash holds a bcrypt hash; the plaintext never reaches the entity.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser validates and constructs a User. Emails are normalized to
// lowercase so that uniqueness is case-insensitive end to end.
// CreatedAt and UpdatedAt start out equal.
func NewUser(name, email, passwordHash string) (*User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if err := validate(name, email, passwordHash); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdateProfile mutates name and email, re-stamping UpdatedAt.
// ID and CreatedAt never change after construction.
func (u *User) UpdateProfile(name, email string) error {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" {
		return ErrEmptyName
	}
	if email == "" {
		return ErrEmptyEmail
	}
	u.Name = name
	u.Email = email
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangePassword swaps the stored hash, re-stamping UpdatedAt.
func (u *User) ChangePassword(passwordHash string) error {
	if strings.TrimSpace(passwordHash) == "" {
		return ErrEmptyPassword
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// NormalizeEmail applies the canonical email form used for storage and
// lookups: trimmed and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validate(name, email, passwordHash string) error {
	if name == "" {
		return ErrEmptyName
	}
	if email == "" {
		return ErrEmptyEmail
	}
	if strings.TrimSpace(passwordHash) == "" {
		return ErrEmptyPassword
	}
	return nil
}
