package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is the model for the 'users' table. Optional profile fields are
// pointers so they serialize as null rather than empty strings.
type User struct {
	ID           string `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`

	Phone      *string `json:"phone" db:"phone"`
	Address    *string `json:"address" db:"address"`
	City       *string `json:"city" db:"city"`
	State      *string `json:"state" db:"state"`
	PostalCode *string `json:"postal_code" db:"postal_code"`
	Country    string  `json:"country" db:"country"`

	IsAdmin  bool `json:"is_admin" db:"is_admin"`
	IsActive bool `json:"-" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// PublicProfile is the limited view returned for other users.
func (u *User) PublicProfile() map[string]any {
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"created_at": u.CreatedAt,
	}
}

// Password wraps bcrypt hashing for credential storage.
type Password struct {
	Hash string
}

func (p *Password) Set(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	return nil
}

func (p *Password) Matches(plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
