package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User maps to the users table. PasswordHash never leaves the package.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Age          *int      `db:"age" json:"age,omitempty"`
	Gender       *int      `db:"gender" json:"gender,omitempty"`
	HeightCm     *float64  `db:"height_cm" json:"height_cm,omitempty"`
	WeightKg     *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile carries the mutable demographic fields. A nil field means "leave
// unchanged" on update.
type Profile struct {
	Age      *int     `json:"age,omitempty"`
	Gender   *int     `json:"gender,omitempty"`
	HeightCm *float64 `json:"height_cm,omitempty"`
	WeightKg *float64 `json:"weight_kg,omitempty"`
}

// Validate enforces physiological bounds on whichever fields are set.
func (p *Profile) Validate() error {
	if p.Age != nil && (*p.Age < 0 || *p.Age > 120) {
		return fmt.Errorf("age must be between 0 and 120")
	}
	// NHANES coding: 1 male, 2 female.
	if p.Gender != nil && (*p.Gender < 1 || *p.Gender > 2) {
		return fmt.Errorf("gender must be 1 or 2")
	}
	if p.HeightCm != nil && (*p.HeightCm <= 0 || *p.HeightCm > 300) {
		return fmt.Errorf("height_cm must be positive and at most 300")
	}
	if p.WeightKg != nil && (*p.WeightKg <= 0 || *p.WeightKg > 500) {
		return fmt.Errorf("weight_kg must be positive and at most 500")
	}
	return nil
}

// Apply copies set fields onto the user.
func (p *Profile) Apply(u *User) {
	if p.Age != nil {
		u.Age = p.Age
	}
	if p.Gender != nil {
		u.Gender = p.Gender
	}
	if p.HeightCm != nil {
		u.HeightCm = p.HeightCm
	}
	if p.WeightKg != nil {
		u.WeightKg = p.WeightKg
	}
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
