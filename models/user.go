// models/user.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity backs the identity gateway: one row per credential. It shares its
// primary key with the matching Profile but lives in its own table so that
// user creation can roll the credential back if the profile insert fails.
type Identity struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"-"`
	PhoneKey     string     `gorm:"size:20;uniqueIndex;not null" json:"-"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	BannedUntil  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

// Profile is the user record the application works with. Name and phone get
// copied onto visits and audit entries at write time; those copies are
// point-in-time snapshots and are never joined back to this table.
type Profile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Phone     string     `gorm:"size:15;uniqueIndex;not null" json:"phone"`
	Role      Role       `gorm:"size:30;not null" json:"role"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"-"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// PhoneKey normalizes a phone number into the identity lookup key: digits
// only, leading country code 91 stripped. Mirrors what the login form sends.
func PhoneKey(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return strings.TrimPrefix(b.String(), "91")
}
