package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is the closed set of caller roles. Anything else is rejected at the
// validation boundary so the policy layer never sees an unknown role.
type Role string

const (
	RoleUser    Role = "user"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePremium, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Id                 string     `json:"id" gorm:"primaryKey;size:36"`
	Email              string     `json:"email" gorm:"unique;not null"`
	Password           []byte     `json:"-" gorm:"not null"`
	Role               Role       `json:"role" gorm:"size:16;not null;default:'user'"`
	IsPremium          bool       `json:"is_premium"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if user.Id == "" {
		user.Id = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

func (user *User) SetPassword(password string) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), 12)
	user.Password = hashedPassword
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}
