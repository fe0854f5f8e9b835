package models

import (
	"strings"
	"time"
)

// Account roles. RoleMember is the default; RoleAdmin is only reachable
// through the privileged-name allowlist at registration or an explicit
// role grant by an existing admin.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Account represents a registered user. PasswordHash is persisted by the
// stores but must never appear in a response; handlers only ever serialize
// the Profile and Summary views below.
type Account struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	FullName     string    `json:"fullName" gorm:"size:64;not null"`
	Email        string    `json:"email" gorm:"size:128;not null;index"`
	Phone        string    `json:"phone" gorm:"size:32"`
	Location     string    `json:"location" gorm:"size:128"`
	AvatarURL    string    `json:"avatarUrl" gorm:"size:512"`
	Role         string    `json:"role" gorm:"size:16;not null;default:member"`
	MemberSince  string    `json:"memberSince" gorm:"size:7"` // YYYY-MM, fixed at creation
	PasswordHash string    `json:"passwordHash" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the sanitized account view returned to its owner.
type Profile struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	AvatarURL   string `json:"avatarUrl"`
	Role        string `json:"role"`
	MemberSince string `json:"memberSince"`
}

// Summary is the public directory view: no role, no contact info.
type Summary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (a *Account) Profile() Profile {
	return Profile{
		ID:          a.ID,
		FullName:    a.FullName,
		Email:       a.Email,
		Phone:       a.Phone,
		Location:    a.Location,
		AvatarURL:   a.AvatarURL,
		Role:        a.Role,
		MemberSince: a.MemberSince,
	}
}

func (a *Account) Summary() Summary {
	return Summary{
		ID:       a.ID,
		FullName: a.FullName,
		Email:    a.Email,
	}
}

// Normalize returns the case-folded, whitespace-trimmed form used for all
// identity comparisons (emails and full names).
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
