package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleInvestor = "INVESTOR"
	RoleStartup  = "STARTUP"
	RoleAdmin    = "ADMIN"
)

type User struct {
	gorm.Model
	Email         string `gorm:"uniqueIndex;not null"`
	Password      string `gorm:"not null"`
	Name          string `gorm:"not null"`
	Role          string `gorm:"not null;index"`
	Headline      string
	Bio           string
	Categories    StringList `gorm:"type:text"`
	ActivityScore int        `gorm:"default:0"`
	Status        string     `gorm:"default:'active'"`
	LastLoginAt   time.Time
	TokenVersion  int `gorm:"default:1"`
}

// OppositeRole returns the role a user swipes on. Investors see startups
// and startups see investors; admins have no candidate pool.
func OppositeRole(role string) string {
	switch role {
	case RoleInvestor:
		return RoleStartup
	case RoleStartup:
		return RoleInvestor
	default:
		return ""
	}
}

// PublicProfile is the subset of a user exposed to other users,
// e.g. inside match results and candidate stacks.
type PublicProfile struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Headline      string   `json:"headline"`
	Categories    []string `json:"categories"`
	ActivityScore int      `json:"activity_score"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:            u.ID,
		Name:          u.Name,
		Role:          u.Role,
		Headline:      u.Headline,
		Categories:    u.Categories,
		ActivityScore: u.ActivityScore,
	}
}
