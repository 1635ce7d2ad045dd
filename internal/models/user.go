package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleTeamLead Role = "team_lead"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

var Roles = []Role{RoleEmployee, RoleTeamLead, RoleManager, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleTeamLead, RoleManager, RoleAdmin:
		return true
	}
	return false
}

func (r Role) Label() string {
	switch r {
	case RoleEmployee:
		return "Employee"
	case RoleTeamLead:
		return "Team lead"
	case RoleManager:
		return "Manager"
	case RoleAdmin:
		return "Administrator"
	}
	return string(r)
}

const DefaultAvatarColor = "#6366f1"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(254);not null;default:'';index"`
	FirstName    string `gorm:"type:varchar(150);not null;default:''"`
	LastName     string `gorm:"type:varchar(150);not null;default:''"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	IsSuperuser  bool   `gorm:"not null;default:false"`
	LastLogin    *time.Time
	DateJoined   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
	Profile      UserProfile `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// FullName mirrors how the account is addressed in listings.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

func (u User) Initials() string {
	if u.FirstName != "" && u.LastName != "" {
		first, _ := utf8.DecodeRuneInString(u.FirstName)
		last, _ := utf8.DecodeRuneInString(u.LastName)
		return string(first) + string(last)
	}
	runes := []rune(u.Username)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

type UserProfile struct {
	ID           uint        `gorm:"primaryKey"`
	UserID       uint        `gorm:"not null;uniqueIndex"`
	DepartmentID *uint       `gorm:"index"`
	Department   *Department `gorm:"foreignKey:DepartmentID;references:ID"`
	Position     string      `gorm:"type:varchar(200);not null;default:''"`
	Role         Role        `gorm:"type:varchar(20);not null;default:'employee'"`
	Phone        string      `gorm:"type:varchar(20);not null;default:''"`
	AvatarColor  string      `gorm:"type:varchar(7);not null;default:'#6366f1'"`
}
