package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultProjectColor = "#4F46E5"

type Project struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	Color       string    `gorm:"type:varchar(7);not null;default:'#4F46E5'"`
	CreatedByID uint      `gorm:"not null;index"`
	CreatedBy   User      `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnDelete:CASCADE"`
	Members     []User    `gorm:"many2many:project_members;constraint:OnDelete:CASCADE"`
	Tasks       []Task    `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// HasMember reports whether userID is listed among the loaded members.
func (p Project) HasMember(userID uint) bool {
	for _, member := range p.Members {
		if member.ID == userID {
			return true
		}
	}
	return false
}

// ProjectMember is the join row behind Project.Members.
type ProjectMember struct {
	ProjectID uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey;index"`
}

// SetupJoinTables registers the explicit join models. It must run on every
// new *gorm.DB before migrations or association queries.
func SetupJoinTables(db *gorm.DB) error {
	return db.SetupJoinTable(&Project{}, "Members", &ProjectMember{})
}
