package models

import "time"

type Session struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"type:varchar(36);not null;uniqueIndex"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&Department{},
		&User{},
		&UserProfile{},
		&Project{},
		&Task{},
		&TaskComment{},
		&Session{},
	}
}
