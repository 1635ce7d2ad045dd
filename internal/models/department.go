package models

import "time"

type Department struct {
	ID          uint          `gorm:"primaryKey"`
	Name        string        `gorm:"type:varchar(200);not null"`
	Description string        `gorm:"type:text;not null;default:''"`
	Employees   []UserProfile `gorm:"foreignKey:DepartmentID;references:ID;constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
