package models

import "time"

// User is the local mirror of a customer account. Identity is owned by the
// storefront; the engine only needs it for auth, calendar bonuses and the
// self-referential abuse checks.
type User struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"index"`
	Password     string `gorm:"not null"`
	Role         string `gorm:"not null;default:'user'"`
	IsActive     bool   `gorm:"default:true"`
	RegisteredAt time.Time
	BirthDate    *time.Time
	Version      int `gorm:"default:1"`
}
