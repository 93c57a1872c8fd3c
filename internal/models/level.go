package models

import "time"

// NoLevel is the sentinel for users below the lowest configured threshold.
const NoLevel = -1

// LevelConfig is one admin-managed tier. The evaluator assumes XPRequired is
// monotonically increasing with LevelNumber; a misconfigured table produces
// undefined results and is the admin's problem, matching the original design.
type LevelConfig struct {
	ID              uint `gorm:"primarykey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LevelNumber     int    `gorm:"uniqueIndex;not null"`
	Name            string `gorm:"type:varchar(100);not null"`
	XPRequired      int64  `gorm:"not null"`
	DiscountPercent float64
	FreeShipping    bool
	EarlyAccess     bool
	Installments    bool
	SortOrder       int  `gorm:"default:0"`
	Active          bool `gorm:"default:true"`
}

func (LevelConfig) TableName() string {
	return "level_configs"
}

// UserLevelState is the materialized balance/level row, one per user. It is
// written only by the balance rebuild, never by award/deduct logic directly.
type UserLevelState struct {
	UserID       uint  `gorm:"primarykey"`
	CurrentLevel int   `gorm:"default:-1"`
	TotalXP      int64 `gorm:"default:0"`
	RollingXP    int64 `gorm:"default:0"`
	GraceUntil   *time.Time
	LastUpdate   time.Time
}

func (UserLevelState) TableName() string {
	return "user_level_states"
}

// InGrace reports whether the demotion protection window is still open.
func (s *UserLevelState) InGrace(now time.Time) bool {
	return s.GraceUntil != nil && !now.After(*s.GraceUntil)
}
