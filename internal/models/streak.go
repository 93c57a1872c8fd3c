package models

import "time"

// StreakState tracks consecutive qualifying days of activity, one row per
// user. LastActivityDate is a calendar date ("2006-01-02") in the configured
// loyalty time zone, so day math survives DST and server relocations.
type StreakState struct {
	UserID           uint `gorm:"primarykey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CurrentStreak    int    `gorm:"default:0"`
	MaxStreak        int    `gorm:"default:0"`
	LastActivityDate string `gorm:"type:varchar(10);default:''"`
	StreakXPToday    int64  `gorm:"default:0"`
}

func (StreakState) TableName() string {
	return "streak_states"
}
