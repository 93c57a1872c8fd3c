package models

import "time"

// AbuseCounter accumulates per-user anomaly flags for external moderation
// tooling. Daily-earned XP is derived from the ledger on demand, not stored.
type AbuseCounter struct {
	UserID         uint `gorm:"primarykey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SuspicionCount int    `gorm:"default:0"`
	LastFlagReason string `gorm:"type:varchar(255)"`
	LastFlaggedAt  *time.Time
}

func (AbuseCounter) TableName() string {
	return "abuse_counters"
}
