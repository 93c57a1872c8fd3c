package models

import "time"

// CampaignRowID pins the campaign to a single row; there is at most one
// multiplier window at a time.
const CampaignRowID = 1

// Campaign is the global time-windowed XP multiplier. Outside the window the
// effective multiplier is 1.0; the row's value is never read ambiently but
// snapshotted once per award.
type Campaign struct {
	ID         uint `gorm:"primarykey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Multiplier float64 `gorm:"not null"`
	Label      string  `gorm:"type:varchar(100)"`
	StartsAt   time.Time
	EndsAt     time.Time
}

func (Campaign) TableName() string {
	return "campaigns"
}

// ActiveAt reports whether the window covers the given instant.
func (c *Campaign) ActiveAt(now time.Time) bool {
	return !now.Before(c.StartsAt) && !now.After(c.EndsAt)
}
