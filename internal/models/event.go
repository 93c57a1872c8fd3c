package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event names emitted by the engine.
const (
	EventXPAwarded          = "xp_awarded"
	EventXPDeducted         = "xp_deducted"
	EventLevelUp            = "level_up"
	EventLevelDown          = "level_down"
	EventGraceStarted       = "grace_started"
	EventSuspiciousActivity = "suspicious_activity_detected"
	EventCampaignSet        = "campaign_set"
	EventCampaignCleared    = "campaign_cleared"
)

// EventRecord is the persisted mirror of every published event, kept for
// audit and for notification collaborators that poll instead of subscribing.
type EventRecord struct {
	ID        string    `gorm:"type:varchar(36);primarykey"`
	CreatedAt time.Time `gorm:"index"`
	Name      string    `gorm:"type:varchar(64);not null;index"`
	UserID    uint      `gorm:"index"`
	Payload   datatypes.JSON
}

func (EventRecord) TableName() string {
	return "event_records"
}
