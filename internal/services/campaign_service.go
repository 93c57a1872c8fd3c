package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

var (
	ErrCampaignMultiplier = errors.New("campaign multiplier must be at least 0.1")
	ErrCampaignWindow     = errors.New("campaign end must be after start")
	ErrNoCampaign         = errors.New("no campaign configured")
)

// CampaignSnapshot is the per-operation view of the multiplier window.
// Award paths receive the snapshot as a value; nothing reads campaign state
// ambiently mid-operation.
type CampaignSnapshot struct {
	Active     bool
	Multiplier float64
	Label      string
}

// SetCampaign validates and installs the global multiplier window,
// replacing any previous one.
func SetCampaign(multiplier float64, label string, startsAt, endsAt time.Time) (*models.Campaign, error) {
	if multiplier < 0.1 {
		return nil, ErrCampaignMultiplier
	}
	if !endsAt.After(startsAt) {
		return nil, ErrCampaignWindow
	}

	campaign := models.Campaign{
		ID:         models.CampaignRowID,
		Multiplier: multiplier,
		Label:      label,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	}

	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&campaign).Error; err != nil {
		return nil, err
	}

	PublishEvent(models.EventCampaignSet, 0, map[string]interface{}{
		"multiplier": multiplier,
		"label":      label,
		"starts_at":  startsAt,
		"ends_at":    endsAt,
	})

	return &campaign, nil
}

// ClearCampaign removes the multiplier window. Clearing when none exists is
// a no-op.
func ClearCampaign() error {
	res := database.DB.Delete(&models.Campaign{}, models.CampaignRowID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		PublishEvent(models.EventCampaignCleared, 0, nil)
	}
	return nil
}

// GetCampaign returns the configured window regardless of whether it is
// currently active.
func GetCampaign() (*models.Campaign, error) {
	var campaign models.Campaign
	if err := database.DB.First(&campaign, models.CampaignRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCampaign
		}
		return nil, err
	}
	return &campaign, nil
}

// SnapshotCampaign evaluates the window lazily at award time. Outside the
// window (or with no campaign at all) the multiplier is silently 1.0.
func SnapshotCampaign(now time.Time) CampaignSnapshot {
	campaign, err := GetCampaign()
	if err != nil || !campaign.ActiveAt(now) {
		return CampaignSnapshot{Multiplier: 1.0}
	}
	return CampaignSnapshot{
		Active:     true,
		Multiplier: campaign.Multiplier,
		Label:      campaign.Label,
	}
}
