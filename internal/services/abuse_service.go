package services

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

var (
	ErrSelfAction   = errors.New("actor and beneficiary must be different accounts")
	ErrSharedOrigin = errors.New("actor and beneficiary share a network origin")
)

// Domains too common to mean anything when shared between two accounts.
var genericEmailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"live.com":       true,
	"icloud.com":     true,
	"aol.com":        true,
	"proton.me":      true,
	"protonmail.com": true,
	"mail.ru":        true,
	"qq.com":         true,
	"163.com":        true,
}

// Actor identifies who triggered an award on someone else's behalf, e.g. the
// referrer behind a referral bonus. Collaborators that act for the
// beneficiary themselves pass nil.
type Actor struct {
	UserID uint
	IP     string
	Email  string
}

// EarnedToday sums positive ledger amounts since local midnight. Derived on
// demand; never stored.
func EarnedToday(db *gorm.DB, userID uint, settings *LoyaltySettings, now time.Time) (int64, error) {
	var earned int64
	err := db.Model(&models.Transaction{}).
		Where("user_id = ? AND amount > 0 AND created_at >= ?", userID, startOfDay(now, settings.Location)).
		Select("COALESCE(SUM(amount), 0)").Scan(&earned).Error
	return earned, err
}

// ClampToDailyAllowance reduces the requested amount to what is left of the
// user's daily cap. Clamp-to-zero is a valid, silent outcome; a non-positive
// cap means unlimited.
func ClampToDailyAllowance(db *gorm.DB, userID uint, amount int64, settings *LoyaltySettings, now time.Time) (int64, error) {
	if settings.DailyCap <= 0 {
		return amount, nil
	}

	earned, err := EarnedToday(db, userID, settings, now)
	if err != nil {
		return 0, err
	}

	remaining := settings.DailyCap - earned
	if remaining < 0 {
		remaining = 0
	}
	if amount > remaining {
		amount = remaining
	}
	return amount, nil
}

// CheckActor enforces the self-referential rules: same account or same
// network origin hard-blocks, a shared non-generic email domain only flags.
func CheckActor(beneficiary models.User, beneficiaryIP string, actor *Actor) error {
	if actor == nil {
		return nil
	}

	if actor.UserID != 0 && actor.UserID == beneficiary.ID {
		FlagSuspicion(beneficiary.ID, "self_action")
		return ErrSelfAction
	}

	if actor.IP != "" && beneficiaryIP != "" && actor.IP == beneficiaryIP {
		FlagSuspicion(beneficiary.ID, "shared_origin")
		return ErrSharedOrigin
	}

	if d := emailDomain(actor.Email); d != "" && d == emailDomain(beneficiary.Email) && !genericEmailDomains[d] {
		zap.L().Warn("actor and beneficiary share an email domain",
			zap.Uint("beneficiary_id", beneficiary.ID),
			zap.Uint("actor_id", actor.UserID),
			zap.String("domain", d))
		FlagSuspicion(beneficiary.ID, "shared_email_domain")
	}

	return nil
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// FlagSuspicion bumps the per-user anomaly counter and notifies moderation
// tooling. Counter failures are logged, not surfaced; flagging must never
// fail the triggering operation.
func FlagSuspicion(userID uint, reason string) {
	now := timeNow()
	counter := models.AbuseCounter{
		UserID:         userID,
		SuspicionCount: 1,
		LastFlagReason: reason,
		LastFlaggedAt:  &now,
	}

	err := database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"suspicion_count":  gorm.Expr("suspicion_count + 1"),
			"last_flag_reason": reason,
			"last_flagged_at":  now,
			"updated_at":       now,
		}),
	}).Create(&counter).Error
	if err != nil {
		zap.L().Error("failed to record suspicion flag",
			zap.Uint("user_id", userID), zap.Error(err))
	}

	PublishEvent(models.EventSuspiciousActivity, userID, map[string]interface{}{
		"reason": reason,
	})
}

// GetAbuseCounter returns the per-user counter, zero-valued when the user
// was never flagged.
func GetAbuseCounter(userID uint) (*models.AbuseCounter, error) {
	var counter models.AbuseCounter
	err := database.DB.First(&counter, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.AbuseCounter{UserID: userID}, nil
		}
		return nil, err
	}
	return &counter, nil
}
