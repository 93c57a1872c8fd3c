package services

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

// SweepGraceExpirations forces the demotion for users whose grace window
// lapsed without recovery, including users with no ledger activity since the
// window opened. Returns the number of demotions applied.
func SweepGraceExpirations() (int, error) {
	settings := loadSettings()
	levels, err := LoadLevelCache()
	if err != nil {
		return 0, err
	}
	now := timeNow()

	var states []models.UserLevelState
	if err := database.DB.
		Where("grace_until IS NOT NULL AND grace_until < ?", now).
		Find(&states).Error; err != nil {
		return 0, err
	}

	demoted := 0
	for _, st := range states {
		var result *RebuildResult
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			result, err = RebuildUserLevelState(tx, st.UserID, settings, levels)
			return err
		})
		if err != nil {
			zap.L().Error("grace sweep rebuild failed",
				zap.Uint("user_id", st.UserID), zap.Error(err))
			continue
		}

		invalidateBalanceCache(st.UserID)
		emitLevelEvents(st.UserID, result)
		if result.Event == models.EventLevelDown {
			demoted++
		}
	}

	return demoted, nil
}

// SweepBrokenStreaks zeroes streaks whose last activity fell outside the
// tolerance window, so inactive users do not resume a stale streak.
func SweepBrokenStreaks() (int, error) {
	settings := loadSettings()
	now := timeNow()

	// ISO dates compare lexicographically
	cutoff := dateIn(now.AddDate(0, 0, -settings.StreakTolerance), settings.Location)

	res := database.DB.Model(&models.StreakState{}).
		Where("current_streak > 0 AND last_activity_date <> '' AND last_activity_date < ?", cutoff).
		Updates(map[string]interface{}{
			"current_streak":  0,
			"streak_xp_today": 0,
			"updated_at":      now,
		})
	return int(res.RowsAffected), res.Error
}

// SweepExpiredXP deducts points earned before the configured horizon, net of
// what previous expiry runs already took. Monthly source refs keep the sweep
// idempotent per user per month. Disabled when no horizon is configured.
func SweepExpiredXP() (int, error) {
	settings := loadSettings()
	if settings.XPExpiryMonths <= 0 {
		return 0, nil
	}
	now := timeNow()
	cutoff := now.AddDate(0, -settings.XPExpiryMonths, 0)
	monthRef := now.In(settings.Location).Format("2006-01")

	type userSum struct {
		UserID uint
		Total  int64
	}

	var earned []userSum
	if err := database.DB.Model(&models.Transaction{}).
		Select("user_id, COALESCE(SUM(amount), 0) as total").
		Where("amount > 0 AND source <> ? AND created_at < ?", models.SourceXPExpiry, cutoff).
		Group("user_id").Scan(&earned).Error; err != nil {
		return 0, err
	}

	var expired []userSum
	if err := database.DB.Model(&models.Transaction{}).
		Select("user_id, COALESCE(SUM(-amount), 0) as total").
		Where("source = ?", models.SourceXPExpiry).
		Group("user_id").Scan(&expired).Error; err != nil {
		return 0, err
	}
	alreadyExpired := make(map[uint]int64, len(expired))
	for _, row := range expired {
		alreadyExpired[row.UserID] = row.Total
	}

	processed := 0
	for _, row := range earned {
		due := row.Total - alreadyExpired[row.UserID]
		if due <= 0 {
			continue
		}

		// never expire more than the user still holds
		var state models.UserLevelState
		if err := database.DB.First(&state, "user_id = ?", row.UserID).Error; err != nil {
			continue
		}
		if due > state.TotalXP {
			due = state.TotalXP
		}
		if due <= 0 {
			continue
		}

		_, err := Deduct(DeductRequest{
			UserID:    row.UserID,
			Amount:    due,
			Source:    models.SourceXPExpiry,
			SourceRef: monthRef,
			Note:      fmt.Sprintf("points older than %d months expired", settings.XPExpiryMonths),
			Operator:  "system",
			Kind:      SystemDeduct,
		})
		if err != nil {
			zap.L().Error("xp expiry deduct failed",
				zap.Uint("user_id", row.UserID), zap.Error(err))
			continue
		}
		processed++
	}

	return processed, nil
}

// InvalidateConfigCaches drops the shared level-config cache so admin edits
// made outside this process become visible.
func InvalidateConfigCaches() {
	InvalidateLevelCache()
}
