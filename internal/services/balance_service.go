package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

// RebuildResult reports what the rebuild did to the materialized row.
type RebuildResult struct {
	State     models.UserLevelState
	PrevLevel int
	Event     string
}

// RebuildUserLevelState recomputes the materialized balance/level row from
// the ledger inside the caller's transaction. This is the only writer of
// UserLevelState; award/deduct logic never touches the row directly.
func RebuildUserLevelState(tx *gorm.DB, userID uint, settings *LoyaltySettings, levels *LevelCache) (*RebuildResult, error) {
	now := timeNow()

	var state models.UserLevelState
	err := lockForUpdate(tx).First(&state, "user_id = ?", userID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		state = models.UserLevelState{UserID: userID, CurrentLevel: models.NoLevel}
	}

	var total int64
	if err := tx.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return nil, err
	}

	rolling := total
	if settings.XPBasis == XPBasisRolling {
		since := now.AddDate(0, 0, -settings.RollingWindowDays)
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND created_at >= ?", userID, since).
			Select("COALESCE(SUM(amount), 0)").Scan(&rolling).Error; err != nil {
			return nil, err
		}
	}

	effective := total
	if settings.XPBasis == XPBasisRolling {
		effective = rolling
	}

	computed := levels.CalculateLevel(effective)
	change := ResolveLevelChange(state.CurrentLevel, state.GraceUntil, computed, now, settings.GraceDays)

	prev := state.CurrentLevel
	state.CurrentLevel = change.Level
	state.GraceUntil = change.GraceUntil
	state.TotalXP = total
	state.RollingXP = rolling
	state.LastUpdate = now

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&state).Error; err != nil {
		return nil, err
	}

	return &RebuildResult{State: state, PrevLevel: prev, Event: change.Event}, nil
}

// emitLevelEvents publishes the level transition produced by a committed
// rebuild. Call after the transaction commits, never inside it.
func emitLevelEvents(userID uint, res *RebuildResult) {
	if res == nil || res.Event == "" {
		return
	}
	switch res.Event {
	case models.EventLevelUp:
		PublishEvent(models.EventLevelUp, userID, map[string]interface{}{
			"from": res.PrevLevel,
			"to":   res.State.CurrentLevel,
		})
	case models.EventGraceStarted:
		payload := map[string]interface{}{
			"protected_level": res.State.CurrentLevel,
		}
		if res.State.GraceUntil != nil {
			payload["expires_at"] = res.State.GraceUntil
		}
		PublishEvent(models.EventGraceStarted, userID, payload)
	case models.EventLevelDown:
		PublishEvent(models.EventLevelDown, userID, map[string]interface{}{
			"from": res.PrevLevel,
			"to":   res.State.CurrentLevel,
		})
	}
}

// BalanceSummary is the display read for level/benefit surfaces.
type BalanceSummary struct {
	UserID     uint           `json:"user_id"`
	TotalXP    int64          `json:"total_xp"`
	RollingXP  int64          `json:"rolling_xp"`
	Level      int            `json:"level"`
	LevelName  string         `json:"level_name,omitempty"`
	GraceUntil *time.Time     `json:"grace_until,omitempty"`
	Benefits   BenefitSummary `json:"benefits"`
}

func balanceCacheKey(userID uint) string {
	return fmt.Sprintf("loyalty:balance:%d", userID)
}

func invalidateBalanceCache(userID uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, balanceCacheKey(userID))
	}
}

// GetBalance serves the display summary from a short-TTL cache. The
// award/deduct path never reads this; it always recomputes from the ledger.
func GetBalance(userID uint) (*BalanceSummary, error) {
	cacheKey := balanceCacheKey(userID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var summary BalanceSummary
			if err := json.Unmarshal([]byte(val), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	if _, err := FindUserByID(userID); err != nil {
		return nil, err
	}

	var state models.UserLevelState
	err := database.DB.First(&state, "user_id = ?", userID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		state = models.UserLevelState{UserID: userID, CurrentLevel: models.NoLevel}
	}

	levels, err := LoadLevelCache()
	if err != nil {
		return nil, err
	}

	summary := &BalanceSummary{
		UserID:     userID,
		TotalXP:    state.TotalXP,
		RollingXP:  state.RollingXP,
		Level:      state.CurrentLevel,
		GraceUntil: state.GraceUntil,
		Benefits:   ResolveBenefits(state.CurrentLevel, levels),
	}
	if lc := levels.Config(state.CurrentLevel); lc != nil {
		summary.LevelName = lc.Name
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(summary); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, 30*time.Second)
		}
	}

	return summary, nil
}
