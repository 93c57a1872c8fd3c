package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

// ActivityResult reports what a daily activity touch did.
type ActivityResult struct {
	Counted      bool     `json:"counted"` // false when today was already recorded
	Streak       int      `json:"streak"`
	MaxStreak    int      `json:"max_streak"`
	BonusXP      int64    `json:"bonus_xp"`
	ExtraBonuses []string `json:"extra_bonuses,omitempty"`
}

// RecordActivity advances the per-user daily streak machine and awards the
// streak bonus through the ledger. At most one increment per calendar day in
// the configured time zone; the ledger's own idempotency key (source_ref =
// the date) backs it up against concurrent touches.
func RecordActivity(userID uint) (*ActivityResult, error) {
	user, err := FindUserByID(userID)
	if err != nil {
		return nil, err
	}

	settings := loadSettings()
	now := timeNow()
	today := dateIn(now, settings.Location)

	res := &ActivityResult{}
	var state models.StreakState
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).First(&state, "user_id = ?", userID).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			state = models.StreakState{UserID: userID}
		}

		if state.LastActivityDate == today {
			return nil // already counted
		}

		switch {
		case state.LastActivityDate == "" || state.CurrentStreak == 0:
			state.CurrentStreak = 1
		case daysBetween(state.LastActivityDate, today) <= settings.StreakTolerance:
			state.CurrentStreak++
		default:
			state.CurrentStreak = 1
		}

		if settings.StreakCycleReset && settings.StreakMaxDay > 0 &&
			state.CurrentStreak > settings.StreakMaxDay {
			// new cycle; MaxStreak keeps the historical record
			state.CurrentStreak = 1
		}

		if state.CurrentStreak > state.MaxStreak {
			state.MaxStreak = state.CurrentStreak
		}

		bonus := StreakBonus(state.CurrentStreak, settings.StreakBaseXP,
			settings.StreakMultiplier, settings.StreakMaxDay)

		state.LastActivityDate = today
		state.StreakXPToday = bonus

		res.Counted = true
		res.Streak = state.CurrentStreak
		res.MaxStreak = state.MaxStreak
		res.BonusXP = bonus

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(&state).Error
	})
	if err != nil {
		return nil, err
	}

	if !res.Counted {
		res.Streak = state.CurrentStreak
		res.MaxStreak = state.MaxStreak
		return res, nil
	}

	if res.BonusXP > 0 {
		awarded, err := Award(AwardRequest{
			UserID:    userID,
			Amount:    res.BonusXP,
			Source:    models.SourceStreak,
			SourceRef: today,
			Note:      fmt.Sprintf("day %d streak bonus", res.Streak),
			Operator:  "system",
		})
		if err != nil {
			zap.L().Warn("streak bonus award failed",
				zap.Uint("user_id", userID), zap.Error(err))
		}
		res.BonusXP = awarded
	}

	grantCalendarBonuses(user, settings, now, res)

	return res, nil
}

// StreakBonus is the exponential daily bonus. Growth stops once the streak
// reaches maxDay: day maxDay and beyond pay the same as the last growth day.
func StreakBonus(day int, base, multiplier float64, maxDay int) int64 {
	if day < 1 {
		day = 1
	}
	if maxDay > 1 && day >= maxDay {
		day = maxDay - 1
	}
	return int64(math.Round(base * math.Pow(multiplier, float64(day-1))))
}

// GetStreak returns the streak row, zero-valued for users with no activity.
func GetStreak(userID uint) (*models.StreakState, error) {
	var state models.StreakState
	err := database.DB.First(&state, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.StreakState{UserID: userID}, nil
		}
		return nil, err
	}
	return &state, nil
}

// grantCalendarBonuses evaluates the one-time yearly bonuses on every
// qualifying activity. The per-user-per-year idempotency key makes repeated
// triggers within the same year no-ops.
func grantCalendarBonuses(user models.User, settings *LoyaltySettings, now time.Time, res *ActivityResult) {
	local := now.In(settings.Location)

	if settings.BirthdayXP > 0 && user.BirthDate != nil {
		b := *user.BirthDate
		if b.Month() == local.Month() && b.Day() == local.Day() {
			if grantAnnualBonus(user.ID, models.SourceBirthday, local.Year(), settings.BirthdayXP) {
				res.ExtraBonuses = append(res.ExtraBonuses, models.SourceBirthday)
			}
		}
	}

	if settings.AnniversaryXP > 0 && !user.RegisteredAt.IsZero() {
		r := user.RegisteredAt.In(settings.Location)
		if r.Month() == local.Month() && r.Day() == local.Day() && r.Year() < local.Year() {
			if grantAnnualBonus(user.ID, models.SourceAnniversary, local.Year(), settings.AnniversaryXP) {
				res.ExtraBonuses = append(res.ExtraBonuses, models.SourceAnniversary)
			}
		}
	}
}

// grantAnnualBonus claims the awarded:{source}:{year} flag and, on first
// claim of the year, pushes the bonus through the ledger.
func grantAnnualBonus(userID uint, source string, year int, amount int64) bool {
	key := fmt.Sprintf("awarded:%s:%d", source, year)

	claimed := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := claimKey(tx, userID, key)
		claimed = ok
		return err
	})
	if err != nil {
		zap.L().Error("annual bonus claim failed",
			zap.Uint("user_id", userID), zap.String("source", source), zap.Error(err))
		return false
	}
	if !claimed {
		return false
	}

	if _, err := Award(AwardRequest{
		UserID:    userID,
		Amount:    amount,
		Source:    source,
		SourceRef: strconv.Itoa(year),
		Note:      fmt.Sprintf("%s bonus %d", source, year),
		Operator:  "system",
	}); err != nil {
		zap.L().Warn("annual bonus award failed",
			zap.Uint("user_id", userID), zap.String("source", source), zap.Error(err))
		return false
	}
	return true
}
