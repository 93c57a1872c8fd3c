package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/config"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

// timeNow is swapped out by tests that need a fixed clock.
var timeNow = time.Now

// Effective XP basis for the level evaluator. Global switch, not per-user.
const (
	XPBasisTotal   = "total"
	XPBasisRolling = "rolling"
)

// LoyaltySettings is the per-operation snapshot of the engine configuration.
// It is loaded once at the top of an operation and passed down the call
// chain, never read ambiently mid-flight.
type LoyaltySettings struct {
	DailyCap          int64
	GraceDays         int
	XPBasis           string
	RollingWindowDays int
	Location          *time.Location
	XPExpiryMonths    int
	LedgerSecret      string

	StreakBaseXP     float64
	StreakMultiplier float64
	StreakMaxDay     int
	StreakTolerance  int
	StreakCycleReset bool
	BirthdayXP       int64
	AnniversaryXP    int64
}

func loadSettings() *LoyaltySettings {
	cfg, err := config.LoadConfig()
	if err != nil || cfg == nil {
		return &LoyaltySettings{
			XPBasis:          XPBasisTotal,
			GraceDays:        7,
			Location:         time.UTC,
			LedgerSecret:     "change-me",
			StreakBaseXP:     2,
			StreakMultiplier: 2,
			StreakMaxDay:     7,
			StreakTolerance:  1,
		}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}

	basis := cfg.XPBasis
	if basis != XPBasisRolling {
		basis = XPBasisTotal
	}

	return &LoyaltySettings{
		DailyCap:          cfg.DailyCap,
		GraceDays:         cfg.GraceDays,
		XPBasis:           basis,
		RollingWindowDays: cfg.RollingWindowDays,
		Location:          loc,
		XPExpiryMonths:    cfg.XPExpiryMonths,
		LedgerSecret:      cfg.LedgerSecret,

		StreakBaseXP:     cfg.StreakBaseXP,
		StreakMultiplier: cfg.StreakMultiplier,
		StreakMaxDay:     cfg.StreakMaxDay,
		StreakTolerance:  cfg.StreakToleranceDay,
		StreakCycleReset: cfg.StreakCycleReset,
		BirthdayXP:       cfg.BirthdayXP,
		AnniversaryXP:    cfg.AnniversaryXP,
	}
}

const dateLayout = "2006-01-02"

func dateIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// daysBetween returns the calendar-day distance from date a to date b.
func daysBetween(a, b string) int {
	ta, err := time.Parse(dateLayout, a)
	if err != nil {
		return 0
	}
	tb, err := time.Parse(dateLayout, b)
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// lockForUpdate takes a row-level lock on databases that support it. The
// sqlite test driver serializes writers inside a transaction anyway, so it
// gets no locking clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// claimKey atomically claims the (user, key) idempotency pair inside the
// caller's transaction. Returns false when the key was already held. This is
// a single conditional insert, never a read-then-write, so two concurrent
// identical requests cannot both win.
func claimKey(tx *gorm.DB, userID uint, key string) (bool, error) {
	rec := models.IdempotencyKey{UserID: userID, Key: key}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
