package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

func TestGetBalance(t *testing.T) {
	setupTestDB(t)
	seedLevels(t)
	user := seedUser(t, "balanced")

	_, err := Award(AwardRequest{UserID: user.ID, Amount: 600, Source: "order", SourceRef: "b1"})
	assert.NoError(t, err)

	summary, err := GetBalance(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(600), summary.TotalXP)
	assert.Equal(t, 2, summary.Level)
	assert.Equal(t, "Silver", summary.LevelName)
	assert.Equal(t, 3.0, summary.Benefits.DiscountPercent)
	assert.False(t, summary.Benefits.FreeShipping)
}

func TestGetBalanceUnknownUser(t *testing.T) {
	setupTestDB(t)

	_, err := GetBalance(999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetBalanceNoActivity(t *testing.T) {
	setupTestDB(t)
	seedLevels(t)
	user := seedUser(t, "dormant")

	summary, err := GetBalance(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalXP)
	assert.Equal(t, models.NoLevel, summary.Level)
	assert.Equal(t, "", summary.LevelName)
}

func TestGetBalanceCaches(t *testing.T) {
	setupTestDB(t)
	mr := setupTestRedis(t)
	seedLevels(t)
	user := seedUser(t, "cached")

	_, err := Award(AwardRequest{UserID: user.ID, Amount: 150, Source: "order", SourceRef: "c1"})
	assert.NoError(t, err)

	summary, err := GetBalance(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(150), summary.TotalXP)
	assert.True(t, mr.Exists(balanceCacheKey(user.ID)))

	// a new award drops the display cache
	_, err = Award(AwardRequest{UserID: user.ID, Amount: 50, Source: "order", SourceRef: "c2"})
	assert.NoError(t, err)
	assert.False(t, mr.Exists(balanceCacheKey(user.ID)))

	summary, err = GetBalance(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(200), summary.TotalXP)
}

func TestRollingBasisLevels(t *testing.T) {
	t.Setenv("LOYALTY_XP_BASIS", "rolling")
	t.Setenv("LOYALTY_ROLLING_WINDOW_DAYS", "30")
	t.Setenv("LOYALTY_GRACE_DAYS", "0")
	setupTestDB(t)
	seedLevels(t)
	user := seedUser(t, "roller")

	// 500 earned well outside the window, 150 inside
	clock := setClock(t, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	_, err := Award(AwardRequest{UserID: user.ID, Amount: 500, Source: "order", SourceRef: "old"})
	assert.NoError(t, err)

	*clock = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	_, err = Award(AwardRequest{UserID: user.ID, Amount: 150, Source: "order", SourceRef: "new"})
	assert.NoError(t, err)

	state := userState(t, user.ID)
	assert.Equal(t, int64(650), state.TotalXP)
	assert.Equal(t, int64(150), state.RollingXP)
	// the rolling basis, not the lifetime total, drives the level
	assert.Equal(t, 1, state.CurrentLevel)
}

func TestRebuildFromEmptyLedger(t *testing.T) {
	setupTestDB(t)
	seedLevels(t)
	user := seedUser(t, "fresh")

	// a deduct for a user with no state row and no prior activity
	_, err := Deduct(DeductRequest{UserID: user.ID, Amount: 10, Source: "reward", Kind: SpendDeduct})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}
