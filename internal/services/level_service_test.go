package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

func TestCalculateLevel(t *testing.T) {
	cache := &LevelCache{Configs: []models.LevelConfig{
		{LevelNumber: 1, XPRequired: 100},
		{LevelNumber: 2, XPRequired: 500},
		{LevelNumber: 3, XPRequired: 2000},
	}}

	tests := []struct {
		xp   int64
		want int
	}{
		{0, models.NoLevel},
		{99, models.NoLevel},
		{100, 1},
		{499, 1},
		{500, 2},
		{1999, 2},
		{2000, 3},
		{50000, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cache.CalculateLevel(tt.xp), "xp=%d", tt.xp)
	}
}

func TestCalculateLevelEmptyTable(t *testing.T) {
	cache := &LevelCache{}
	assert.Equal(t, models.NoLevel, cache.CalculateLevel(1000000))
}

func TestLevelConfigCRUD(t *testing.T) {
	setupTestDB(t)

	lc := &models.LevelConfig{LevelNumber: 1, Name: "Bronze", XPRequired: 100, Active: true}
	assert.NoError(t, CreateLevelConfig(lc))

	dup := &models.LevelConfig{LevelNumber: 1, Name: "Copper", XPRequired: 50, Active: true}
	assert.ErrorIs(t, CreateLevelConfig(dup), ErrLevelExists)

	updated, err := UpdateLevelConfig(1, map[string]interface{}{"xp_required": int64(150)})
	assert.NoError(t, err)
	assert.NotNil(t, updated)

	configs, err := ListLevelConfigs()
	assert.NoError(t, err)
	assert.Len(t, configs, 1)
	assert.Equal(t, int64(150), configs[0].XPRequired)

	assert.NoError(t, DeleteLevelConfig(1))
	assert.ErrorIs(t, DeleteLevelConfig(1), ErrLevelNotFound)

	_, err = UpdateLevelConfig(1, map[string]interface{}{"name": "Gone"})
	assert.ErrorIs(t, err, ErrLevelNotFound)
}

func TestLoadLevelCacheSkipsInactive(t *testing.T) {
	setupTestDB(t)
	seedLevels(t)

	_, err := UpdateLevelConfig(4, map[string]interface{}{"active": false})
	assert.NoError(t, err)

	cache, err := LoadLevelCache()
	assert.NoError(t, err)
	assert.Len(t, cache.Configs, 3)
	assert.Equal(t, 3, cache.CalculateLevel(50000))
}

func TestLoadLevelCacheUsesRedis(t *testing.T) {
	setupTestDB(t)
	mr := setupTestRedis(t)
	seedLevels(t)

	cache, err := LoadLevelCache()
	assert.NoError(t, err)
	assert.Len(t, cache.Configs, 4)
	assert.True(t, mr.Exists(levelCacheKey))

	// admin writes drop the shared copy
	assert.NoError(t, DeleteLevelConfig(4))
	assert.False(t, mr.Exists(levelCacheKey))

	cache, err = LoadLevelCache()
	assert.NoError(t, err)
	assert.Len(t, cache.Configs, 3)
}

func TestResolveBenefits(t *testing.T) {
	cache := &LevelCache{Configs: []models.LevelConfig{
		{LevelNumber: 1, XPRequired: 100, DiscountPercent: 0},
		{LevelNumber: 2, XPRequired: 500, DiscountPercent: 3, FreeShipping: true},
	}}

	benefits := ResolveBenefits(2, cache)
	assert.Equal(t, 3.0, benefits.DiscountPercent)
	assert.Equal(t, "level", benefits.DiscountSource)
	assert.True(t, benefits.FreeShipping)

	benefits = ResolveBenefits(models.NoLevel, cache)
	assert.Equal(t, 0.0, benefits.DiscountPercent)
	assert.False(t, benefits.FreeShipping)
}

func TestBenefitDiscountAppliedOnce(t *testing.T) {
	ResetBenefitResolvers()
	defer ResetBenefitResolvers()

	cache := &LevelCache{Configs: []models.LevelConfig{
		{LevelNumber: 2, XPRequired: 500, DiscountPercent: 3},
	}}

	// a later resolver offering a bigger discount must not stack or override
	RegisterBenefitResolver(func(ctx *BenefitContext) {
		if !ctx.DiscountApplied {
			ctx.Summary.DiscountPercent = 20
			ctx.Summary.DiscountSource = "promo"
			ctx.DiscountApplied = true
		}
	})

	benefits := ResolveBenefits(2, cache)
	assert.Equal(t, 3.0, benefits.DiscountPercent)
	assert.Equal(t, "level", benefits.DiscountSource)

	// with no level discount the extra resolver wins
	benefits = ResolveBenefits(models.NoLevel, cache)
	assert.Equal(t, 20.0, benefits.DiscountPercent)
	assert.Equal(t, "promo", benefits.DiscountSource)
}
