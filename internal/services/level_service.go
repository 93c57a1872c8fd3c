package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

var (
	ErrLevelExists   = errors.New("level number already exists")
	ErrLevelNotFound = errors.New("level not found")
)

const levelCacheKey = "loyalty:levels"

// LevelCache is the request-scoped snapshot of the tier table, sorted
// ascending by level number. It is constructed once per operation and passed
// down the call chain; nothing memoizes it in package state.
type LevelCache struct {
	Configs []models.LevelConfig
}

// LoadLevelCache reads the active tier table, preferring the shared redis
// copy. The cached copy is display-grade; admin writes invalidate it.
func LoadLevelCache() (*LevelCache, error) {
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, levelCacheKey).Result()
		if err == nil {
			var configs []models.LevelConfig
			if err := json.Unmarshal([]byte(val), &configs); err == nil {
				return &LevelCache{Configs: configs}, nil
			}
		}
	}

	var configs []models.LevelConfig
	if err := database.DB.Where("active = ?", true).
		Order("level_number asc").Find(&configs).Error; err != nil {
		return nil, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(configs); err == nil {
			database.RedisClient.Set(database.Ctx, levelCacheKey, data, 5*time.Minute)
		}
	}

	return &LevelCache{Configs: configs}, nil
}

// CalculateLevel returns the greatest level whose threshold is at or below
// the given XP, or NoLevel when none qualify. Assumes thresholds are
// monotonic in level number.
func (c *LevelCache) CalculateLevel(xp int64) int {
	level := models.NoLevel
	for _, lc := range c.Configs {
		if lc.XPRequired <= xp {
			level = lc.LevelNumber
		}
	}
	return level
}

// Config returns the tier definition for a level number, or nil.
func (c *LevelCache) Config(level int) *models.LevelConfig {
	for i := range c.Configs {
		if c.Configs[i].LevelNumber == level {
			return &c.Configs[i]
		}
	}
	return nil
}

func InvalidateLevelCache() {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, levelCacheKey)
	}
}

func CreateLevelConfig(lc *models.LevelConfig) error {
	var existing models.LevelConfig
	err := database.DB.Where("level_number = ?", lc.LevelNumber).First(&existing).Error
	if err == nil {
		return ErrLevelExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := database.DB.Create(lc).Error; err != nil {
		return err
	}
	InvalidateLevelCache()
	return nil
}

func UpdateLevelConfig(levelNumber int, updates map[string]interface{}) (*models.LevelConfig, error) {
	var lc models.LevelConfig
	if err := database.DB.Where("level_number = ?", levelNumber).First(&lc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLevelNotFound
		}
		return nil, err
	}

	if err := database.DB.Model(&lc).Updates(updates).Error; err != nil {
		return nil, err
	}
	InvalidateLevelCache()
	return &lc, nil
}

func DeleteLevelConfig(levelNumber int) error {
	res := database.DB.Where("level_number = ?", levelNumber).Delete(&models.LevelConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLevelNotFound
	}
	InvalidateLevelCache()
	return nil
}

func ListLevelConfigs() ([]models.LevelConfig, error) {
	var configs []models.LevelConfig
	err := database.DB.Order("level_number asc").Find(&configs).Error
	return configs, err
}

// BenefitSummary is what display reads and checkout collaborators consume.
type BenefitSummary struct {
	DiscountPercent float64 `json:"discount_percent"`
	DiscountSource  string  `json:"discount_source,omitempty"`
	FreeShipping    bool    `json:"free_shipping"`
	EarlyAccess     bool    `json:"early_access"`
	Installments    bool    `json:"installments"`
}

// BenefitContext coordinates resolvers that can each grant a percentage
// discount: whichever runs first sets DiscountApplied and the rest must
// leave the discount alone.
type BenefitContext struct {
	Level           int
	Levels          *LevelCache
	Summary         BenefitSummary
	DiscountApplied bool
}

// BenefitResolver contributes benefits to the context. External modules
// (referral rewards, promotions) register their own after the built-in level
// resolver.
type BenefitResolver func(*BenefitContext)

var benefitResolvers = []BenefitResolver{levelBenefitResolver}

// RegisterBenefitResolver appends a resolver; they run in registration order.
func RegisterBenefitResolver(fn BenefitResolver) {
	benefitResolvers = append(benefitResolvers, fn)
}

// ResetBenefitResolvers restores the built-in resolver chain. Test helper.
func ResetBenefitResolvers() {
	benefitResolvers = []BenefitResolver{levelBenefitResolver}
}

// ResolveBenefits computes the effective benefit set for a level.
func ResolveBenefits(level int, cache *LevelCache) BenefitSummary {
	ctx := &BenefitContext{Level: level, Levels: cache}
	for _, fn := range benefitResolvers {
		fn(ctx)
	}
	return ctx.Summary
}

func levelBenefitResolver(ctx *BenefitContext) {
	lc := ctx.Levels.Config(ctx.Level)
	if lc == nil {
		return
	}
	if !ctx.DiscountApplied && lc.DiscountPercent > 0 {
		ctx.Summary.DiscountPercent = lc.DiscountPercent
		ctx.Summary.DiscountSource = "level"
		ctx.DiscountApplied = true
	}
	ctx.Summary.FreeShipping = lc.FreeShipping
	ctx.Summary.EarlyAccess = lc.EarlyAccess
	ctx.Summary.Installments = lc.Installments
}
