package services

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

// Failures surfaced to collaborators. Only storage errors are transient;
// everything else means "no XP this time" and must not be blindly retried.
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient XP balance")
)

// errDuplicate aborts the write transaction when the idempotency guard is
// already held. Callers convert it to a success no-op.
var errDuplicate = errors.New("duplicate ledger write")

// AwardRequest is the inbound shape of the only earn path into the ledger.
type AwardRequest struct {
	UserID    uint
	Amount    int64
	Source    string
	SourceRef string // natural uniqueness key; enables de-duplication when set
	Note      string
	Operator  string
	ClientIP  string // beneficiary's request origin, for the abuse guard
	Actor     *Actor
}

// DeductKind separates the two deduct flavors.
type DeductKind int

const (
	// SpendDeduct is user-initiated (reward redemption): balance-checked
	// under a per-user lock, fails with ErrInsufficientBalance.
	SpendDeduct DeductKind = iota
	// SystemDeduct is engine-initiated (refund, cancellation, expiry):
	// always succeeds and may drive the balance negative.
	SystemDeduct
)

type DeductRequest struct {
	UserID    uint
	Amount    int64
	Source    string
	SourceRef string
	Note      string
	Operator  string
	Kind      DeductKind
}

// AwardContext flows through the transform pipeline after clamping and
// multiplication. Transforms may adjust Amount or set Skip to short-circuit
// the award as a success no-op.
type AwardContext struct {
	Request       *AwardRequest
	Amount        int64
	Multiplier    float64
	CampaignLabel string
	Settings      *LoyaltySettings
	Levels        *LevelCache
	Skip          bool
	SkipReason    string
}

// AwardTransform is the ordered extension point in front of the ledger
// commit. Transforms run in registration order.
type AwardTransform func(*AwardContext) error

var awardTransforms []AwardTransform

// RegisterAwardTransform appends a transform to the pre-commit pipeline.
func RegisterAwardTransform(fn AwardTransform) {
	awardTransforms = append(awardTransforms, fn)
}

// ResetAwardTransforms drops all registered transforms. Test helper.
func ResetAwardTransforms() {
	awardTransforms = nil
}

func sourceKey(source, ref string) string {
	return fmt.Sprintf("src:%s:%s", source, ref)
}

// Award pushes a positive, signed transaction through the full earn path:
// abuse clamp, campaign multiplier, transform pipeline, then one atomic
// ledger insert plus balance rebuild. The returned amount is what actually
// landed in the ledger; zero with a nil error is a valid soft outcome (cap
// exhausted, duplicate retry, transform skip).
func Award(req AwardRequest) (int64, error) {
	if req.Amount <= 0 {
		return 0, ErrInvalidAmount
	}

	user, err := FindUserByID(req.UserID)
	if err != nil {
		return 0, err
	}

	settings := loadSettings()
	levels, err := LoadLevelCache()
	if err != nil {
		return 0, err
	}
	now := timeNow()

	if err := CheckActor(user, req.ClientIP, req.Actor); err != nil {
		return 0, err
	}

	clamped, err := ClampToDailyAllowance(database.DB, req.UserID, req.Amount, settings, now)
	if err != nil {
		return 0, err
	}
	if clamped == 0 {
		// daily cap exhausted: silent partial success, no side effects
		zap.L().Info("daily cap exhausted",
			zap.Uint("user_id", req.UserID), zap.String("source", req.Source))
		return 0, nil
	}

	// Cap first, multiply second: an active campaign may push the realized
	// daily total above the nominal cap. That ordering is deliberate.
	camp := SnapshotCampaign(now)
	final := int64(math.Round(float64(clamped) * camp.Multiplier))

	ctx := &AwardContext{
		Request:       &req,
		Amount:        final,
		Multiplier:    camp.Multiplier,
		CampaignLabel: camp.Label,
		Settings:      settings,
		Levels:        levels,
	}
	for _, fn := range awardTransforms {
		if err := fn(ctx); err != nil {
			return 0, err
		}
		if ctx.Skip {
			zap.L().Info("award skipped by transform",
				zap.Uint("user_id", req.UserID),
				zap.String("source", req.Source),
				zap.String("reason", ctx.SkipReason))
			return 0, nil
		}
	}
	final = ctx.Amount
	if final <= 0 {
		return 0, nil
	}

	var result *RebuildResult
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if req.SourceRef != "" {
			ok, err := claimKey(tx, req.UserID, sourceKey(req.Source, req.SourceRef))
			if err != nil {
				return err
			}
			if !ok {
				return errDuplicate
			}
		}

		txn := models.Transaction{
			CreatedAt:  now,
			UserID:     req.UserID,
			Amount:     final,
			Source:     req.Source,
			SourceRef:  req.SourceRef,
			Multiplier: camp.Multiplier,
			Note:       req.Note,
			Operator:   req.Operator,
		}
		txn.Hash = txn.GenerateHash(settings.LedgerSecret)
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		result, err = RebuildUserLevelState(tx, req.UserID, settings, levels)
		return err
	})
	if errors.Is(err, errDuplicate) {
		// retry of an already-applied request: success no-op
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	invalidateBalanceCache(req.UserID)

	PublishEvent(models.EventXPAwarded, req.UserID, map[string]interface{}{
		"amount":     final,
		"requested":  req.Amount,
		"source":     req.Source,
		"source_ref": req.SourceRef,
		"multiplier": camp.Multiplier,
		"campaign":   camp.Label,
	})
	emitLevelEvents(req.UserID, result)

	return final, nil
}

// Deduct writes a negative transaction. Spend deducts serialize the balance
// check and the debit under the user's state-row lock so concurrent spends
// cannot overdraw; system deducts always land.
func Deduct(req DeductRequest) (int64, error) {
	if req.Amount <= 0 {
		return 0, ErrInvalidAmount
	}

	if _, err := FindUserByID(req.UserID); err != nil {
		return 0, err
	}

	settings := loadSettings()
	levels, err := LoadLevelCache()
	if err != nil {
		return 0, err
	}
	now := timeNow()

	var result *RebuildResult
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if req.SourceRef != "" {
			ok, err := claimKey(tx, req.UserID, sourceKey(req.Source, req.SourceRef))
			if err != nil {
				return err
			}
			if !ok {
				return errDuplicate
			}
		}

		if req.Kind == SpendDeduct {
			var state models.UserLevelState
			err := lockForUpdate(tx).First(&state, "user_id = ?", req.UserID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInsufficientBalance
				}
				return err
			}
			if state.TotalXP < req.Amount {
				return ErrInsufficientBalance
			}
		}

		txn := models.Transaction{
			CreatedAt:  now,
			UserID:     req.UserID,
			Amount:     -req.Amount,
			Source:     req.Source,
			SourceRef:  req.SourceRef,
			Multiplier: 1,
			Note:       req.Note,
			Operator:   req.Operator,
		}
		txn.Hash = txn.GenerateHash(settings.LedgerSecret)
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		result, err = RebuildUserLevelState(tx, req.UserID, settings, levels)
		return err
	})
	if errors.Is(err, errDuplicate) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	invalidateBalanceCache(req.UserID)

	PublishEvent(models.EventXPDeducted, req.UserID, map[string]interface{}{
		"amount":     req.Amount,
		"source":     req.Source,
		"source_ref": req.SourceRef,
	})
	emitLevelEvents(req.UserID, result)

	return req.Amount, nil
}
