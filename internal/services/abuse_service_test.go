package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

func TestSelfActionBlocked(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t, "selfref")
	events := captureEvents()

	_, err := Award(AwardRequest{
		UserID: user.ID,
		Amount: 100,
		Source: "referral",
		Actor:  &Actor{UserID: user.ID},
	})
	assert.ErrorIs(t, err, ErrSelfAction)
	assert.Equal(t, int64(0), transactionCount(t, user.ID))

	counter, err := GetAbuseCounter(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, counter.SuspicionCount)
	assert.Equal(t, "self_action", counter.LastFlagReason)
	assert.Equal(t, 1, countEvents(*events, models.EventSuspiciousActivity))
}

func TestSharedOriginBlocked(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t, "shared")
	referrer := seedUser(t, "referrer")

	_, err := Award(AwardRequest{
		UserID:   user.ID,
		Amount:   100,
		Source:   "referral",
		ClientIP: "203.0.113.7",
		Actor:    &Actor{UserID: referrer.ID, IP: "203.0.113.7"},
	})
	assert.ErrorIs(t, err, ErrSharedOrigin)
	assert.Equal(t, int64(0), transactionCount(t, user.ID))

	counter, err := GetAbuseCounter(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "shared_origin", counter.LastFlagReason)
}

func TestSharedEmailDomainSoftFlags(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t, "corporate") // @example.com via seedUser
	referrer := seedUser(t, "colleague")

	awarded, err := Award(AwardRequest{
		UserID:   user.ID,
		Amount:   100,
		Source:   "referral",
		ClientIP: "203.0.113.7",
		Actor:    &Actor{UserID: referrer.ID, IP: "198.51.100.9", Email: referrer.Email},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(100), awarded)

	counter, err := GetAbuseCounter(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, counter.SuspicionCount)
	assert.Equal(t, "shared_email_domain", counter.LastFlagReason)
}

func TestGenericEmailDomainNotFlagged(t *testing.T) {
	setupTestDB(t)

	beneficiary := models.User{ID: 1, Email: "alice@gmail.com"}
	err := CheckActor(beneficiary, "203.0.113.7", &Actor{UserID: 2, IP: "198.51.100.9", Email: "bob@gmail.com"})
	assert.NoError(t, err)

	counter, err := GetAbuseCounter(1)
	assert.NoError(t, err)
	assert.Equal(t, 0, counter.SuspicionCount)
}

func TestCheckActorNilActor(t *testing.T) {
	beneficiary := models.User{ID: 1}
	assert.NoError(t, CheckActor(beneficiary, "203.0.113.7", nil))
}

func TestFlagSuspicionAccumulates(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t, "repeat")

	FlagSuspicion(user.ID, "self_action")
	FlagSuspicion(user.ID, "shared_origin")
	FlagSuspicion(user.ID, "shared_origin")

	counter, err := GetAbuseCounter(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, counter.SuspicionCount)
	assert.Equal(t, "shared_origin", counter.LastFlagReason)
	assert.NotNil(t, counter.LastFlaggedAt)
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "example.com", emailDomain("user@example.com"))
	assert.Equal(t, "example.com", emailDomain("USER@EXAMPLE.COM"))
	assert.Equal(t, "", emailDomain("not-an-email"))
	assert.Equal(t, "", emailDomain("trailing@"))
}

func TestClampToDailyAllowanceUnlimited(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t, "unlimited")

	settings := &LoyaltySettings{DailyCap: 0, Location: timeNow().Location()}
	amount, err := ClampToDailyAllowance(database.DB, user.ID, 1000000, settings, timeNow())
	assert.NoError(t, err)
	assert.Equal(t, int64(1000000), amount)
}
