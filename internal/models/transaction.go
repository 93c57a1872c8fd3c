package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Well-known ledger sources. Collaborators may pass their own tags; these are
// the ones the engine itself writes.
const (
	SourceStreak      = "streak"
	SourceBirthday    = "birthday"
	SourceAnniversary = "anniversary"
	SourceXPExpiry    = "xp_expiry"
	SourceAdmin       = "admin_adjustment"
)

// Transaction is one signed entry in the XP ledger. Rows are append-only:
// corrections are new offsetting rows, never updates or deletes.
type Transaction struct {
	ID         uint      `gorm:"primarykey"`
	CreatedAt  time.Time `gorm:"precision:3;index:idx_user_time,priority:2;index:idx_source_time,priority:2"`
	UserID     uint      `gorm:"not null;index:idx_user_time,priority:1"`
	Amount     int64     `gorm:"not null"` // signed XP delta
	Source     string    `gorm:"type:varchar(64);not null;index:idx_source_time,priority:1"`
	SourceRef  string    `gorm:"type:varchar(128);default:''"` // natural key for de-duplication, optional
	Multiplier float64   `gorm:"default:1"`                    // campaign multiplier applied at award time
	Note       string    `gorm:"type:text"`
	Operator   string    `gorm:"type:varchar(100)"` // username or 'system'
	Hash       string    `gorm:"type:varchar(64);default:''"` // HMAC SHA256
}

func (Transaction) TableName() string {
	return "xp_transactions"
}

// GenerateHash generates a tamper-proof hash for the transaction
func (t *Transaction) GenerateHash(secret string) string {
	data := fmt.Sprintf("%d|%d|%d|%s|%s|%.4f|%s",
		t.UserID, t.CreatedAt.UnixNano(), t.Amount, t.Source, t.SourceRef,
		t.Multiplier, t.Operator)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
