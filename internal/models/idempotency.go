package models

import "time"

// IdempotencyKey is the atomic insert-if-absent guard. The composite unique
// index is the whole point: claiming a key is a single conditional insert, so
// two concurrent identical requests cannot both win.
//
// Key namespaces in use:
//
//	src:{source}:{source_ref}   ledger de-duplication for natural keys
//	awarded:{bonus}:{year}      per-user-per-year calendar bonuses
//	{source}:{month}            monthly sweeps such as XP expiry
type IdempotencyKey struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint   `gorm:"not null;uniqueIndex:idx_user_key,priority:1"`
	Key       string `gorm:"type:varchar(160);not null;uniqueIndex:idx_user_key,priority:2"`
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}
