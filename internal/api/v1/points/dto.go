package points

import "time"

// ActorInfo identifies the triggering account for awards made on someone
// else's behalf (referrals and the like).
type ActorInfo struct {
	UserID uint   `json:"user_id"`
	IP     string `json:"ip"`
	Email  string `json:"email"`
}

// AwardRequest is the collaborator-facing award payload.
type AwardRequest struct {
	UserID    uint       `json:"user_id" binding:"required"`
	Amount    int64      `json:"amount" binding:"required,gt=0"`
	Source    string     `json:"source" binding:"required"`
	SourceRef string     `json:"source_ref"`
	Note      string     `json:"note"`
	ClientIP  string     `json:"client_ip"`
	Actor     *ActorInfo `json:"actor"`
}

// DeductRequest is the collaborator-facing deduct payload. Kind "spend"
// verifies the balance; "system" always succeeds.
type DeductRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Source    string `json:"source" binding:"required"`
	SourceRef string `json:"source_ref"`
	Note      string `json:"note"`
	Kind      string `json:"kind" binding:"omitempty,oneof=spend system"`
}

// ActivityRequest marks a qualifying daily activity for the streak tracker.
type ActivityRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// AmountResponse reports what actually landed in the ledger. Zero is a valid
// soft outcome (cap exhausted, duplicate retry).
type AmountResponse struct {
	Amount int64 `json:"amount"`
}

// HistoryEntry is one ledger row in a collaborator read.
type HistoryEntry struct {
	ID         uint      `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Amount     int64     `json:"amount"`
	Source     string    `json:"source"`
	SourceRef  string    `json:"source_ref,omitempty"`
	Multiplier float64   `json:"multiplier"`
	Note       string    `json:"note,omitempty"`
}

// HistoryResponse is the paginated ledger read.
type HistoryResponse struct {
	Entries  []HistoryEntry `json:"entries"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
