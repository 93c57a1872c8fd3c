package transaction

import (
	"time"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

// ListQuery carries the admin ledger filters.
type ListQuery struct {
	UserID    *uint      `form:"user_id"`
	Source    *string    `form:"source"`
	StartTime *time.Time `form:"start_time" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   *time.Time `form:"end_time" time_format:"2006-01-02T15:04:05Z07:00"`
	MinAmount *int64     `form:"min_amount"`
	MaxAmount *int64     `form:"max_amount"`
	Page      int        `form:"page,default=1"`
	Limit     int        `form:"limit,default=20"`
}

// ListResponse is the paginated admin ledger view.
type ListResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
}
