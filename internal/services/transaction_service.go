package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

// TransactionFilter defines criteria for filtering ledger entries
type TransactionFilter struct {
	UserID    *uint
	Source    *string
	StartTime *time.Time
	EndTime   *time.Time
	MinAmount *int64
	MaxAmount *int64
	Page      int
	Limit     int
}

// FindTransactions retrieves a paginated list of ledger entries with filtering
func FindTransactions(filter TransactionFilter) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	query := database.DB.Model(&models.Transaction{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// GetUserHistory is the collaborator-facing paginated ledger read.
func GetUserHistory(userID uint, page, pageSize int) ([]models.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return FindTransactions(TransactionFilter{
		UserID: &userID,
		Page:   page,
		Limit:  pageSize,
	})
}

// GenerateTransactionCSV generates a CSV file content for ledger entries
func GenerateTransactionCSV(transactions []models.Transaction) ([]byte, error) {
	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{
		"ID", "Time", "User ID", "Source", "Source Ref",
		"Amount", "Multiplier", "Note", "Operator", "Hash",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, t := range transactions {
		record := []string{
			fmt.Sprintf("%d", t.ID),
			t.CreatedAt.Format(time.RFC3339),
			fmt.Sprintf("%d", t.UserID),
			t.Source,
			t.SourceRef,
			fmt.Sprintf("%d", t.Amount),
			fmt.Sprintf("%.2f", t.Multiplier),
			t.Note,
			t.Operator,
			t.Hash,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
