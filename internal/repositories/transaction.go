package repositories

import (
	"errors"
	"time"

	"khqrpos/internal/models"

	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// ErrDuplicateBillNumber reports a bill-number collision on insert.
// Callers regenerate the bill number and retry.
var ErrDuplicateBillNumber = errors.New("duplicate bill number")

type TransactionRepository interface {
	Create(tx *models.Transaction) error
	GetByBillNumber(userID uint, billNumber string) (*models.Transaction, error)
	GetLatestPending(userID uint) (*models.Transaction, error)
	MarkSuccess(id uint, completedAt time.Time, sendFrom, receiveTo *string) (bool, error)
	ListForUser(userID uint, page, limit int) ([]models.Transaction, int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(tx *models.Transaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateBillNumber
		}
		return err
	}
	return nil
}

func (r *transactionRepository) GetByBillNumber(userID uint, billNumber string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Preload("MerchantAccount").
		Where("user_id = ? AND bill_number = ?", userID, billNumber).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// GetLatestPending returns the most recently created pending
// transaction with a fingerprint for the user, or
// ErrTransactionNotFound when there is nothing to verify.
func (r *transactionRepository) GetLatestPending(userID uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Preload("MerchantAccount").
		Where("user_id = ? AND status = ? AND md5_hash <> ''",
			userID, models.TransactionStatusPending).
		Order("created_at DESC").
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// MarkSuccess performs the pending→success transition as a single
// conditional update. The bool reports whether this caller won the
// transition; false means another verification already moved the row.
func (r *transactionRepository) MarkSuccess(id uint, completedAt time.Time, sendFrom, receiveTo *string) (bool, error) {
	result := r.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":       models.TransactionStatusSuccess,
			"completed_at": completedAt,
			"send_from":    sendFrom,
			"receive_to":   receiveTo,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *transactionRepository) ListForUser(userID uint, page, limit int) ([]models.Transaction, int64, error) {
	var list []models.Transaction
	var total int64

	q := r.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
