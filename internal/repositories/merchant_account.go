package repositories

import (
	"errors"

	"khqrpos/internal/models"

	"gorm.io/gorm"
)

var ErrMerchantAccountNotFound = errors.New("merchant account not found")

// ErrDuplicateAccountID reports a collision on the unique external
// account id during insert.
var ErrDuplicateAccountID = errors.New("duplicate merchant account id")

type MerchantAccountRepository interface {
	GetByID(id uint) (*models.MerchantAccount, error)
	GetFirst() (*models.MerchantAccount, error)
	GetFirstForUser(userID uint) (*models.MerchantAccount, error)
	List() ([]models.MerchantAccount, error)
	Create(m *models.MerchantAccount) error
	Update(m *models.MerchantAccount) error
	UpdateToken(id uint, token *string) error
	Delete(id uint) error
}

type merchantAccountRepository struct {
	db *gorm.DB
}

func NewMerchantAccountRepository(db *gorm.DB) MerchantAccountRepository {
	return &merchantAccountRepository{db: db}
}

func (r *merchantAccountRepository) GetByID(id uint) (*models.MerchantAccount, error) {
	var m models.MerchantAccount
	if err := r.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantAccountNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetFirst returns the oldest merchant account. Kept for single-tenant
// deployments where requests do not name a merchant explicitly.
func (r *merchantAccountRepository) GetFirst() (*models.MerchantAccount, error) {
	var m models.MerchantAccount
	if err := r.db.Order("id").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantAccountNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *merchantAccountRepository) GetFirstForUser(userID uint) (*models.MerchantAccount, error) {
	var m models.MerchantAccount
	if err := r.db.Where("user_id = ?", userID).Order("id").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantAccountNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *merchantAccountRepository) List() ([]models.MerchantAccount, error) {
	var list []models.MerchantAccount
	if err := r.db.Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *merchantAccountRepository) Create(m *models.MerchantAccount) error {
	if err := r.db.Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAccountID
		}
		return err
	}
	return nil
}

func (r *merchantAccountRepository) Update(m *models.MerchantAccount) error {
	if m.ID == 0 {
		return errors.New("cannot update merchant account with ID 0")
	}
	return r.db.Save(m).Error
}

// UpdateToken overwrites the stored gateway token unconditionally.
// A nil token clears it.
func (r *merchantAccountRepository) UpdateToken(id uint, token *string) error {
	result := r.db.Model(&models.MerchantAccount{}).
		Where("id = ?", id).
		Update("bakong_token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMerchantAccountNotFound
	}
	return nil
}

func (r *merchantAccountRepository) Delete(id uint) error {
	result := r.db.Delete(&models.MerchantAccount{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMerchantAccountNotFound
	}
	return nil
}
