package merchant

import (
	"context"
	"testing"

	"khqrpos/internal/models"
	"khqrpos/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockMerchantRepo struct {
	mock.Mock
}

func (m *MockMerchantRepo) GetByID(id uint) (*models.MerchantAccount, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MerchantAccount), args.Error(1)
}

func (m *MockMerchantRepo) GetFirst() (*models.MerchantAccount, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MerchantAccount), args.Error(1)
}

func (m *MockMerchantRepo) GetFirstForUser(userID uint) (*models.MerchantAccount, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MerchantAccount), args.Error(1)
}

func (m *MockMerchantRepo) List() ([]models.MerchantAccount, error) {
	args := m.Called()
	return args.Get(0).([]models.MerchantAccount), args.Error(1)
}

func (m *MockMerchantRepo) Create(acc *models.MerchantAccount) error {
	return m.Called(acc).Error(0)
}

func (m *MockMerchantRepo) Update(acc *models.MerchantAccount) error {
	return m.Called(acc).Error(0)
}

func (m *MockMerchantRepo) UpdateToken(id uint, token *string) error {
	return m.Called(id, token).Error(0)
}

func (m *MockMerchantRepo) Delete(id uint) error {
	return m.Called(id).Error(0)
}

func strPtr(s string) *string { return &s }

func TestGetToken(t *testing.T) {
	t.Run("returns stored token", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetByID", uint(3)).Return(&models.MerchantAccount{
			Model:       gorm.Model{ID: 3},
			BakongToken: strPtr("tok-abc"),
		}, nil)

		svc := NewService(repo, nil)
		token, err := svc.GetToken(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "tok-abc", token)
	})

	t.Run("no merchant", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetByID", uint(9)).Return(nil, repositories.ErrMerchantAccountNotFound)

		svc := NewService(repo, nil)
		_, err := svc.GetToken(context.Background(), 9)
		assert.ErrorIs(t, err, ErrMerchantNotFound)
	})

	t.Run("no token", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetByID", uint(3)).Return(&models.MerchantAccount{Model: gorm.Model{ID: 3}}, nil)

		svc := NewService(repo, nil)
		_, err := svc.GetToken(context.Background(), 3)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestSetToken(t *testing.T) {
	repo := new(MockMerchantRepo)
	repo.On("GetByID", uint(3)).Return(&models.MerchantAccount{
		Model:       gorm.Model{ID: 3},
		BakongToken: strPtr("old-token-value"),
	}, nil)
	repo.On("UpdateToken", uint(3), mock.MatchedBy(func(tok *string) bool {
		return tok != nil && *tok == "new-token-value"
	})).Return(nil)

	svc := NewService(repo, nil)
	err := svc.SetToken(context.Background(), 3, "new-token-value", 1)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestClearToken(t *testing.T) {
	t.Run("clears existing token", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetByID", uint(3)).Return(&models.MerchantAccount{
			Model:       gorm.Model{ID: 3},
			BakongToken: strPtr("tok"),
		}, nil)
		repo.On("UpdateToken", uint(3), (*string)(nil)).Return(nil)

		svc := NewService(repo, nil)
		require.NoError(t, svc.ClearToken(context.Background(), 3, 1))
		repo.AssertExpectations(t)
	})

	t.Run("nothing to clear", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetByID", uint(3)).Return(&models.MerchantAccount{Model: gorm.Model{ID: 3}}, nil)

		svc := NewService(repo, nil)
		err := svc.ClearToken(context.Background(), 3, 1)
		assert.ErrorIs(t, err, ErrTokenNotFound)
		repo.AssertNotCalled(t, "UpdateToken", mock.Anything, mock.Anything)
	})
}

func TestCreate(t *testing.T) {
	t.Run("creates account", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("Create", mock.MatchedBy(func(m *models.MerchantAccount) bool {
			return m.AccountID == "merchant@bank"
		})).Return(nil)

		svc := NewService(repo, nil)
		m, err := svc.Create(context.Background(), &models.CreateMerchantAccountInput{
			AccountID: "merchant@bank",
			UserID:    1,
		})
		require.NoError(t, err)
		assert.Equal(t, "merchant@bank", m.AccountID)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate account id", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("Create", mock.Anything).Return(repositories.ErrDuplicateAccountID)

		svc := NewService(repo, nil)
		_, err := svc.Create(context.Background(), &models.CreateMerchantAccountInput{
			AccountID: "merchant@bank",
			UserID:    1,
		})
		assert.ErrorIs(t, err, ErrDuplicateAccountID)
	})
}

func TestResolve(t *testing.T) {
	t.Run("explicit id wins", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetByID", uint(7)).Return(&models.MerchantAccount{Model: gorm.Model{ID: 7}}, nil)

		svc := NewService(repo, nil)
		m, err := svc.Resolve(context.Background(), 7, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(7), m.ID)
	})

	t.Run("falls back to user's first account", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetFirstForUser", uint(1)).Return(&models.MerchantAccount{Model: gorm.Model{ID: 2}}, nil)

		svc := NewService(repo, nil)
		m, err := svc.Resolve(context.Background(), 0, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(2), m.ID)
	})

	t.Run("falls back to global first", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetFirstForUser", uint(1)).Return(nil, repositories.ErrMerchantAccountNotFound)
		repo.On("GetFirst").Return(&models.MerchantAccount{Model: gorm.Model{ID: 5}}, nil)

		svc := NewService(repo, nil)
		m, err := svc.Resolve(context.Background(), 0, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(5), m.ID)
	})

	t.Run("no merchants at all", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetFirstForUser", uint(1)).Return(nil, repositories.ErrMerchantAccountNotFound)
		repo.On("GetFirst").Return(nil, repositories.ErrMerchantAccountNotFound)

		svc := NewService(repo, nil)
		_, err := svc.Resolve(context.Background(), 0, 1)
		assert.ErrorIs(t, err, ErrMerchantNotFound)
	})
}
