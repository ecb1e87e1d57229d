package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"khqrpos/internal/gateway/bakong"
	"khqrpos/internal/models"
	"khqrpos/internal/repositories"
	merchantsvc "khqrpos/internal/services/merchant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockTxRepo struct {
	mock.Mock
}

func (m *MockTxRepo) Create(tx *models.Transaction) error {
	return m.Called(tx).Error(0)
}

func (m *MockTxRepo) GetByBillNumber(userID uint, billNumber string) (*models.Transaction, error) {
	args := m.Called(userID, billNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTxRepo) GetLatestPending(userID uint) (*models.Transaction, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTxRepo) MarkSuccess(id uint, completedAt time.Time, sendFrom, receiveTo *string) (bool, error) {
	args := m.Called(id, completedAt, sendFrom, receiveTo)
	return args.Bool(0), args.Error(1)
}

func (m *MockTxRepo) ListForUser(userID uint, page, limit int) ([]models.Transaction, int64, error) {
	args := m.Called(userID, page, limit)
	return args.Get(0).([]models.Transaction), args.Get(1).(int64), args.Error(2)
}

type MockMerchantService struct {
	mock.Mock
}

func (m *MockMerchantService) GetToken(ctx context.Context, merchantID uint) (string, error) {
	args := m.Called(ctx, merchantID)
	return args.String(0), args.Error(1)
}

func (m *MockMerchantService) SetToken(ctx context.Context, merchantID uint, token string, adminID uint) error {
	return m.Called(ctx, merchantID, token, adminID).Error(0)
}

func (m *MockMerchantService) ClearToken(ctx context.Context, merchantID uint, adminID uint) error {
	return m.Called(ctx, merchantID, adminID).Error(0)
}

func (m *MockMerchantService) Resolve(ctx context.Context, merchantID uint, userID uint) (*models.MerchantAccount, error) {
	args := m.Called(ctx, merchantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MerchantAccount), args.Error(1)
}

func (m *MockMerchantService) Create(ctx context.Context, input *models.CreateMerchantAccountInput) (*models.MerchantAccount, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MerchantAccount), args.Error(1)
}

func (m *MockMerchantService) List(ctx context.Context) ([]models.MerchantAccount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.MerchantAccount), args.Error(1)
}

func (m *MockMerchantService) Get(ctx context.Context, id uint) (*models.MerchantAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MerchantAccount), args.Error(1)
}

func (m *MockMerchantService) Update(ctx context.Context, id uint, input *models.UpdateMerchantAccountInput) (*models.MerchantAccount, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MerchantAccount), args.Error(1)
}

func (m *MockMerchantService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CheckTransactionByMD5(ctx context.Context, token, md5 string) (*bakong.CheckResponse, error) {
	args := m.Called(ctx, token, md5)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bakong.CheckResponse), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PaymentSuccess(ctx context.Context, merchant *models.MerchantAccount, tx *models.Transaction) error {
	return m.Called(ctx, merchant, tx).Error(0)
}

func pendingTx() *models.Transaction {
	return &models.Transaction{
		Model:             gorm.Model{ID: 42},
		BillNumber:        "txn_0042",
		UserID:            1,
		MerchantAccountID: 3,
		MerchantAccount: &models.MerchantAccount{
			Model:        gorm.Model{ID: 3},
			AccountID:    "merchant@devb",
			MerchantName: "Coffee House",
		},
		Amount:   10,
		Currency: models.CurrencyUSD,
		MD5Hash:  "abc123",
		Status:   models.TransactionStatusPending,
	}
}

func settledResponse() *bakong.CheckResponse {
	return &bakong.CheckResponse{
		ResponseCode:    0,
		ResponseMessage: "Success",
		Data: &bakong.TransactionData{
			FromAccountID: "payer@bank",
			ToAccountID:   "merchant@devb",
			Amount:        10,
		},
	}
}

func TestVerifyLatestPending(t *testing.T) {
	t.Run("nothing pending", func(t *testing.T) {
		txRepo := new(MockTxRepo)
		txRepo.On("GetLatestPending", uint(1)).Return(nil, repositories.ErrTransactionNotFound)

		svc := NewService(txRepo, new(MockMerchantService), new(MockGateway), new(MockNotifier))
		res, err := svc.VerifyLatestPending(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, msgNoPending, res.Message)
		assert.Nil(t, res.Detail)
		txRepo.AssertNotCalled(t, "MarkSuccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("settlement transitions exactly once and notifies", func(t *testing.T) {
		txRepo := new(MockTxRepo)
		txRepo.On("GetLatestPending", uint(1)).Return(pendingTx(), nil)
		txRepo.On("MarkSuccess", uint(42), mock.AnythingOfType("time.Time"),
			mock.MatchedBy(func(p *string) bool { return p != nil && *p == "payer@bank" }),
			mock.MatchedBy(func(p *string) bool { return p != nil && *p == "merchant@devb" }),
		).Return(true, nil)

		merchants := new(MockMerchantService)
		merchants.On("GetToken", mock.Anything, uint(3)).Return("tok-abc", nil)

		gateway := new(MockGateway)
		gateway.On("CheckTransactionByMD5", mock.Anything, "tok-abc", "abc123").
			Return(settledResponse(), nil)

		notifier := new(MockNotifier)
		notifier.On("PaymentSuccess", mock.Anything, mock.Anything,
			mock.MatchedBy(func(tx *models.Transaction) bool {
				return tx.Status == models.TransactionStatusSuccess &&
					tx.CompletedAt != nil && tx.SendFrom != nil && tx.ReceiveTo != nil
			})).Return(nil)

		svc := NewService(txRepo, merchants, gateway, notifier)
		res, err := svc.VerifyLatestPending(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, res.Detail)
		assert.True(t, res.Detail.Updated)
		assert.Equal(t, "txn_0042", res.Detail.Bill)

		txRepo.AssertNumberOfCalls(t, "MarkSuccess", 1)
		notifier.AssertNumberOfCalls(t, "PaymentSuccess", 1)
	})

	t.Run("non-qualifying response leaves transaction pending", func(t *testing.T) {
		txRepo := new(MockTxRepo)
		txRepo.On("GetLatestPending", uint(1)).Return(pendingTx(), nil)

		merchants := new(MockMerchantService)
		merchants.On("GetToken", mock.Anything, uint(3)).Return("tok-abc", nil)

		errCode := 1
		gateway := new(MockGateway)
		gateway.On("CheckTransactionByMD5", mock.Anything, "tok-abc", "abc123").
			Return(&bakong.CheckResponse{
				ResponseCode:    1,
				ResponseMessage: "Transaction could not be found.",
				ErrorCode:       &errCode,
			}, nil)

		notifier := new(MockNotifier)
		svc := NewService(txRepo, merchants, gateway, notifier)
		res, err := svc.VerifyLatestPending(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, res.Detail)
		assert.False(t, res.Detail.Updated)
		assert.Equal(t, GatewayErrorRejected, res.Detail.GatewayErrorKind)

		txRepo.AssertNotCalled(t, "MarkSuccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "PaymentSuccess", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success code with empty payload does not settle", func(t *testing.T) {
		txRepo := new(MockTxRepo)
		txRepo.On("GetLatestPending", uint(1)).Return(pendingTx(), nil)

		merchants := new(MockMerchantService)
		merchants.On("GetToken", mock.Anything, uint(3)).Return("tok-abc", nil)

		gateway := new(MockGateway)
		gateway.On("CheckTransactionByMD5", mock.Anything, "tok-abc", "abc123").
			Return(&bakong.CheckResponse{ResponseCode: 0}, nil)

		svc := NewService(txRepo, merchants, gateway, new(MockNotifier))
		res, err := svc.VerifyLatestPending(context.Background(), 1)
		require.NoError(t, err)
		assert.False(t, res.Detail.Updated)
		txRepo.AssertNotCalled(t, "MarkSuccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("transport failure is non-fatal", func(t *testing.T) {
		txRepo := new(MockTxRepo)
		txRepo.On("GetLatestPending", uint(1)).Return(pendingTx(), nil)

		merchants := new(MockMerchantService)
		merchants.On("GetToken", mock.Anything, uint(3)).Return("tok-abc", nil)

		gateway := new(MockGateway)
		gateway.On("CheckTransactionByMD5", mock.Anything, "tok-abc", "abc123").
			Return(nil, errors.New("dial tcp: connection refused"))

		svc := NewService(txRepo, merchants, gateway, new(MockNotifier))
		res, err := svc.VerifyLatestPending(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, res.Detail)
		assert.False(t, res.Detail.Updated)
		assert.Equal(t, GatewayErrorTransport, res.Detail.GatewayErrorKind)
		txRepo.AssertNotCalled(t, "MarkSuccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost conditional-update race skips notification", func(t *testing.T) {
		txRepo := new(MockTxRepo)
		txRepo.On("GetLatestPending", uint(1)).Return(pendingTx(), nil)
		txRepo.On("MarkSuccess", uint(42), mock.Anything, mock.Anything, mock.Anything).
			Return(false, nil)

		merchants := new(MockMerchantService)
		merchants.On("GetToken", mock.Anything, uint(3)).Return("tok-abc", nil)

		gateway := new(MockGateway)
		gateway.On("CheckTransactionByMD5", mock.Anything, "tok-abc", "abc123").
			Return(settledResponse(), nil)

		notifier := new(MockNotifier)
		svc := NewService(txRepo, merchants, gateway, notifier)
		res, err := svc.VerifyLatestPending(context.Background(), 1)
		require.NoError(t, err)
		assert.False(t, res.Detail.Updated)
		notifier.AssertNotCalled(t, "PaymentSuccess", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("notifier failure never fails verification", func(t *testing.T) {
		txRepo := new(MockTxRepo)
		txRepo.On("GetLatestPending", uint(1)).Return(pendingTx(), nil)
		txRepo.On("MarkSuccess", uint(42), mock.Anything, mock.Anything, mock.Anything).
			Return(true, nil)

		merchants := new(MockMerchantService)
		merchants.On("GetToken", mock.Anything, uint(3)).Return("tok-abc", nil)

		gateway := new(MockGateway)
		gateway.On("CheckTransactionByMD5", mock.Anything, "tok-abc", "abc123").
			Return(settledResponse(), nil)

		notifier := new(MockNotifier)
		notifier.On("PaymentSuccess", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("telegram down"))

		svc := NewService(txRepo, merchants, gateway, notifier)
		res, err := svc.VerifyLatestPending(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, res.Detail.Updated)
	})

	t.Run("missing merchant token is reported, not raised", func(t *testing.T) {
		txRepo := new(MockTxRepo)
		txRepo.On("GetLatestPending", uint(1)).Return(pendingTx(), nil)

		merchants := new(MockMerchantService)
		merchants.On("GetToken", mock.Anything, uint(3)).Return("", merchantsvc.ErrTokenNotFound)

		svc := NewService(txRepo, merchants, new(MockGateway), new(MockNotifier))
		res, err := svc.VerifyLatestPending(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, msgNoMerchantToken, res.Message)
	})
}

func TestVerifyByBill(t *testing.T) {
	t.Run("already settled bill reports nothing pending", func(t *testing.T) {
		tx := pendingTx()
		tx.Status = models.TransactionStatusSuccess

		txRepo := new(MockTxRepo)
		txRepo.On("GetByBillNumber", uint(1), "txn_0042").Return(tx, nil)

		svc := NewService(txRepo, new(MockMerchantService), new(MockGateway), new(MockNotifier))
		res, err := svc.VerifyByBill(context.Background(), 1, "txn_0042")
		require.NoError(t, err)
		assert.Equal(t, msgNoPending, res.Message)
		assert.False(t, res.Detail.Updated)
	})

	t.Run("pending bill is verified", func(t *testing.T) {
		txRepo := new(MockTxRepo)
		txRepo.On("GetByBillNumber", uint(1), "txn_0042").Return(pendingTx(), nil)
		txRepo.On("MarkSuccess", uint(42), mock.Anything, mock.Anything, mock.Anything).
			Return(true, nil)

		merchants := new(MockMerchantService)
		merchants.On("GetToken", mock.Anything, uint(3)).Return("tok-abc", nil)

		gateway := new(MockGateway)
		gateway.On("CheckTransactionByMD5", mock.Anything, "tok-abc", "abc123").
			Return(settledResponse(), nil)

		notifier := new(MockNotifier)
		notifier.On("PaymentSuccess", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := NewService(txRepo, merchants, gateway, notifier)
		res, err := svc.VerifyByBill(context.Background(), 1, "txn_0042")
		require.NoError(t, err)
		assert.True(t, res.Detail.Updated)
	})

	t.Run("unknown bill propagates not found", func(t *testing.T) {
		txRepo := new(MockTxRepo)
		txRepo.On("GetByBillNumber", uint(1), "txn_missing").
			Return(nil, repositories.ErrTransactionNotFound)

		svc := NewService(txRepo, new(MockMerchantService), new(MockGateway), new(MockNotifier))
		_, err := svc.VerifyByBill(context.Background(), 1, "txn_missing")
		assert.ErrorIs(t, err, repositories.ErrTransactionNotFound)
	})
}

func TestSequentialVerification(t *testing.T) {
	// After a settlement the transaction is no longer pending, so a
	// second sweep finds nothing.
	txRepo := new(MockTxRepo)
	txRepo.On("GetLatestPending", uint(1)).Return(pendingTx(), nil).Once()
	txRepo.On("GetLatestPending", uint(1)).Return(nil, repositories.ErrTransactionNotFound).Once()
	txRepo.On("MarkSuccess", uint(42), mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)

	merchants := new(MockMerchantService)
	merchants.On("GetToken", mock.Anything, uint(3)).Return("tok-abc", nil)

	gateway := new(MockGateway)
	gateway.On("CheckTransactionByMD5", mock.Anything, "tok-abc", "abc123").
		Return(settledResponse(), nil)

	notifier := new(MockNotifier)
	notifier.On("PaymentSuccess", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewService(txRepo, merchants, gateway, notifier)

	first, err := svc.VerifyLatestPending(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, first.Detail.Updated)

	second, err := svc.VerifyLatestPending(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, msgNoPending, second.Message)
	assert.Nil(t, second.Detail)

	notifier.AssertNumberOfCalls(t, "PaymentSuccess", 1)
}
