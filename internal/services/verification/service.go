// Package verification polls the Bakong gateway for the settlement
// status of issued QR transactions and applies the pending→success
// transition exactly once.
package verification

import (
	"context"
	"errors"
	"log"
	"time"

	"khqrpos/internal/gateway/bakong"
	"khqrpos/internal/models"
	"khqrpos/internal/repositories"
	"khqrpos/internal/services/merchant"
	"khqrpos/internal/services/notification"
)

type Service interface {
	// VerifyLatestPending checks the user's most recent pending
	// transaction. A user with nothing pending gets a "nothing to
	// verify" result, not an error.
	VerifyLatestPending(ctx context.Context, userID uint) (*Result, error)

	// VerifyByBill checks a specific transaction by bill number,
	// for callers reconciling older pending transactions.
	VerifyByBill(ctx context.Context, userID uint, billNumber string) (*Result, error)
}

type service struct {
	txRepo    repositories.TransactionRepository
	merchants merchant.Service
	gateway   bakong.Client
	notifier  notification.Notifier
}

func NewService(
	txRepo repositories.TransactionRepository,
	merchants merchant.Service,
	gateway bakong.Client,
	notifier notification.Notifier,
) Service {
	return &service{
		txRepo:    txRepo,
		merchants: merchants,
		gateway:   gateway,
		notifier:  notifier,
	}
}

func (s *service) VerifyLatestPending(ctx context.Context, userID uint) (*Result, error) {
	tx, err := s.txRepo.GetLatestPending(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return &Result{Message: msgNoPending}, nil
		}
		return nil, err
	}
	return s.verify(ctx, tx)
}

func (s *service) VerifyByBill(ctx context.Context, userID uint, billNumber string) (*Result, error) {
	tx, err := s.txRepo.GetByBillNumber(userID, billNumber)
	if err != nil {
		return nil, err
	}
	if tx.Status != models.TransactionStatusPending || tx.MD5Hash == "" {
		return &Result{
			Message: msgNoPending,
			Detail: &Detail{
				Bill:    tx.BillNumber,
				MD5:     tx.MD5Hash,
				Updated: false,
			},
		}, nil
	}
	return s.verify(ctx, tx)
}

// verify runs one gateway lookup for tx and, on settlement, commits
// the status transition and fires a single notification attempt.
func (s *service) verify(ctx context.Context, tx *models.Transaction) (*Result, error) {
	token, err := s.merchants.GetToken(ctx, tx.MerchantAccountID)
	if err != nil {
		if errors.Is(err, merchant.ErrMerchantNotFound) || errors.Is(err, merchant.ErrTokenNotFound) {
			return &Result{Message: msgNoMerchantToken}, nil
		}
		return nil, err
	}

	detail := &Detail{
		Bill: tx.BillNumber,
		MD5:  tx.MD5Hash,
	}

	resp, err := s.gateway.CheckTransactionByMD5(ctx, token, tx.MD5Hash)
	if err != nil {
		// Transport-level failure: the transaction stays pending and
		// the caller sees a non-fatal result.
		log.Printf("gateway check failed for bill %s: %v", tx.BillNumber, err)
		detail.GatewayError = err.Error()
		detail.GatewayErrorKind = GatewayErrorTransport
		return &Result{Message: msgVerifyFailed, Detail: detail}, nil
	}

	detail.RawResponse = resp

	if !resp.Settled() {
		if resp.ResponseCode != bakong.ResponseCodeSuccess {
			detail.GatewayError = resp.ResponseMessage
			detail.GatewayErrorKind = GatewayErrorRejected
		}
		return &Result{Message: msgVerified, Detail: detail}, nil
	}

	completedAt := time.Now()
	var sendFrom, receiveTo *string
	if resp.Data.FromAccountID != "" {
		sendFrom = &resp.Data.FromAccountID
	}
	if resp.Data.ToAccountID != "" {
		receiveTo = &resp.Data.ToAccountID
	}

	updated, err := s.txRepo.MarkSuccess(tx.ID, completedAt, sendFrom, receiveTo)
	if err != nil {
		return nil, err
	}
	detail.Updated = updated

	if updated {
		tx.Status = models.TransactionStatusSuccess
		tx.CompletedAt = &completedAt
		tx.SendFrom = sendFrom
		tx.ReceiveTo = receiveTo

		// Exactly one dispatch attempt; the notifier swallows its own
		// failures and must never unwind the committed transition.
		if err := s.notifier.PaymentSuccess(ctx, tx.MerchantAccount, tx); err != nil {
			log.Printf("notifier returned error for bill %s: %v", tx.BillNumber, err)
		}
	}

	return &Result{Message: msgVerified, Detail: detail}, nil
}
