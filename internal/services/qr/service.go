// Package qr issues KHQR payment codes and records the pending
// transaction each one represents.
package qr

import (
	"context"
	"errors"
	"strings"

	"khqrpos/internal/models"
	"khqrpos/internal/repositories"
	"khqrpos/internal/services/khqr"
	"khqrpos/internal/services/merchant"
	"khqrpos/internal/utils"
)

// billNumberRetries bounds regeneration when an insert hits the
// bill_number uniqueness constraint.
const billNumberRetries = 3

type Service interface {
	// Issue generates a payment QR for the merchant and persists a
	// pending transaction owned by userID.
	Issue(ctx context.Context, userID, merchantAccountID uint, amount float64, currency string) (*IssueResult, error)
}

type service struct {
	merchants merchant.Service
	txRepo    repositories.TransactionRepository
	encoder   khqr.Encoder
}

func NewService(merchants merchant.Service, txRepo repositories.TransactionRepository, encoder khqr.Encoder) Service {
	return &service{
		merchants: merchants,
		txRepo:    txRepo,
		encoder:   encoder,
	}
}

func (s *service) Issue(ctx context.Context, userID, merchantAccountID uint, amount float64, currency string) (*IssueResult, error) {
	if amount < 0.01 {
		return nil, ErrInvalidAmount
	}

	currencyCode, normalized, err := resolveCurrency(currency)
	if err != nil {
		return nil, err
	}

	m, err := s.merchants.Resolve(ctx, merchantAccountID, userID)
	if err != nil {
		return nil, err
	}
	if m.BakongToken == nil || *m.BakongToken == "" {
		return nil, ErrMissingToken
	}

	name := m.MerchantName
	if name == "" {
		name = defaultMerchantName
	}
	location := m.Location
	if location == "" {
		location = defaultLocation
	}

	for attempt := 0; attempt < billNumberRetries; attempt++ {
		billNumber := utils.GenerateBillNumber()

		payload, err := s.encoder.GenerateMerchant(khqr.MerchantInfo{
			AccountID:     m.AccountID,
			MerchantName:  name,
			MerchantCity:  location,
			AcquiringBank: acquiringBankSwift,
			Amount:        amount,
			Currency:      currencyCode,
			BillNumber:    billNumber,
			StoreLabel:    name,
			TerminalLabel: terminalLabel,
		})
		if err != nil {
			return nil, errors.Join(ErrEncodingFailed, err)
		}
		if payload == "" {
			return nil, ErrEncodingFailed
		}

		fingerprint := utils.MD5Hex(payload)

		tx := &models.Transaction{
			BillNumber:        billNumber,
			UserID:            userID,
			MerchantAccountID: m.ID,
			Amount:            amount,
			Currency:          normalized,
			QRString:          payload,
			MD5Hash:           fingerprint,
			Status:            models.TransactionStatusPending,
		}
		if err := s.txRepo.Create(tx); err != nil {
			if errors.Is(err, repositories.ErrDuplicateBillNumber) {
				continue
			}
			return nil, err
		}

		return &IssueResult{
			QRString:        payload,
			MD5:             fingerprint,
			BillNumber:      billNumber,
			MerchantAccount: m.AccountID,
		}, nil
	}

	return nil, ErrBillNumberExhausted
}

// resolveCurrency maps the request currency to its ISO numeric code.
// Empty defaults to KHR.
func resolveCurrency(currency string) (int, string, error) {
	switch strings.ToUpper(currency) {
	case "", models.CurrencyKHR:
		return khqr.CurrencyCodeKHR, models.CurrencyKHR, nil
	case models.CurrencyUSD:
		return khqr.CurrencyCodeUSD, models.CurrencyUSD, nil
	default:
		return 0, "", ErrUnsupportedCurrency
	}
}
