package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction statuses. A transaction starts pending and is moved to
// success or failed exactly once by the settlement verifier.
const (
	TransactionStatusPending = "pending"
	TransactionStatusSuccess = "success"
	TransactionStatusFailed  = "failed"
)

// Supported KHQR currencies.
const (
	CurrencyKHR = "KHR"
	CurrencyUSD = "USD"
)

// Transaction records one issued payment QR and its settlement
// lifecycle. BillNumber is globally unique and never changes after
// insert. MD5Hash is the hex digest of QRString and is the lookup key
// presented to the gateway.
type Transaction struct {
	gorm.Model
	BillNumber        string           `gorm:"uniqueIndex;not null" json:"bill_number"`
	UserID            uint             `gorm:"not null;index" json:"user_id"`
	MerchantAccountID uint             `gorm:"not null;index" json:"merchant_account_id"`
	MerchantAccount   *MerchantAccount `gorm:"foreignKey:MerchantAccountID" json:"merchant_account,omitempty"`
	Amount            float64          `gorm:"not null" json:"amount"`
	Currency          string           `gorm:"size:3;not null" json:"currency"`
	QRString          string           `gorm:"type:text" json:"qr_string"`
	MD5Hash           string           `gorm:"index" json:"md5_hash"`
	Status            string           `gorm:"not null;default:'pending'" json:"status"`
	SendFrom          *string          `json:"send_from,omitempty"`
	ReceiveTo         *string          `json:"receive_to,omitempty"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
}
