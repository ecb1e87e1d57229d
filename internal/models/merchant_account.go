package models

import "gorm.io/gorm"

// MerchantAccount is a Bakong-registered merchant identity. The
// BakongToken is the credential used against the gateway; it is
// nullable and QR issuance is blocked while it is absent. Telegram
// credentials are optional and only used for payment alerts.
type MerchantAccount struct {
	gorm.Model
	AccountID        string  `gorm:"uniqueIndex;not null" json:"account_id"`
	MerchantName     string  `json:"merchant_name"`
	Location         string  `json:"location"`
	BakongToken      *string `json:"-"`
	TelegramChatID   string  `json:"telegram_chat_id"`
	TelegramBotToken string  `json:"-"`
	UserID           uint    `json:"user_id"`
}

type CreateMerchantAccountInput struct {
	AccountID        string  `json:"account_id" validate:"required,max=255"`
	MerchantName     string  `json:"merchant_name" validate:"omitempty,max=255"`
	Location         string  `json:"location" validate:"omitempty,max=255"`
	BakongToken      *string `json:"bakong_token" validate:"omitempty,max=255"`
	TelegramChatID   string  `json:"telegram_chat_id" validate:"omitempty,max=255"`
	TelegramBotToken string  `json:"telegram_bot_token" validate:"omitempty,max=255"`
	UserID           uint    `json:"user_id" validate:"required"`
}

type UpdateMerchantAccountInput struct {
	AccountID        *string `json:"account_id" validate:"omitempty,max=255"`
	MerchantName     *string `json:"merchant_name" validate:"omitempty,max=255"`
	Location         *string `json:"location" validate:"omitempty,max=255"`
	BakongToken      *string `json:"bakong_token" validate:"omitempty,max=255"`
	TelegramChatID   *string `json:"telegram_chat_id" validate:"omitempty,max=255"`
	TelegramBotToken *string `json:"telegram_bot_token" validate:"omitempty,max=255"`
	UserID           *uint   `json:"user_id"`
}
