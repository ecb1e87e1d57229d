// Package notification delivers one-shot payment alerts to a
// merchant's Telegram channel. Delivery is best effort: a missing or
// failing channel never affects the transaction that triggered it.
package notification

import (
	"context"
	"fmt"
	"log"

	"khqrpos/internal/models"
)

// Notifier sends a payment-success alert for a settled transaction.
type Notifier interface {
	PaymentSuccess(ctx context.Context, merchant *models.MerchantAccount, tx *models.Transaction) error
}

type service struct {
	sender MessageSender
}

// MessageSender delivers raw text to a chat. Implemented by the
// Telegram client; faked in tests.
type MessageSender interface {
	SendMessage(ctx context.Context, botToken, chatID, text string) error
}

// NewService returns a Notifier backed by the given sender.
func NewService(sender MessageSender) Notifier {
	return &service{sender: sender}
}

// PaymentSuccess formats and sends the settlement alert. Missing
// credentials downgrade to a logged warning; transport failures are
// logged and swallowed.
func (s *service) PaymentSuccess(ctx context.Context, merchant *models.MerchantAccount, tx *models.Transaction) error {
	if merchant == nil {
		log.Printf("notification skipped: no merchant for transaction %s", tx.BillNumber)
		return nil
	}
	if merchant.TelegramBotToken == "" || merchant.TelegramChatID == "" {
		log.Printf("notification skipped: missing Telegram credentials for merchant %d", merchant.ID)
		return nil
	}

	text := formatPaymentAlert(merchant, tx)
	if err := s.sender.SendMessage(ctx, merchant.TelegramBotToken, merchant.TelegramChatID, text); err != nil {
		log.Printf("Telegram alert failed for bill %s: %v", tx.BillNumber, err)
	}
	return nil
}

func formatPaymentAlert(merchant *models.MerchantAccount, tx *models.Transaction) string {
	completed := "-"
	if tx.CompletedAt != nil {
		completed = tx.CompletedAt.Format("02 Jan 2006 3:04 PM")
	}
	sendFrom, receiveTo := "-", "-"
	if tx.SendFrom != nil {
		sendFrom = *tx.SendFrom
	}
	if tx.ReceiveTo != nil {
		receiveTo = *tx.ReceiveTo
	}

	return fmt.Sprintf(
		"<b>Merchant POS Payment Success</b>\n"+
			"Bill No: <code>%s</code>\n"+
			"Merchant Name: <code>%s</code>\n"+
			"Account: <code>%s</code>\n"+
			"Amount: <b>%.2f %s</b>\n"+
			"From: <code>%s</code>\n"+
			"To: <code>%s</code>\n"+
			"MD5: <code>%s</code>\n"+
			"Date & Time: %s",
		tx.BillNumber,
		merchant.MerchantName,
		merchant.AccountID,
		tx.Amount,
		tx.Currency,
		sendFrom,
		receiveTo,
		tx.MD5Hash,
		completed,
	)
}
