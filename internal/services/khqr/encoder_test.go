package khqr

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInfo() MerchantInfo {
	return MerchantInfo{
		AccountID:     "merchant@devb",
		MerchantName:  "Coffee House",
		MerchantCity:  "Phnom Penh",
		AcquiringBank: "CADIKHPP",
		Amount:        10.00,
		Currency:      CurrencyCodeUSD,
		BillNumber:    "txn_0001",
		StoreLabel:    "Coffee House",
		TerminalLabel: "POS-01",
	}
}

func TestGenerateMerchant(t *testing.T) {
	enc := NewEncoder()

	t.Run("deterministic output", func(t *testing.T) {
		a, err := enc.GenerateMerchant(validInfo())
		require.NoError(t, err)
		b, err := enc.GenerateMerchant(validInfo())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("usd embeds numeric code 840", func(t *testing.T) {
		payload, err := enc.GenerateMerchant(validInfo())
		require.NoError(t, err)
		assert.Contains(t, payload, "5303840")
	})

	t.Run("khr embeds numeric code 116", func(t *testing.T) {
		info := validInfo()
		info.Currency = CurrencyCodeKHR
		info.Amount = 4000
		payload, err := enc.GenerateMerchant(info)
		require.NoError(t, err)
		assert.Contains(t, payload, "5303116")
		// riel has no minor unit
		assert.Contains(t, payload, "54044000")
	})

	t.Run("starts with payload format and dynamic init", func(t *testing.T) {
		payload, err := enc.GenerateMerchant(validInfo())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(payload, "000201"+"010212"))
	})

	t.Run("bill number present in additional data", func(t *testing.T) {
		payload, err := enc.GenerateMerchant(validInfo())
		require.NoError(t, err)
		assert.Contains(t, payload, "txn_0001")
	})

	t.Run("khmer merchant name truncates on rune boundary", func(t *testing.T) {
		info := validInfo()
		// 30 runes of Khmer script, 3 bytes each, over the name limit
		info.MerchantName = strings.Repeat("ហ", 30)
		payload, err := enc.GenerateMerchant(info)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(payload))
		assert.Contains(t, payload, strings.Repeat("ហ", 25))
		assert.NotContains(t, payload, strings.Repeat("ហ", 26))
	})

	t.Run("crc verifies", func(t *testing.T) {
		payload, err := enc.GenerateMerchant(validInfo())
		require.NoError(t, err)
		require.Greater(t, len(payload), 4)

		body := payload[:len(payload)-4]
		want := payload[len(payload)-4:]
		assert.Equal(t, want, fmt.Sprintf("%04X", crc16([]byte(body))))
	})
}

func TestGenerateMerchantValidation(t *testing.T) {
	enc := NewEncoder()

	tests := []struct {
		name    string
		mutate  func(*MerchantInfo)
		wantErr error
	}{
		{"missing account id", func(i *MerchantInfo) { i.AccountID = "" }, ErrInvalidMerchantInfo},
		{"missing acquiring bank", func(i *MerchantInfo) { i.AcquiringBank = "" }, ErrInvalidMerchantInfo},
		{"missing bill number", func(i *MerchantInfo) { i.BillNumber = "" }, ErrInvalidMerchantInfo},
		{"zero amount", func(i *MerchantInfo) { i.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(i *MerchantInfo) { i.Amount = -5 }, ErrInvalidAmount},
		{"unsupported currency", func(i *MerchantInfo) { i.Currency = 978 }, ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := validInfo()
			tt.mutate(&info)
			_, err := enc.GenerateMerchant(info)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCRC16KnownVector(t *testing.T) {
	// CRC-16/CCITT-FALSE("123456789") = 0x29B1
	assert.Equal(t, uint16(0x29B1), crc16([]byte("123456789")))
}
