// Package khqr encodes merchant-presented KHQR payment payloads.
// KHQR is the Cambodian profile of the EMVCo merchant QR standard:
// a flat list of tag-length-value fields terminated by a CRC-16.
package khqr

import (
	"fmt"
	"strconv"
	"strings"
)

// EMVCo tags used by the merchant-presented profile.
const (
	tagPayloadFormat    = "00"
	tagPointOfInit      = "01"
	tagMerchantAccount  = "30"
	tagMerchantCategory = "52"
	tagCurrency         = "53"
	tagAmount           = "54"
	tagCountryCode      = "58"
	tagMerchantName     = "59"
	tagMerchantCity     = "60"
	tagAdditionalData   = "62"
	tagCRC              = "63"

	subTagBakongAccount = "00"
	subTagMerchantID    = "01"
	subTagAcquiringBank = "02"

	subTagBillNumber    = "01"
	subTagStoreLabel    = "03"
	subTagTerminalLabel = "07"

	payloadFormatValue = "01"
	pointOfInitDynamic = "12" // dynamic QR, amount embedded
	merchantCategory   = "5999"
	countryCode        = "KH"
)

// Encoder produces a gateway-valid KHQR payload for a merchant charge.
type Encoder interface {
	GenerateMerchant(info MerchantInfo) (string, error)
}

type emvEncoder struct{}

// NewEncoder returns the EMVCo TLV encoder.
func NewEncoder() Encoder {
	return emvEncoder{}
}

func (emvEncoder) GenerateMerchant(info MerchantInfo) (string, error) {
	if err := validate(info); err != nil {
		return "", err
	}

	var b strings.Builder
	writeTLV(&b, tagPayloadFormat, payloadFormatValue)
	writeTLV(&b, tagPointOfInit, pointOfInitDynamic)

	var acct strings.Builder
	writeTLV(&acct, subTagBakongAccount, info.AccountID)
	writeTLV(&acct, subTagMerchantID, info.AccountID)
	writeTLV(&acct, subTagAcquiringBank, info.AcquiringBank)
	writeTLV(&b, tagMerchantAccount, acct.String())

	writeTLV(&b, tagMerchantCategory, merchantCategory)
	writeTLV(&b, tagCurrency, strconv.Itoa(info.Currency))
	writeTLV(&b, tagAmount, formatAmount(info.Amount, info.Currency))
	writeTLV(&b, tagCountryCode, countryCode)
	writeTLV(&b, tagMerchantName, truncate(info.MerchantName, maxMerchantNameLen))
	writeTLV(&b, tagMerchantCity, truncate(info.MerchantCity, maxCityLen))

	var extra strings.Builder
	writeTLV(&extra, subTagBillNumber, truncate(info.BillNumber, maxBillNumberLen))
	if info.StoreLabel != "" {
		writeTLV(&extra, subTagStoreLabel, truncate(info.StoreLabel, maxMerchantNameLen))
	}
	if info.TerminalLabel != "" {
		writeTLV(&extra, subTagTerminalLabel, truncate(info.TerminalLabel, maxMerchantNameLen))
	}
	writeTLV(&b, tagAdditionalData, extra.String())

	// The CRC covers everything up to and including its own tag+length.
	payload := b.String() + tagCRC + "04"
	checksum := fmt.Sprintf("%04X", crc16([]byte(payload)))
	return payload + checksum, nil
}

func validate(info MerchantInfo) error {
	if info.AccountID == "" || len(info.AccountID) > maxAccountIDLen {
		return fmt.Errorf("%w: account id", ErrInvalidMerchantInfo)
	}
	if info.AcquiringBank == "" {
		return fmt.Errorf("%w: acquiring bank", ErrInvalidMerchantInfo)
	}
	if info.BillNumber == "" {
		return fmt.Errorf("%w: bill number", ErrInvalidMerchantInfo)
	}
	if info.Amount <= 0 {
		return ErrInvalidAmount
	}
	if info.Currency != CurrencyCodeKHR && info.Currency != CurrencyCodeUSD {
		return ErrInvalidCurrency
	}
	return nil
}

// formatAmount renders the amount without superfluous zeros. Riel has
// no minor unit, so KHR amounts are emitted as integers.
func formatAmount(amount float64, currency int) string {
	if currency == CurrencyCodeKHR {
		return strconv.FormatFloat(amount, 'f', 0, 64)
	}
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func writeTLV(b *strings.Builder, tag, value string) {
	fmt.Fprintf(b, "%s%02d%s", tag, len(value), value)
}

// truncate limits s to max characters. Slicing happens on rune
// boundaries so multi-byte names (Khmer script) stay valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
