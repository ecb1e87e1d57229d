package khqr

import "errors"

var (
	ErrInvalidMerchantInfo = errors.New("invalid merchant info")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCurrency     = errors.New("invalid currency code")
)
