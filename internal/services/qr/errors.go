package qr

import "errors"

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrUnsupportedCurrency = errors.New("currency must be KHR or USD")
	ErrMissingToken        = errors.New("merchant account has no bakong token")
	ErrEncodingFailed      = errors.New("QR generation failed")
	ErrBillNumberExhausted = errors.New("could not allocate a unique bill number")
)
