package merchant

import "errors"

var (
	ErrMerchantNotFound   = errors.New("merchant account not found")
	ErrTokenNotFound      = errors.New("no bakong token configured")
	ErrDuplicateAccountID = errors.New("account id already exists")
)
