package qr

// IssueResult is returned to the caller after a QR has been generated
// and its pending transaction persisted.
type IssueResult struct {
	QRString        string `json:"qr_string"`
	MD5             string `json:"md5"`
	BillNumber      string `json:"bill_number"`
	MerchantAccount string `json:"merchant_account"`
}

// Defaults applied when a merchant row leaves identity fields empty,
// matching what the POS terminals expect.
const (
	defaultMerchantName = "Merchant POS"
	defaultLocation     = "Phnom Penh"
	acquiringBankSwift  = "CADIKHPP"
	terminalLabel       = "POS-01"
)
