package khqr

// ISO 4217 numeric codes accepted by the Bakong network.
const (
	CurrencyCodeKHR = 116
	CurrencyCodeUSD = 840
)

// EMVCo field lengths enforced by the encoder.
const (
	maxMerchantNameLen = 25
	maxCityLen         = 15
	maxBillNumberLen   = 25
	maxAccountIDLen    = 32
)

// MerchantInfo carries the identity and payment fields embedded in a
// merchant-presented KHQR payload.
type MerchantInfo struct {
	AccountID     string
	MerchantName  string
	MerchantCity  string
	AcquiringBank string
	Amount        float64
	Currency      int
	BillNumber    string
	StoreLabel    string
	TerminalLabel string
}
