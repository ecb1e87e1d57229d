package verification

import "khqrpos/internal/gateway/bakong"

// GatewayErrorKind distinguishes failures that may clear up on retry
// from terminal rejections.
type GatewayErrorKind string

const (
	// GatewayErrorNone means the gateway answered and no fault occurred.
	GatewayErrorNone GatewayErrorKind = ""
	// GatewayErrorTransport covers timeouts, connection failures, and
	// 5xx responses; retrying later is reasonable.
	GatewayErrorTransport GatewayErrorKind = "transport"
	// GatewayErrorRejected covers authoritative non-success answers
	// (e.g. a revoked token); retrying without operator action won't help.
	GatewayErrorRejected GatewayErrorKind = "rejected"
)

// Result describes the outcome of one verification pass. A nil Detail
// with a message means there was nothing to verify.
type Result struct {
	Message string  `json:"message"`
	Detail  *Detail `json:"result"`
}

// Detail carries per-transaction verification output, mirroring the
// shape clients already consume.
type Detail struct {
	Bill        string                `json:"bill"`
	MD5         string                `json:"md5"`
	RawResponse *bakong.CheckResponse `json:"raw_response"`
	Updated     bool                  `json:"updated"`

	// GatewayError is set when the lookup failed without settling.
	GatewayError     string           `json:"gateway_error,omitempty"`
	GatewayErrorKind GatewayErrorKind `json:"gateway_error_kind,omitempty"`
}

const (
	msgNoPending       = "No pending transactions found."
	msgVerified        = "MD5 verification complete"
	msgVerifyFailed    = "Error verifying transaction"
	msgNoMerchantToken = "No merchant account or token found."
)
