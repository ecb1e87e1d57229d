// Package bakong is the HTTP client for the Bakong open API, used to
// look up the settlement status of an issued KHQR transaction.
package bakong

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the production Bakong open API endpoint.
	DefaultBaseURL = "https://api-bakong.nbc.gov.kh"

	defaultTimeout = 15 * time.Second

	// ResponseCodeSuccess is the responseCode the gateway returns for a
	// settled transaction.
	ResponseCodeSuccess = 0
)

// TransactionData is the settlement payload returned for a settled
// transaction.
type TransactionData struct {
	Hash          string  `json:"hash"`
	FromAccountID string  `json:"fromAccountId"`
	ToAccountID   string  `json:"toAccountId"`
	Currency      string  `json:"currency"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	CreatedDate   int64   `json:"createdDateMs"`
}

// CheckResponse is the gateway's answer to a status lookup. A non-zero
// ResponseCode with ErrorCode set means "not found / not yet settled",
// which is an expected steady state while a QR is unpaid.
type CheckResponse struct {
	ResponseCode    int              `json:"responseCode"`
	ResponseMessage string           `json:"responseMessage"`
	ErrorCode       *int             `json:"errorCode"`
	Data            *TransactionData `json:"data"`
}

// Settled reports whether the response confirms a completed payment.
func (r *CheckResponse) Settled() bool {
	return r.ResponseCode == ResponseCodeSuccess && r.Data != nil
}

// Client calls the Bakong open API.
type Client interface {
	CheckTransactionByMD5(ctx context.Context, token, md5 string) (*CheckResponse, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a gateway client. An empty baseURL selects the
// production endpoint.
func NewClient(baseURL string) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithHTTP returns a client using the provided http.Client,
// for callers that need custom timeouts or transports.
func NewClientWithHTTP(baseURL string, hc *http.Client) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &client{baseURL: baseURL, httpClient: hc}
}

func (c *client) CheckTransactionByMD5(ctx context.Context, token, md5 string) (*CheckResponse, error) {
	body, err := json.Marshal(map[string]string{"md5": md5})
	if err != nil {
		return nil, fmt.Errorf("marshal check request: %w", err)
	}

	url := c.baseURL + "/v1/check_transaction_by_md5"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build check request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("gateway rejected token: status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("gateway unavailable: status %d", resp.StatusCode)
	}

	var out CheckResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return &out, nil
}
