package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"boletera/internal/shared/apperrors"
	"boletera/internal/shared/config"
)

// ProviderClient talks to the external card-payment provider. Every call
// returns the per-attempt logs alongside the result so the caller can
// persist the full audit trail whatever the outcome.
type ProviderClient interface {
	Create(ctx context.Context, buyOrder, sessionID string, amount int64) (*ProviderCreateResponse, []AttemptLog, error)
	Confirm(ctx context.Context, token string) (*ProviderConfirmResponse, []AttemptLog, error)
	Refund(ctx context.Context, token string, amount int64) (*ProviderRefundResponse, []AttemptLog, error)
}

type ProviderCreateResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type ProviderConfirmResponse struct {
	VCI               string `json:"vci"`
	Amount            int64  `json:"amount"`
	Status            string `json:"status"`
	BuyOrder          string `json:"buy_order"`
	SessionID         string `json:"session_id"`
	AccountingDate    string `json:"accounting_date"`
	TransactionDate   string `json:"transaction_date"`
	AuthorizationCode string `json:"authorization_code"`
	PaymentTypeCode   string `json:"payment_type_code"`
	ResponseCode      int    `json:"response_code"`
	InstallmentsNum   int    `json:"installments_number"`
}

// Approved reports whether the provider authorized the charge.
func (r *ProviderConfirmResponse) Approved() bool {
	return r.ResponseCode == 0 && r.Status == "AUTHORIZED"
}

type ProviderRefundResponse struct {
	Type              string `json:"type"`
	AuthorizationCode string `json:"authorization_code"`
	ResponseCode      int    `json:"response_code"`
	NullifiedAmount   int64  `json:"nullified_amount,omitempty"`
	Balance           int64  `json:"balance,omitempty"`
}

func (r *ProviderRefundResponse) Approved() bool {
	return r.Type == "REVERSED" || (r.Type == "NULLIFIED" && r.ResponseCode == 0)
}

// AttemptLog captures one HTTP attempt against the provider.
type AttemptLog struct {
	Operation       string
	Attempt         int
	RequestPayload  string
	ResponsePayload string
	StatusCode      int
	Success         bool
	Duration        time.Duration
	ErrorMessage    string
}

type webpayClient struct {
	baseURL      string
	commerceCode string
	apiKey       string
	returnURL    string
	retryMax     int
	retryBackoff time.Duration
	httpClient   *http.Client
	now          func() time.Time
}

// NewWebpayClient builds the REST client for a WebPay-Plus-compatible
// provider endpoint.
func NewWebpayClient(cfg *config.ProviderConfig) ProviderClient {
	return &webpayClient{
		baseURL:      cfg.BaseURL,
		commerceCode: cfg.CommerceCode,
		apiKey:       cfg.APIKey,
		returnURL:    cfg.ReturnURL,
		retryMax:     cfg.RetryMax,
		retryBackoff: cfg.RetryBackoff,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		now:          time.Now,
	}
}

func (c *webpayClient) Create(ctx context.Context, buyOrder, sessionID string, amount int64) (*ProviderCreateResponse, []AttemptLog, error) {
	body := map[string]interface{}{
		"buy_order":  buyOrder,
		"session_id": sessionID,
		"amount":     amount,
		"return_url": c.returnURL,
	}
	var out ProviderCreateResponse
	logs, err := c.do(ctx, "create", http.MethodPost, "/transactions", body, &out)
	if err != nil {
		return nil, logs, err
	}
	return &out, logs, nil
}

func (c *webpayClient) Confirm(ctx context.Context, token string) (*ProviderConfirmResponse, []AttemptLog, error) {
	var out ProviderConfirmResponse
	logs, err := c.do(ctx, "confirm", http.MethodPut, "/transactions/"+token, nil, &out)
	if err != nil {
		return nil, logs, err
	}
	return &out, logs, nil
}

func (c *webpayClient) Refund(ctx context.Context, token string, amount int64) (*ProviderRefundResponse, []AttemptLog, error) {
	body := map[string]interface{}{"amount": amount}
	var out ProviderRefundResponse
	logs, err := c.do(ctx, "refund", http.MethodPost, "/transactions/"+token+"/refunds", body, &out)
	if err != nil {
		return nil, logs, err
	}
	return &out, logs, nil
}

// do runs one provider operation with the retry budget. Transport failures
// and 5xx responses are retried with exponential backoff; a 4xx is a
// permanent rejection and is never retried.
func (c *webpayClient) do(ctx context.Context, operation, method, path string, body interface{}, out interface{}) ([]AttemptLog, error) {
	var requestPayload []byte
	if body != nil {
		var err error
		requestPayload, err = json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, "failed to encode provider request", err)
		}
	}

	var logs []AttemptLog
	var lastErr error

	for attempt := 1; attempt <= c.retryMax; attempt++ {
		if attempt > 1 {
			backoff := c.retryBackoff * time.Duration(1<<(attempt-2))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return logs, apperrors.Wrap(apperrors.KindProviderTransport, "provider request cancelled", ctx.Err())
			}
		}

		entry := AttemptLog{
			Operation:      operation,
			Attempt:        attempt,
			RequestPayload: string(requestPayload),
		}
		start := c.now()

		statusCode, responseBody, err := c.attempt(ctx, method, path, requestPayload)
		entry.Duration = c.now().Sub(start)
		entry.StatusCode = statusCode
		entry.ResponsePayload = string(responseBody)

		if err != nil {
			entry.ErrorMessage = err.Error()
			logs = append(logs, entry)
			lastErr = err
			continue
		}

		if statusCode >= 500 {
			entry.ErrorMessage = fmt.Sprintf("provider returned %d", statusCode)
			logs = append(logs, entry)
			lastErr = fmt.Errorf("provider returned %d", statusCode)
			continue
		}

		if statusCode >= 400 {
			entry.ErrorMessage = fmt.Sprintf("provider rejected with %d", statusCode)
			logs = append(logs, entry)
			return logs, apperrors.Newf(apperrors.KindProviderRejected, "provider rejected %s request", operation)
		}

		if err := json.Unmarshal(responseBody, out); err != nil {
			entry.ErrorMessage = "invalid provider response body"
			logs = append(logs, entry)
			return logs, apperrors.Wrap(apperrors.KindProviderTransport, "invalid provider response body", err)
		}

		entry.Success = true
		logs = append(logs, entry)
		return logs, nil
	}

	return logs, apperrors.Wrap(apperrors.KindProviderTransport,
		fmt.Sprintf("provider %s failed after %d attempts", operation, c.retryMax), lastErr)
}

func (c *webpayClient) attempt(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, responseBody, nil
}
