package psp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/church-admin-api/pkg/resilience"
)

var tracer = otel.Tracer("psp")

// HTTPProvider talks to a PIX PSP over its REST API.
type HTTPProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewHTTPProvider creates a provider client. A nil breaker disables circuit breaking.
func NewHTTPProvider(httpClient *http.Client, baseURL, apiKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *HTTPProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPProvider{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cb:         cb,
		cfg:        cfg,
	}
}

type createChargeRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// CreatePayment issues a new charge. Every retry reuses the same idempotency key.
func (p *HTTPProvider) CreatePayment(ctx context.Context, amount int64, description string, ttl time.Duration) (*Charge, error) {
	ctx, span := tracer.Start(ctx, "HTTPProvider.CreatePayment", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int64("pix.amount", amount))

	body, err := json.Marshal(createChargeRequest{
		Amount:      amount,
		Description: description,
		ExpiresIn:   int64(ttl.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("encode charge request: %w", err)
	}

	idempotencyKey := uuid.NewString()
	var charge Charge
	err = p.execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/charges", bytes.NewReader(body))
		if err != nil {
			return resilience.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", idempotencyKey)
		return p.do(req, &charge)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create charge failed")
		return nil, err
	}
	if charge.TxID == "" {
		return nil, errors.New("psp: charge response without txId")
	}
	span.SetAttributes(attribute.String("pix.tx_id", charge.TxID))
	return &charge, nil
}

// CheckStatus reads the provider's current status for a charge.
func (p *HTTPProvider) CheckStatus(ctx context.Context, txID string) (*StatusResult, error) {
	ctx, span := tracer.Start(ctx, "HTTPProvider.CheckStatus", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("pix.tx_id", txID))

	var result StatusResult
	err := p.execute(ctx, func() error {
		endpoint := fmt.Sprintf("%s/v1/charges/%s", p.baseURL, url.PathEscape(txID))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return resilience.Permanent(err)
		}
		return p.do(req, &result)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "check status failed")
		return nil, err
	}
	if !result.Status.Valid() {
		return nil, fmt.Errorf("psp: unknown status %q for %s", result.Status, txID)
	}
	if result.TxID == "" {
		result.TxID = txID
	}
	return &result, nil
}

func (p *HTTPProvider) execute(ctx context.Context, call func() error) error {
	run := func() error {
		return resilience.RetryWithBackoff(ctx, p.cfg, call)
	}
	if p.cb == nil {
		return run()
	}
	_, err := p.cb.Execute(func() (any, error) {
		return nil, run()
	})
	return err
}

func (p *HTTPProvider) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resilience.Permanent(ErrChargeNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf("psp returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
		if retryable(resp.StatusCode) {
			return statusErr
		}
		return resilience.Permanent(statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resilience.Permanent(fmt.Errorf("decode psp response: %w", err))
	}
	return nil
}

func retryable(status int) bool {
	return status >= 500 || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
}

var _ Provider = (*HTTPProvider)(nil)
