package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	dErrors "harambee/pkg/domainerrors"
	"harambee/pkg/platform/circuit"
	"harambee/pkg/platform/sentinel"
)

const intentsPath = "/v1/payment_intents"

// minorUnits converts a major-unit amount to the provider's integer minor
// units (KES cents).
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// HTTPClient is the production Client. Calls go through a circuit breaker so
// a dead provider fails fast instead of tying up request handlers.
type HTTPClient struct {
	baseURL   string
	secretKey string
	http      *http.Client
	breaker   *circuit.Breaker
	logger    *slog.Logger

	probeMu       sync.Mutex
	nextProbe     time.Time
	probeInterval time.Duration
}

// NewHTTPClient builds a client against baseURL authenticating with
// secretKey. A zero timeout defaults to ten seconds.
func NewHTTPClient(baseURL, secretKey string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		secretKey:     secretKey,
		http:          &http.Client{Timeout: timeout},
		breaker:       circuit.New("payment-gateway", circuit.WithFailureThreshold(3)),
		logger:        logger,
		probeInterval: 30 * time.Second,
	}
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CreateIntent opens a payment intent with the provider. While the breaker is
// open it returns sentinel.ErrUnavailable without touching the network.
func (c *HTTPClient) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if c.breaker.IsOpen() {
		// Probe occasionally so the breaker can close again.
		if !c.allowProbe() {
			return nil, fmt.Errorf("payment gateway circuit open: %w", sentinel.ErrUnavailable)
		}
	}

	intent, err := c.createIntent(ctx, req)
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.Warn("payment gateway circuit opened", "error", err)
		}
		return nil, err
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("payment gateway circuit closed")
	}
	return intent, nil
}

// allowProbe admits one request per probe interval while the circuit is
// open; successful probes eventually close it again.
func (c *HTTPClient) allowProbe() bool {
	c.probeMu.Lock()
	defer c.probeMu.Unlock()
	now := time.Now()
	if now.Before(c.nextProbe) {
		return false
	}
	c.nextProbe = now.Add(c.probeInterval)
	return true
}

func (c *HTTPClient) createIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", minorUnits(req.Amount)))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("metadata[villagerId]", req.VillagerID)
	form.Set("metadata[sponsorId]", req.SponsorID)
	form.Set("metadata[sponsorshipType]", req.SponsorshipType)
	form.Set("metadata[componentType]", req.ComponentType)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+intentsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building intent request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling payment gateway: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading gateway response: %w", err)
	}

	var parsed intentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding gateway response (status %d): %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("gateway returned %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	case resp.StatusCode >= 400:
		msg := "payment gateway rejected the request"
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, msg)
	}

	if parsed.ID == "" {
		return nil, fmt.Errorf("gateway response missing intent id")
	}
	return &Intent{ID: parsed.ID, ClientSecret: parsed.ClientSecret, Status: parsed.Status}, nil
}
