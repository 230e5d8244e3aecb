package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"smm-storefront/internal/domain/model"
	"smm-storefront/internal/domain/ports/adapter"
	"smm-storefront/internal/infra/metrics"
)

// Both supported panels speak the same form-encoded dialect
// (action=add / action=status against a single endpoint), so one client
// implementation serves both; the two providers are two configured instances.
var _ adapter.EngagementProvider = (*PanelClient)(nil)

const (
	defaultTimeout = 10 * time.Second
	maxBodyCapture = 2048 // raw bodies kept for diagnostics are truncated to this
)

type PanelConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type PanelClient struct {
	name   string
	apiKey string
	http   *resty.Client
	log    *zerolog.Logger
}

func NewPanelClient(cfg PanelConfig, logger *zerolog.Logger) *PanelClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	compLog := logger.With().Str("component", "PanelClient").Str("provider", cfg.Name).Logger()
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &PanelClient{
		name:   cfg.Name,
		apiKey: cfg.APIKey,
		http:   client,
		log:    &compLog,
	}
}

func (c *PanelClient) Name() string { return c.name }

// submitResponse tolerates both numeric and quoted order ids; panels disagree.
type submitResponse struct {
	Order json.Number `json:"order"`
	Error string      `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// SubmitOrder places an order via `action=add`. A response without an `order`
// field is an error regardless of HTTP status code.
func (c *PanelClient) SubmitOrder(ctx context.Context, serviceID int64, target string, quantity int) (string, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"key":      c.apiKey,
			"action":   "add",
			"service":  strconv.FormatInt(serviceID, 10),
			"link":     target,
			"quantity": strconv.Itoa(quantity),
		}).
		Post("")
	metrics.ObserveProviderCall(c.name, "add", time.Since(start), err == nil)
	if err != nil {
		return "", c.classify("add", err)
	}

	body := truncate(resp.Body())
	var parsed submitResponse
	if uerr := json.Unmarshal(resp.Body(), &parsed); uerr != nil {
		metrics.IncProviderError(c.name, "parse")
		return "", &PanelError{Provider: c.name, Op: "add", RawBody: body, Err: uerr}
	}
	if parsed.Error != "" {
		metrics.IncProviderError(c.name, "upstream")
		return "", &PanelError{Provider: c.name, Op: "add", RawBody: body, Err: errors.New(parsed.Error)}
	}
	if parsed.Order.String() == "" {
		metrics.IncProviderError(c.name, "no_order")
		return "", &PanelError{Provider: c.name, Op: "add", RawBody: body, Err: errors.New("response missing order id")}
	}
	c.log.Debug().Str("order", parsed.Order.String()).Int("quantity", quantity).Msg("order submitted")
	return parsed.Order.String(), nil
}

// QueryStatus fetches the panel's free-text status via `action=status` and
// maps it through MapRawStatus.
func (c *PanelClient) QueryStatus(ctx context.Context, upstreamOrderID string) (model.OrderStatus, string, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"key":    c.apiKey,
			"action": "status",
			"order":  upstreamOrderID,
		}).
		Post("")
	metrics.ObserveProviderCall(c.name, "status", time.Since(start), err == nil)
	if err != nil {
		return "", "", c.classify("status", err)
	}

	body := truncate(resp.Body())
	var parsed statusResponse
	if uerr := json.Unmarshal(resp.Body(), &parsed); uerr != nil {
		metrics.IncProviderError(c.name, "parse")
		return "", "", &PanelError{Provider: c.name, Op: "status", RawBody: body, Err: uerr}
	}
	if parsed.Error != "" {
		metrics.IncProviderError(c.name, "upstream")
		return "", "", &PanelError{Provider: c.name, Op: "status", RawBody: body, Err: errors.New(parsed.Error)}
	}
	if parsed.Status == "" {
		metrics.IncProviderError(c.name, "no_status")
		return "", "", &PanelError{Provider: c.name, Op: "status", RawBody: body, Err: errors.New("response missing status")}
	}
	return MapRawStatus(parsed.Status), parsed.Status, nil
}

// classify separates timeouts (retryable under the claim protocol) from other
// transport failures.
func (c *PanelClient) classify(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		metrics.IncProviderError(c.name, "timeout")
		return &TimeoutError{Provider: c.name, Op: op, Err: err}
	}
	metrics.IncProviderError(c.name, "transport")
	return &PanelError{Provider: c.name, Op: op, Err: err}
}

func truncate(b []byte) string {
	if len(b) > maxBodyCapture {
		b = b[:maxBodyCapture]
	}
	return string(b)
}
