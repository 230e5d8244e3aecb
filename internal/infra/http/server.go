// Package http hosts the public-facing server: the payment-confirmation
// webhook and the promotional free-trial endpoint.
package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smm-storefront/internal/config"
	"smm-storefront/internal/domain"
	"smm-storefront/internal/infra/logging"
	"smm-storefront/internal/infra/metrics"
	red "smm-storefront/internal/infra/redis"
	"smm-storefront/internal/infra/worker"
	"smm-storefront/internal/usecase"
)

const maxWebhookBody = 64 << 10 // payment payloads are size-bounded

type Server struct {
	fulUC       usecase.FulfillmentUseCase
	trialUC     usecase.FreeTrialUseCase
	pool        *worker.Pool
	rateLimiter *red.RateLimiter // optional
	cfg         *config.Config
	log         *zerolog.Logger
}

func NewServer(
	fulUC usecase.FulfillmentUseCase,
	trialUC usecase.FreeTrialUseCase,
	pool *worker.Pool,
	rateLimiter *red.RateLimiter,
	cfg *config.Config,
	logger *zerolog.Logger,
) *Server {
	compLog := logger.With().Str("component", "WebhookServer").Logger()
	return &Server{
		fulUC:       fulUC,
		trialUC:     trialUC,
		pool:        pool,
		rateLimiter: rateLimiter,
		cfg:         cfg,
		log:         &compLog,
	}
}

// Register attaches handlers to the provided mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/webhook/payment", s.handlePaymentWebhook)
	mux.HandleFunc("/api/free-trial", s.handleFreeTrial)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// webhookRequest is the payment gateway's delivery: the payment reference,
// the receipt email and an opaque base64 payload carrying the order metadata
// attached at checkout.
type webhookRequest struct {
	PaymentRef string `json:"payment_ref"`
	Email      string `json:"email"`
	Payload    string `json:"payload"`
}

type webhookPayload struct {
	Platform  string `json:"platform"`
	Service   string `json:"service"`
	Quantity  int    `json:"quantity"`
	Target    string `json:"target"`
	Reference string `json:"reference"` // some checkouts send the target under this key
	Total     int64  `json:"total"`
	Currency  string `json:"currency"`
	Email     string `json:"email"`
}

type orderResponse struct {
	OrderID         string  `json:"order_id"`
	Status          string  `json:"status"`
	UpstreamOrderID *string `json:"upstream_order_id,omitempty"`
}

// handlePaymentWebhook implements claim-then-acknowledge-then-process-async:
// the durable claim decides the acknowledgment, not the latency or outcome of
// the upstream submission. A redelivered event hits the claim and is absorbed.
func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
		return
	}
	if !VerifyWebhookSignature(s.cfg.Webhook.Secret, body, r.Header.Get("X-Webhook-Signature")) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature rejected")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	evt, err := decodeEvent(req)
	if err != nil {
		s.log.Warn().Err(err).Str("payment_ref", req.PaymentRef).Msg("webhook payload rejected")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	ctx := logging.WithTraceID(r.Context(), uuid.NewString())
	ctx = logging.WithPaymentRef(ctx, evt.PaymentRef)

	order, claimed, err := s.fulUC.Claim(ctx, evt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		// Not durably recorded; let the gateway redeliver.
		s.log.Error().Err(err).Str("payment_ref", evt.PaymentRef).Msg("order claim failed")
		http.Error(w, "Temporary failure", http.StatusInternalServerError)
		return
	}

	// Snapshot the response before handing the order to the pool: Process
	// mutates Status and UpstreamOrderID from a worker goroutine.
	resp := orderResponse{
		OrderID:         order.ID,
		Status:          string(order.Status),
		UpstreamOrderID: order.UpstreamOrderID,
	}

	if claimed {
		asyncOrder := *order
		task := func(taskCtx context.Context) error {
			procCtx, cancel := context.WithTimeout(taskCtx, 30*time.Second)
			defer cancel()
			procCtx = logging.WithOrderID(procCtx, asyncOrder.ID)
			_, perr := s.fulUC.Process(procCtx, &asyncOrder)
			return perr
		}
		if err := s.pool.Submit(task); err != nil {
			// Claim is durable; the sweep's stale-pending retry picks it up.
			s.log.Warn().Err(err).Str("order_id", order.ID).Msg("async fulfillment deferred to sweep")
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func decodeEvent(req webhookRequest) (usecase.PaymentEvent, error) {
	var evt usecase.PaymentEvent
	if req.PaymentRef == "" {
		return evt, fmt.Errorf("missing payment_ref")
	}
	raw, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		return evt, fmt.Errorf("payload is not base64: %w", err)
	}
	var p webhookPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return evt, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	target := p.Target
	if target == "" {
		target = p.Reference
	}
	email := p.Email
	if email == "" {
		email = req.Email
	}
	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}
	return usecase.PaymentEvent{
		PaymentRef: req.PaymentRef,
		Platform:   p.Platform,
		Service:    p.Service,
		Target:     target,
		Quantity:   p.Quantity,
		PriceMinor: p.Total,
		Currency:   currency,
		Email:      email,
	}, nil
}

type freeTrialRequest struct {
	Email  string `json:"email"`
	Target string `json:"target"`
}

func (s *Server) handleFreeTrial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ip := clientIP(r)
	if s.rateLimiter != nil {
		ok, err := s.rateLimiter.Allow(r.Context(), red.FreeTrialKey(ip), s.cfg.FreeTrial.PerIPRate, s.cfg.FreeTrial.Window)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable, letting request through")
		} else if !ok {
			metrics.IncFreeTrial("rate_limited")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
	}

	var req freeTrialRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := s.trialUC.Request(r.Context(), usecase.FreeTrialRequest{
		Email:  req.Email,
		Target: req.Target,
		IP:     ip,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		s.log.Error().Err(err).Str("target", req.Target).Msg("free trial failed")
		http.Error(w, "Temporary failure", http.StatusInternalServerError)
		return
	}

	if res.AlreadyUsed {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_used"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":            "granted",
		"upstream_order_id": res.UpstreamOrderID,
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
