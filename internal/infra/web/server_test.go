//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"smm-storefront/internal/domain"
	"smm-storefront/internal/domain/model"
	"smm-storefront/internal/domain/ports/repository"
)

// stubOrderRepo serves canned orders for handler tests.
type stubOrderRepo struct {
	repository.OrderRepository // panics on anything not overridden below
	orders                     []*model.Order
}

func (s *stubOrderRepo) find(match func(*model.Order) bool) (*model.Order, error) {
	for _, o := range s.orders {
		if match(o) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	return s.find(func(o *model.Order) bool { return o.ID == id })
}

func (s *stubOrderRepo) FindByPaymentRef(ctx context.Context, tx repository.Tx, ref string) (*model.Order, error) {
	return s.find(func(o *model.Order) bool { return o.PaymentRef == ref })
}

func (s *stubOrderRepo) FindByUpstreamID(ctx context.Context, tx repository.Tx, up string) (*model.Order, error) {
	return s.find(func(o *model.Order) bool { return o.UpstreamOrderID != nil && *o.UpstreamOrderID == up })
}

func (s *stubOrderRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.OrderStatus, offset, limit int) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range s.orders {
		if o.Status == status {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

type stubStats struct {
	totals map[model.OrderStatus]int
}

func (s *stubStats) Totals(ctx context.Context) (map[model.OrderStatus]int, error) {
	return s.totals, nil
}

func (s *stubStats) Revenue(ctx context.Context) (int64, int64, int64, error) {
	return 1000, 5000, 60000, nil
}

func newAdminServer(t *testing.T) *httptest.Server {
	t.Helper()
	up := "991234"
	repo := &stubOrderRepo{orders: []*model.Order{
		{ID: "01J0ORDER1", PaymentRef: "pay_001", UpstreamOrderID: &up, Status: model.OrderStatusProcessing},
		{ID: "01J0ORDER2", PaymentRef: "pay_002", Status: model.OrderStatusCompleted},
	}}
	stats := &stubStats{totals: map[model.OrderStatus]int{
		model.OrderStatusProcessing: 1,
		model.OrderStatusCompleted:  1,
	}}
	logger := zerolog.Nop()
	auth := NewAuthManager("admin-test-secret", false, time.Hour)
	srv := NewServer(stats, repo, auth, "hunter2", &logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func login(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	body := bytes.NewReader([]byte(`{"password":"hunter2"}`))
	resp, err := http.Post(ts.URL+"/api/v1/auth/login", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d, want 200", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["token"] == "" {
		t.Fatal("expected a session token")
	}
	return out["token"]
}

func authedGet(t *testing.T, ts *httptest.Server, token, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAdminAPI_Auth(t *testing.T) {
	ts := newAdminServer(t)

	t.Run("should reject requests without a session", func(t *testing.T) {
		for _, path := range []string{"/api/v1/stats", "/api/v1/orders", "/api/v1/orders/x"} {
			if resp := authedGet(t, ts, "", path); resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("%s: status %d, want 401", path, resp.StatusCode)
			}
		}
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		body := bytes.NewReader([]byte(`{"password":"wrong"}`))
		resp, err := http.Post(ts.URL+"/api/v1/auth/login", "application/json", body)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status %d, want 403", resp.StatusCode)
		}
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		other := NewAuthManager("another-secret", false, time.Hour)
		tok, err := other.Mint(httptest.NewRecorder())
		if err != nil {
			t.Fatal(err)
		}
		if resp := authedGet(t, ts, tok, "/api/v1/stats"); resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status %d, want 401", resp.StatusCode)
		}
	})

	t.Run("should not guard health and metrics", func(t *testing.T) {
		for _, path := range []string{"/health", "/metrics"} {
			if resp := authedGet(t, ts, "", path); resp.StatusCode != http.StatusOK {
				t.Errorf("%s: status %d, want 200", path, resp.StatusCode)
			}
		}
	})
}

func TestAdminAPI_Handlers(t *testing.T) {
	ts := newAdminServer(t)
	token := login(t, ts)

	t.Run("should serve stats", func(t *testing.T) {
		resp := authedGet(t, ts, token, "/api/v1/stats")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d, want 200", resp.StatusCode)
		}
		var out struct {
			OrdersByStatus map[string]int `json:"orders_by_status"`
			Revenue        struct {
				Week int64 `json:"week"`
			} `json:"revenue_minor"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		if out.OrdersByStatus["processing"] != 1 || out.Revenue.Week != 1000 {
			t.Errorf("unexpected stats: %+v", out)
		}
	})

	t.Run("should list orders by status", func(t *testing.T) {
		resp := authedGet(t, ts, token, "/api/v1/orders?status=completed")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d, want 200", resp.StatusCode)
		}
		var out struct {
			Data []*model.Order `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		if len(out.Data) != 1 || out.Data[0].ID != "01J0ORDER2" {
			t.Errorf("unexpected list: %+v", out.Data)
		}
	})

	t.Run("should look an order up by any identifier", func(t *testing.T) {
		for _, id := range []string{"01J0ORDER1", "pay_001", "991234"} {
			resp := authedGet(t, ts, token, "/api/v1/orders/"+id)
			if resp.StatusCode != http.StatusOK {
				t.Errorf("lookup %q: status %d, want 200", id, resp.StatusCode)
				continue
			}
			var got model.Order
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got.ID != "01J0ORDER1" {
				t.Errorf("lookup %q returned %s", id, got.ID)
			}
		}
	})

	t.Run("should return 404 for an unknown order", func(t *testing.T) {
		if resp := authedGet(t, ts, token, "/api/v1/orders/nope"); resp.StatusCode != http.StatusNotFound {
			t.Errorf("status %d, want 404", resp.StatusCode)
		}
	})
}
