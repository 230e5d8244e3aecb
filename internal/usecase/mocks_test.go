//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"smm-storefront/internal/domain"
	"smm-storefront/internal/domain/model"
	"smm-storefront/internal/domain/ports/repository"
)

// memOrderRepo is a small in-memory implementation used by unit tests.
// It mirrors the conditional-update semantics of the postgres repo.
type memOrderRepo struct {
	mu       sync.RWMutex
	store    map[string]*model.Order // map by ID
	byRef    map[string]string       // payment_ref -> ID
	claimErr error                   // used by tests to simulate claim failures
	markErr  error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		store: make(map[string]*model.Order),
		byRef: make(map[string]string),
	}
}

func (m *memOrderRepo) Claim(ctx context.Context, tx repository.Tx, o *model.Order) (*model.Order, bool, error) {
	if m.claimErr != nil {
		return nil, false, m.claimErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byRef[o.PaymentRef]; ok {
		existing := m.store[id]
		switch existing.Status {
		case model.OrderStatusFailedSubmission:
			existing.Status = model.OrderStatusPendingSubmission
			existing.UpdatedAt = time.Now()
			cp := *existing
			return &cp, true, nil
		default:
			cp := *existing
			return &cp, false, nil
		}
	}
	cp := *o
	m.store[o.ID] = &cp
	m.byRef[o.PaymentRef] = o.ID
	out := cp
	return &out, true, nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) FindByPaymentRef(ctx context.Context, tx repository.Tx, paymentRef string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byRef[paymentRef]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m.store[id]
	return &cp, nil
}

func (m *memOrderRepo) FindByUpstreamID(ctx context.Context, tx repository.Tx, upstreamID string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.store {
		if o.UpstreamOrderID != nil && *o.UpstreamOrderID == upstreamID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memOrderRepo) MarkProcessing(ctx context.Context, tx repository.Tx, id, upstreamOrderID string, refillUntil time.Time) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != model.OrderStatusPendingSubmission {
		return domain.ErrInvalidTransition
	}
	o.Status = model.OrderStatusProcessing
	o.UpstreamOrderID = &upstreamOrderID
	o.RefillEligibleUntil = &refillUntil
	o.UpdatedAt = time.Now()
	return nil
}

func (m *memOrderRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string, status model.OrderStatus) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !o.Status.CanTransitionTo(status) {
		return domain.ErrInvalidTransition
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (m *memOrderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, from, to model.OrderStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, domain.ErrInvalidTransition
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return true, nil
}

func (m *memOrderRepo) ListProcessing(ctx context.Context, tx repository.Tx, limit int) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.store {
		if o.Status == model.OrderStatusProcessing && o.UpstreamOrderID != nil {
			cp := *o
			out = append(out, &cp)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memOrderRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.store {
		if o.Status == model.OrderStatusPendingSubmission && o.CreatedAt.Before(olderThan) {
			cp := *o
			out = append(out, &cp)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memOrderRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.OrderStatus, offset, limit int) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.store {
		if o.Status == status {
			cp := *o
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memOrderRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.OrderStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.OrderStatus]int)
	for _, o := range m.store {
		out[o.Status]++
	}
	return out, nil
}

func (m *memOrderRepo) SumRevenueByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, o := range m.store {
		switch o.Status {
		case model.OrderStatusProcessing, model.OrderStatusCompleted, model.OrderStatusPartial:
			sum += o.PriceMinor
		}
	}
	return sum, nil
}

// memTrialRepo covers the free-trial guard semantics in memory.
type memTrialRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.FreeTrial // map by ID
	setErr    error                       // used by tests to simulate SetResult failures
	insertErr error
}

func newMemTrialRepo() *memTrialRepo {
	return &memTrialRepo{store: make(map[string]*model.FreeTrial)}
}

func (m *memTrialRepo) Insert(ctx context.Context, tx repository.Tx, t *model.FreeTrial) (bool, error) {
	if m.insertErr != nil {
		return false, m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Target == t.Target {
			return false, nil
		}
	}
	cp := *t
	m.store[t.ID] = &cp
	return true, nil
}

func (m *memTrialRepo) FindAnyMatch(ctx context.Context, tx repository.Tx, email, target, ip string) (*model.FreeTrial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.Email == email || t.Target == target || t.IP == ip {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTrialRepo) SetResult(ctx context.Context, tx repository.Tx, id string, upstreamOrderID *string, status model.FreeTrialStatus) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if upstreamOrderID != nil {
		v := *upstreamOrderID
		t.UpstreamOrderID = &v
	}
	t.Status = status
	return nil
}

// mockTxManager runs the callback without a real transaction; tests override
// WithTxFunc to exercise failure paths.
type mockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func (m *mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// fakeProvider is a scriptable EngagementProvider. submitFn / statusFn
// override the defaults; submits counts upstream submissions so idempotency
// tests can assert exactly-once.
type fakeProvider struct {
	mu       sync.Mutex
	name     string
	submits  int
	queries  int
	submitFn func(serviceID int64, target string, quantity int) (string, error)
	statusFn func(upstreamOrderID string) (model.OrderStatus, string, error)
}

func newFakeProvider(name string) *fakeProvider {
	return &fakeProvider{name: name}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) SubmitOrder(ctx context.Context, serviceID int64, target string, quantity int) (string, error) {
	f.mu.Lock()
	f.submits++
	n := f.submits
	fn := f.submitFn
	f.mu.Unlock()
	if fn != nil {
		return fn(serviceID, target, quantity)
	}
	return fmt.Sprintf("up-%d", n), nil
}

func (f *fakeProvider) QueryStatus(ctx context.Context, upstreamOrderID string) (model.OrderStatus, string, error) {
	f.mu.Lock()
	f.queries++
	fn := f.statusFn
	f.mu.Unlock()
	if fn != nil {
		return fn(upstreamOrderID)
	}
	return model.OrderStatusProcessing, "In progress", nil
}

func (f *fakeProvider) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []string // recipients
	sendErr error
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeAlerter) Alert(ctx context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeAlerter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}
