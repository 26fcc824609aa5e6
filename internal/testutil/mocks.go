package testutil

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/domain/token"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/google/uuid"
)

// --- Order Repository Mock ---

// MockOrderRepository is a mock implementation of order.Repository.
type MockOrderRepository struct {
	mu          sync.Mutex
	orders      map[uuid.UUID]*order.Order
	byReference map[string]*order.Order
	notes       map[uuid.UUID][]*order.Note

	CreateFunc          func(ctx context.Context, o *order.Order) error
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	GetByReferenceFunc  func(ctx context.Context, reference string) (*order.Order, error)
	UpdateFunc          func(ctx context.Context, o *order.Order) error
	ListFunc            func(ctx context.Context, filter order.ListFilter) ([]*order.Order, error)
	ListDueRenewalsFunc func(ctx context.Context, cutoff time.Time, limit int) ([]*order.Order, error)
	AddNoteFunc         func(ctx context.Context, note *order.Note) error
	GetNotesFunc        func(ctx context.Context, orderID uuid.UUID) ([]*order.Note, error)
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:      make(map[uuid.UUID]*order.Order),
		byReference: make(map[string]*order.Order),
		notes:       make(map[uuid.UUID][]*order.Note),
	}
}

// AddOrder pre-populates the mock with an order.
func (m *MockOrderRepository) AddOrder(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	m.byReference[o.Reference] = o
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	m.byReference[o.Reference] = o
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	return o, nil
}

func (m *MockOrderRepository) GetByReference(ctx context.Context, reference string) (*order.Order, error) {
	if m.GetByReferenceFunc != nil {
		return m.GetByReferenceFunc(ctx, reference)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byReference[reference]
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	return o, nil
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	m.byReference[o.Reference] = o
	return nil
}

func (m *MockOrderRepository) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		result = append(result, o)
	}
	return result, nil
}

func (m *MockOrderRepository) ListDueRenewals(ctx context.Context, cutoff time.Time, limit int) ([]*order.Order, error) {
	if m.ListDueRenewalsFunc != nil {
		return m.ListDueRenewalsFunc(ctx, cutoff, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*order.Order, 0)
	for _, o := range m.orders {
		if o.Kind == order.KindSubscription && o.Status == order.StatusPending && o.CreatedAt.Before(cutoff) {
			result = append(result, o)
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockOrderRepository) AddNote(ctx context.Context, note *order.Note) error {
	if m.AddNoteFunc != nil {
		return m.AddNoteFunc(ctx, note)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[note.OrderID] = append(m.notes[note.OrderID], note)
	return nil
}

func (m *MockOrderRepository) GetNotes(ctx context.Context, orderID uuid.UUID) ([]*order.Note, error) {
	if m.GetNotesFunc != nil {
		return m.GetNotesFunc(ctx, orderID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notes[orderID], nil
}

// GetOrderByID returns the stored order (test helper, no context needed).
func (m *MockOrderRepository) GetOrderByID(id uuid.UUID) *order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

// --- Token Repository Mock ---

// MockTokenRepository is a mock implementation of token.Repository.
type MockTokenRepository struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*token.Token

	SaveFunc           func(ctx context.Context, t *token.Token) error
	GetByValueFunc     func(ctx context.Context, customerID uuid.UUID, value string) (*token.Token, error)
	GetLatestFunc      func(ctx context.Context, customerID uuid.UUID, gatewayID string) (*token.Token, error)
	ListByCustomerFunc func(ctx context.Context, customerID uuid.UUID) ([]*token.Token, error)
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{tokens: make(map[uuid.UUID]*token.Token)}
}

// AddToken pre-populates the mock with a token.
func (m *MockTokenRepository) AddToken(t *token.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.ID] = t
}

func (m *MockTokenRepository) Save(ctx context.Context, t *token.Token) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.ID] = t
	return nil
}

func (m *MockTokenRepository) GetByValue(ctx context.Context, customerID uuid.UUID, value string) (*token.Token, error) {
	if m.GetByValueFunc != nil {
		return m.GetByValueFunc(ctx, customerID, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.CustomerID == customerID && t.Value == value {
			return t, nil
		}
	}
	return nil, domainErrors.ErrTokenNotFound
}

func (m *MockTokenRepository) GetLatest(ctx context.Context, customerID uuid.UUID, gatewayID string) (*token.Token, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, customerID, gatewayID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *token.Token
	for _, t := range m.tokens {
		if t.CustomerID != customerID || !t.BelongsTo(gatewayID) {
			continue
		}
		if latest == nil || t.UpdatedAt.After(latest.UpdatedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, domainErrors.ErrTokenNotFound
	}
	return latest, nil
}

func (m *MockTokenRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*token.Token, error) {
	if m.ListByCustomerFunc != nil {
		return m.ListByCustomerFunc(ctx, customerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*token.Token, 0)
	for _, t := range m.tokens {
		if t.CustomerID == customerID {
			result = append(result, t)
		}
	}
	return result, nil
}

// Count returns the number of stored tokens (test helper).
func (m *MockTokenRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// --- Processor Gateway Mock ---

// MockGateway is a mock implementation of the processor gateway port.
type MockGateway struct {
	ReverseFunc   func(ctx context.Context, fields hutko.Fields) (hutko.Response, error)
	CaptureFunc   func(ctx context.Context, fields hutko.Fields) (hutko.Response, error)
	RecurringFunc func(ctx context.Context, fields hutko.Fields) (hutko.Response, error)

	mu    sync.Mutex
	calls []GatewayCall
}

// GatewayCall records one gateway invocation for assertions.
type GatewayCall struct {
	Op     string
	Fields hutko.Fields
}

func (m *MockGateway) record(op string, fields hutko.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, GatewayCall{Op: op, Fields: fields.Clone()})
}

// Calls returns all recorded invocations.
func (m *MockGateway) Calls() []GatewayCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GatewayCall(nil), m.calls...)
}

func (m *MockGateway) Reverse(ctx context.Context, fields hutko.Fields) (hutko.Response, error) {
	m.record("reverse", fields)
	if m.ReverseFunc != nil {
		return m.ReverseFunc(ctx, fields)
	}
	return hutko.Response{"response_status": "success", "reverse_status": "approved"}, nil
}

func (m *MockGateway) Capture(ctx context.Context, fields hutko.Fields) (hutko.Response, error) {
	m.record("capture", fields)
	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx, fields)
	}
	return hutko.Response{"response_status": "success", "capture_status": "captured"}, nil
}

func (m *MockGateway) Recurring(ctx context.Context, fields hutko.Fields) (hutko.Response, error) {
	m.record("recurring", fields)
	if m.RecurringFunc != nil {
		return m.RecurringFunc(ctx, fields)
	}
	return hutko.Response{"response_status": "success", "order_status": "approved", "payment_id": "900001"}, nil
}

// --- Callback Validator Mock ---

// MockCallbackValidator is a mock callback validator.
type MockCallbackValidator struct {
	ValidateFunc func(body hutko.Fields) error
}

func (m *MockCallbackValidator) Validate(body hutko.Fields) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(body)
	}
	return nil
}

// --- Order Locker Mock ---

// NoopLocker runs the protected function without any locking.
type NoopLocker struct {
	mu    sync.Mutex
	locks []string
}

func (l *NoopLocker) WithOrderLock(ctx context.Context, reference string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	l.locks = append(l.locks, reference)
	l.mu.Unlock()
	return fn(ctx)
}

// Locked returns the references the locker was asked to protect.
func (l *NoopLocker) Locked() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.locks...)
}
