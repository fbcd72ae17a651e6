package usecase

import (
	"context"
	"net/url"
	"sync"
	"time"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/shopspring/decimal"
)

type fakeSessionStore struct {
	mu   sync.Mutex
	m    map[string]domain.Session
	gets int
}

func newFakeSessionStore(ss ...domain.Session) *fakeSessionStore {
	f := &fakeSessionStore{m: map[string]domain.Session{}}
	for _, s := range ss {
		f.m[s.Token] = s
	}
	return f
}

func (f *fakeSessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	s, ok := f.m[token]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSessionStore) Save(_ context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[s.Token] = s
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, token)
	return nil
}

type fakeSessionAPI struct {
	sess  domain.Session
	err   error
	calls int
}

func (f *fakeSessionAPI) ScanQR(context.Context, string) (domain.Session, error) {
	f.calls++
	return f.sess, f.err
}

func (f *fakeSessionAPI) GetSession(context.Context, string) (domain.Session, error) {
	f.calls++
	return f.sess, f.err
}

func (f *fakeSessionAPI) ExtendSession(context.Context, string) (domain.Session, error) {
	f.calls++
	return f.sess, f.err
}

type fakeCartStore struct {
	mu      sync.Mutex
	m       map[string]*domain.Cart
	deletes map[string]int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{m: map[string]*domain.Cart{}, deletes: map[string]int{}}
}

func (f *fakeCartStore) Load(_ context.Context, token string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.m[token]
	if !ok {
		return &domain.Cart{}, nil
	}
	cp := &domain.Cart{Lines: append([]domain.CartLine(nil), c.Lines...)}
	return cp, nil
}

func (f *fakeCartStore) Save(_ context.Context, token string, c *domain.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[token] = &domain.Cart{Lines: append([]domain.CartLine(nil), c.Lines...)}
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, token)
	f.deletes[token]++
	return nil
}

type fakePendingStore struct {
	mu    sync.Mutex
	m     map[string]domain.PendingOrderRecord
	takes int
	err   error
}

func newFakePendingStore() *fakePendingStore {
	return &fakePendingStore{m: map[string]domain.PendingOrderRecord{}}
}

func (f *fakePendingStore) Put(_ context.Context, rec domain.PendingOrderRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.m[rec.SessionToken] = rec
	return nil
}

func (f *fakePendingStore) Take(_ context.Context, token string) (*domain.PendingOrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.takes++
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.m[token]
	if !ok {
		return nil, nil
	}
	delete(f.m, token)
	return &rec, nil
}

func (f *fakePendingStore) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, token)
	return nil
}

func (f *fakePendingStore) has(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.m[token]
	return ok
}

type fakeLock struct {
	mu       sync.Mutex
	held     map[string]string
	owners   []string
	unlocked int
	ttl      time.Duration
}

func newFakeLock() *fakeLock { return &fakeLock{held: map[string]string{}} }

func (f *fakeLock) TTL() time.Duration { return f.ttl }

func (f *fakeLock) TryLock(_ context.Context, scope, key, owner string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.held[scope+key]; ok {
		return false, nil
	}
	f.held[scope+key] = owner
	f.owners = append(f.owners, owner)
	return true, nil
}

func (f *fakeLock) Unlock(_ context.Context, scope, key, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[scope+key] == owner {
		delete(f.held, scope+key)
		f.unlocked++
	}
	return nil
}

type stockAnswer struct {
	level domain.StockLevel
	err   error
}

type fakeStock struct {
	mu      sync.Mutex
	answers map[int64]stockAnswer
	calls   int
}

func (f *fakeStock) CheckStock(_ context.Context, _ string, menuID int64) (domain.StockLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	a, ok := f.answers[menuID]
	if !ok {
		return domain.StockLevel{MenuID: menuID, IsAvailable: true, Quantity: 100}, nil
	}
	return a.level, a.err
}

type fakeOrderAPI struct {
	mu          sync.Mutex
	placed      domain.PlacedOrder
	createErr   error
	createCalls int
	lastCreate  CreateOrderRequest
	deadline    time.Time
	orders      map[string]domain.Order
	getErr      error
	getCalls    int
}

func (f *fakeOrderAPI) CreateOrder(ctx context.Context, _ string, req CreateOrderRequest) (domain.PlacedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.deadline, _ = ctx.Deadline()
	f.lastCreate = req
	return f.placed, f.createErr
}

func (f *fakeOrderAPI) GetOrder(_ context.Context, _ string, orderUUID string) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return domain.Order{}, f.getErr
	}
	o, ok := f.orders[orderUUID]
	if !ok {
		return domain.Order{}, &domain.DecodeError{What: "order"}
	}
	return o, nil
}

type fakePaymentAPI struct {
	url          string
	processErr   error
	processCalls int
	finishUUID   string
	finishErr    error
	finishCalls  int
	finishParams url.Values
}

func (f *fakePaymentAPI) ProcessPayment(context.Context, string, string, string, string) (string, error) {
	f.processCalls++
	return f.url, f.processErr
}

func (f *fakePaymentAPI) FinishPayment(_ context.Context, _ string, params url.Values) (string, error) {
	f.finishCalls++
	f.finishParams = params
	return f.finishUUID, f.finishErr
}

type fakeOutbox struct{ payloads [][]byte }

func (f *fakeOutbox) InsertPaymentResolved(_ context.Context, payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeStatusCache struct{ m map[string]string }

func (f *fakeStatusCache) SetStatus(_ context.Context, id, status string) error {
	if f.m == nil {
		f.m = map[string]string{}
	}
	f.m[id] = status
	return nil
}

func (f *fakeStatusCache) GetStatus(_ context.Context, id string) (string, bool, error) {
	s, ok := f.m[id]
	return s, ok, nil
}

const testToken = "tok-123"

func liveSession() domain.Session {
	return domain.Session{Token: testToken, CustomerID: "cust-1", TableID: "T7", ExpiresAt: time.Now().Add(time.Hour)}
}

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func cartLine(menuID int64, name string, price int64, qty int) domain.CartLine {
	return domain.CartLine{MenuID: menuID, Name: name, UnitPrice: money(price), Quantity: qty}
}
