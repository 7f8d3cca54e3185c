//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// ---- in-memory ledger ----

// memLedgerRepo is a small in-memory LedgerRepository used by unit tests.
// Function fields override individual methods to simulate failures.
type memLedgerRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Payment // by transaction ID

	CreateFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{store: make(map[string]*model.Payment)}
}

var _ repository.LedgerRepository = (*memLedgerRepo)(nil)

func (m *memLedgerRepo) Create(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.TransactionID]; ok {
		return domain.ErrDuplicateTransactionID
	}
	cp := *p
	m.store[p.TransactionID] = &cp
	return nil
}

func (m *memLedgerRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memLedgerRepo) FindCompletedUnexpired(ctx context.Context, tx repository.Tx, userID, contentID string, now time.Time) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.UserID == userID && p.ContentID == contentID && p.GrantsAccessAt(now) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memLedgerRepo) UpdateStatusIf(ctx context.Context, tx repository.Tx, p *model.Payment, expect model.PaymentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[p.TransactionID]
	if !ok || cur.Status != expect {
		return false, nil
	}
	cp := *p
	m.store[p.TransactionID] = &cp
	return true, nil
}

func (m *memLedgerRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, f repository.ListFilter) ([]*model.Payment, error) {
	f.UserID = userID
	return m.ListAll(ctx, tx, f)
}

func (m *memLedgerRepo) ListAll(ctx context.Context, tx repository.Tx, f repository.ListFilter) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if f.UserID != "" && p.UserID != f.UserID {
			continue
		}
		if f.ContentID != "" && p.ContentID != f.ContentID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memLedgerRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memLedgerRepo) SumCompletedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, p := range m.store {
		if p.Status == model.PaymentStatusCompleted {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (m *memLedgerRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.PaymentStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.PaymentStatus]int)
	for _, p := range m.store {
		out[p.Status]++
	}
	return out, nil
}

// completedCount is a test helper, not part of the port.
func (m *memLedgerRepo) completedCount(userID, contentID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.store {
		if p.UserID == userID && p.ContentID == contentID &&
			p.Status == model.PaymentStatusCompleted && p.AccessGranted {
			n++
		}
	}
	return n
}

func (m *memLedgerRepo) seed(p *model.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.TransactionID] = &cp
}

// ---- in-memory owned-content set ----

type memOwnedRepo struct {
	mu    sync.RWMutex
	store map[string]map[string]string // userID -> contentID -> transactionID
}

func newMemOwnedRepo() *memOwnedRepo {
	return &memOwnedRepo{store: make(map[string]map[string]string)}
}

var _ repository.OwnedContentRepository = (*memOwnedRepo)(nil)

func (m *memOwnedRepo) Add(ctx context.Context, tx repository.Tx, oc *model.OwnedContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store[oc.UserID] == nil {
		m.store[oc.UserID] = make(map[string]string)
	}
	m.store[oc.UserID][oc.ContentID] = oc.TransactionID
	return nil
}

func (m *memOwnedRepo) Remove(ctx context.Context, tx repository.Tx, userID, contentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store[userID], contentID)
	return nil
}

func (m *memOwnedRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.OwnedContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.OwnedContent
	for contentID, txnID := range m.store[userID] {
		out = append(out, &model.OwnedContent{UserID: userID, ContentID: contentID, TransactionID: txnID})
	}
	return out, nil
}

func (m *memOwnedRepo) owns(userID, contentID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.store[userID][contentID]
	return ok
}

// ---- mock catalog ----

type mockCatalog struct {
	mu      sync.RWMutex
	content map[string]*model.ContentRef

	FindContentFunc func(ctx context.Context, contentID string) (*model.ContentRef, error)
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{content: make(map[string]*model.ContentRef)}
}

func (m *mockCatalog) put(ref *model.ContentRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[ref.ContentID] = ref
}

func (m *mockCatalog) FindContent(ctx context.Context, contentID string) (*model.ContentRef, error) {
	if m.FindContentFunc != nil {
		return m.FindContentFunc(ctx, contentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ref, ok := m.content[contentID]
	if !ok {
		return nil, domain.ErrContentNotFound
	}
	cp := *ref
	return &cp, nil
}

// ---- in-memory locker ----

// memLocker serializes TryLock holders per key the way the Redis locker does,
// spinning briefly before giving up.
type memLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newMemLocker() *memLocker { return &memLocker{held: make(map[string]string)} }

func (l *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := key + "-token"
	for i := 0; i < 200; i++ {
		l.mu.Lock()
		if _, busy := l.held[key]; !busy {
			l.held[key] = token
			l.mu.Unlock()
			return token, nil
		}
		l.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	return "", domain.ErrLockNotAcquired
}

func (l *memLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

// ---- mock tx manager ----

// mockTxManager serializes callbacks with a mutex, standing in for the
// row-level locking a real transaction provides.
type mockTxManager struct {
	mu sync.Mutex

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*mockTxManager)(nil)

func (m *mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}
