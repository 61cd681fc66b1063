package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/ventas/internal/dbx"
	"github.com/dmitrijs2005/ventas/internal/server/models"
	"github.com/dmitrijs2005/ventas/internal/server/notify"
	"github.com/dmitrijs2005/ventas/internal/server/photos"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/sales"
)

// -------- test fakes --------

type fakeValidator struct {
	verdicts map[string]models.Verdict
	calls    int
}

func (f *fakeValidator) Validate(_ context.Context, seller, _ string) models.Verdict {
	f.calls++
	if v, ok := f.verdicts[seller]; ok {
		return v
	}
	return models.Valid()
}

// memStore is an in-memory lockout.Store.
type memStore struct {
	mu       sync.Mutex
	states   map[string]models.LockoutState
	failWith error
}

func newMemStore() *memStore { return &memStore{states: map[string]models.LockoutState{}} }

func (m *memStore) Increment(_ context.Context, seller string, threshold int, at time.Time) (models.LockoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return models.LockoutState{}, m.failWith
	}
	st := m.states[seller]
	st.SalespersonID = seller
	st.FailedAttempts++
	st.IsBlocked = st.FailedAttempts >= threshold
	st.LastFailureAt = &at
	m.states[seller] = st
	return st, nil
}

func (m *memStore) Reset(_ context.Context, seller string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	st, ok := m.states[seller]
	if ok && !st.IsBlocked {
		st.FailedAttempts = 0
		m.states[seller] = st
	}
	return nil
}

func (m *memStore) Get(_ context.Context, seller string) (models.LockoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.states[seller]
	st.SalespersonID = seller
	return st, m.failWith
}

func (m *memStore) Clear(_ context.Context, seller string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, seller)
	return m.failWith
}

func (m *memStore) attempts(seller string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[seller].FailedAttempts
}

type fakePhotos struct {
	err     error
	uploads int
}

func (f *fakePhotos) Upload(_ context.Context, filename, contentType string, data []byte) (photos.Stored, error) {
	f.uploads++
	if f.err != nil {
		return photos.Stored{}, f.err
	}
	return photos.Stored{Key: "k" + photos.Extension(filename, contentType), URL: "http://s3/ventas-fotos/k.jpg"}, nil
}

type fakeAlerts struct {
	events []notify.LockoutEvent
}

func (f *fakeAlerts) Dispatch(e notify.LockoutEvent) bool {
	f.events = append(f.events, e)
	return true
}

type fakeSalesRepo struct {
	sales.Repository
	created   []*models.Sale
	createErr error
	list      []*models.Sale
	listErr   error
}

func (f *fakeSalesRepo) Create(_ context.Context, s *models.Sale) (*models.Sale, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	s.ID = int64(len(f.created) + 1)
	f.created = append(f.created, s)
	return s, nil
}

func (f *fakeSalesRepo) ListNewestFirst(context.Context) ([]*models.Sale, error) {
	return f.list, f.listErr
}

type fakeRM struct {
	repomanager.RepositoryManager
	sales *fakeSalesRepo
}

func (f *fakeRM) Sales(dbx.DBTX) sales.Repository { return f.sales }
