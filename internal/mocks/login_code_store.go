package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/task-manager-api/internal/store"
)

// MockLoginCodeStore is an in-memory store.LoginCodeStore with an
// injectable clock for expiry tests.
type MockLoginCodeStore struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Err, when set, is returned by every call.
	Err error

	mu       sync.Mutex
	codes    map[string]*loginCodeEntry
	failures map[string]*failureEntry
}

type loginCodeEntry struct {
	digest    string
	expiresAt time.Time
}

type failureEntry struct {
	count     int
	expiresAt time.Time
}

// NewMockLoginCodeStore creates an empty in-memory login-code store.
func NewMockLoginCodeStore() *MockLoginCodeStore {
	return &MockLoginCodeStore{
		Now:      time.Now,
		codes:    make(map[string]*loginCodeEntry),
		failures: make(map[string]*failureEntry),
	}
}

var _ store.LoginCodeStore = (*MockLoginCodeStore)(nil)

// Save implements store.LoginCodeStore.
func (m *MockLoginCodeStore) Save(_ context.Context, phoneNumber, digest string, ttl time.Duration) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[phoneNumber] = &loginCodeEntry{digest: digest, expiresAt: m.Now().Add(ttl)}
	return nil
}

// Get implements store.LoginCodeStore.
func (m *MockLoginCodeStore) Get(_ context.Context, phoneNumber string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(phoneNumber)
	if e == nil {
		return "", store.ErrLoginCodeNotFound
	}
	return e.digest, nil
}

// Consume implements store.LoginCodeStore.
func (m *MockLoginCodeStore) Consume(_ context.Context, phoneNumber string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(phoneNumber)
	delete(m.codes, phoneNumber)
	return e != nil, nil
}

// RecordFailure implements store.LoginCodeStore.
func (m *MockLoginCodeStore) RecordFailure(_ context.Context, phoneNumber string, window time.Duration) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.liveFailures(phoneNumber)
	if f == nil {
		f = &failureEntry{expiresAt: m.Now().Add(window)}
		m.failures[phoneNumber] = f
	}
	f.count++
	return f.count, nil
}

// Failures implements store.LoginCodeStore.
func (m *MockLoginCodeStore) Failures(_ context.Context, phoneNumber string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if f := m.liveFailures(phoneNumber); f != nil {
		return f.count, nil
	}
	return 0, nil
}

// ClearFailures implements store.LoginCodeStore.
func (m *MockLoginCodeStore) ClearFailures(_ context.Context, phoneNumber string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, phoneNumber)
	return nil
}

// Outstanding reports whether an unexpired code exists for phoneNumber.
func (m *MockLoginCodeStore) Outstanding(phoneNumber string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(phoneNumber) != nil
}

// live returns the unexpired entry for phoneNumber, dropping an expired one.
func (m *MockLoginCodeStore) live(phoneNumber string) *loginCodeEntry {
	e, ok := m.codes[phoneNumber]
	if !ok {
		return nil
	}
	if !m.Now().Before(e.expiresAt) {
		delete(m.codes, phoneNumber)
		return nil
	}
	return e
}

// liveFailures returns the unexpired failure counter for phoneNumber.
func (m *MockLoginCodeStore) liveFailures(phoneNumber string) *failureEntry {
	f, ok := m.failures[phoneNumber]
	if !ok {
		return nil
	}
	if !m.Now().Before(f.expiresAt) {
		delete(m.failures, phoneNumber)
		return nil
	}
	return f
}
