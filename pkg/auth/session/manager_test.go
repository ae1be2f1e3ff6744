package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type mockKeyer struct{}

func (mockKeyer) AccessSessionKey(accessID string) string {
	return "test:session:access:" + accessID
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: mockKeyer{}, ttl: time.Minute}, store
}

func TestStartRevokeHasSession(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager()
	accessID := NewAccessID()

	require.NoError(t, mgr.Start(ctx, accessID, uuid.New()))

	active, err := mgr.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, mgr.Revoke(ctx, accessID))

	active, err = mgr.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestHasSessionUnknownID(t *testing.T) {
	mgr, _ := newTestManager()

	active, err := mgr.HasSession(context.Background(), NewAccessID())
	require.NoError(t, err)
	assert.False(t, active)
}

func TestStartRequiresAccessID(t *testing.T) {
	mgr, _ := newTestManager()
	assert.Error(t, mgr.Start(context.Background(), "  ", uuid.New()))
}
