package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	token string
	err   error
}

func (m *memStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.token = token
	return nil
}

func (m *memStore) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.err
}

func (m *memStore) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.token = ""
	return nil
}

func TestStatic(t *testing.T) {
	assert.Equal(t, "abc", Static("abc").IdentityToken())
}

func TestTracker_LoginLogout(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	tracker := NewTracker(store, zerolog.Nop())

	assert.Equal(t, "", tracker.IdentityToken())

	require.NoError(t, tracker.Login(ctx, "token-1"))
	assert.Equal(t, "token-1", tracker.IdentityToken())
	assert.Equal(t, "token-1", store.token)

	require.NoError(t, tracker.Logout(ctx))
	assert.Equal(t, "", tracker.IdentityToken())
	assert.Equal(t, "", store.token)
}

func TestTracker_LoginRejectsEmptyToken(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())
	require.Error(t, tracker.Login(context.Background(), ""))
}

func TestTracker_StoreErrors(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("unavailable")
	tracker := NewTracker(&memStore{err: storeErr}, zerolog.Nop())

	err := tracker.Login(ctx, "token")
	require.ErrorIs(t, err, storeErr)
	// The in-memory identity is adopted even when persistence fails.
	assert.Equal(t, "token", tracker.IdentityToken())

	require.ErrorIs(t, tracker.Refresh(ctx), storeErr)
	require.ErrorIs(t, tracker.Logout(ctx), storeErr)
}

func TestTracker_Refresh(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	tracker := NewTracker(store, zerolog.Nop())

	store.token = "from-other-process"
	require.NoError(t, tracker.Refresh(ctx))
	assert.Equal(t, "from-other-process", tracker.IdentityToken())

	store.token = ""
	require.NoError(t, tracker.Refresh(ctx))
	assert.Equal(t, "", tracker.IdentityToken())
}

func TestTracker_RefreshWithoutStore(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())
	require.NoError(t, tracker.Login(context.Background(), "a"))
	require.NoError(t, tracker.Refresh(context.Background()))
	assert.Equal(t, "a", tracker.IdentityToken())
}
