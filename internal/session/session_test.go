package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/local_places/pkg/logger"
)

func newTestStore(maxIdle time.Duration) *Store {
	log := logger.NewLogger(logger.Config{Level: logger.ErrorLevel, Service: "test"})
	return NewStore(Config{MaxIdle: maxIdle, Logger: log})
}

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	store := newTestStore(time.Hour)

	first := store.GetOrCreate("token-1")
	second := store.GetOrCreate("token-1")

	assert.Same(t, first, second)
	assert.Equal(t, 1, store.Len())
}

func TestGetOrCreateEmptyTokenGetsFreshOne(t *testing.T) {
	store := newTestStore(time.Hour)

	first := store.GetOrCreate("")
	second := store.GetOrCreate("")

	require.NotEmpty(t, first.Token)
	require.NotEmpty(t, second.Token)
	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 2, store.Len())
}

func TestReset(t *testing.T) {
	store := newTestStore(time.Hour)
	store.GetOrCreate("token-1")

	store.Reset("token-1")
	assert.Equal(t, 0, store.Len())

	// Unknown tokens are a quiet no-op.
	store.Reset("never-seen")
	assert.Equal(t, 0, store.Len())
}

func TestEvictIdle(t *testing.T) {
	store := newTestStore(time.Minute)

	stale := store.GetOrCreate("stale")
	stale.LastActive = time.Now().Add(-2 * time.Minute)
	store.GetOrCreate("fresh")

	evicted := store.EvictIdle()

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, store.Len())
}

func TestEvictIdleDisabled(t *testing.T) {
	store := newTestStore(0)

	sess := store.GetOrCreate("old")
	sess.LastActive = time.Now().Add(-24 * time.Hour)

	assert.Equal(t, 0, store.EvictIdle())
	assert.Equal(t, 1, store.Len())
}
