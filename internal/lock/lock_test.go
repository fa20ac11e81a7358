package lock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentKey(t *testing.T) {
	assert.Equal(t, "lock:schedule:7:seat:11:segment:1-3", SegmentKey(7, 11, 1, 3))
}

func TestAcquire(t *testing.T) {
	client, mock := redismock.NewClientMock()
	m := NewManager(client)

	key := SegmentKey(7, 11, 1, 3)
	mock.ExpectSetNX(key, "booking-1", 10*time.Minute).SetVal(true)

	require.NoError(t, m.Acquire(context.Background(), key, "booking-1", 10*time.Minute))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquire_Contended(t *testing.T) {
	client, mock := redismock.NewClientMock()
	m := NewManager(client)

	key := SegmentKey(7, 11, 1, 3)
	mock.ExpectSetNX(key, "booking-2", 10*time.Minute).SetVal(false)

	err := m.Acquire(context.Background(), key, "booking-2", 10*time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_OwnerOnly(t *testing.T) {
	client, mock := redismock.NewClientMock()
	m := NewManager(client)

	key := SegmentKey(7, 11, 1, 3)
	// Deleted when this owner still holds the key.
	mock.ExpectEval(releaseScript, []string{key}, "booking-1").SetVal(int64(1))
	require.NoError(t, m.Release(context.Background(), key, "booking-1"))

	// A stale owner finds someone else's value and deletes nothing.
	mock.ExpectEval(releaseScript, []string{key}, "booking-1").SetVal(int64(0))
	require.NoError(t, m.Release(context.Background(), key, "booking-1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsHeld(t *testing.T) {
	client, mock := redismock.NewClientMock()
	m := NewManager(client)

	key := SegmentKey(7, 11, 1, 3)

	mock.ExpectGet(key).SetVal("booking-1")
	held, err := m.IsHeld(context.Background(), key, "booking-1")
	require.NoError(t, err)
	assert.True(t, held)

	mock.ExpectGet(key).SetVal("booking-2")
	held, err = m.IsHeld(context.Background(), key, "booking-1")
	require.NoError(t, err)
	assert.False(t, held)

	// Expired key reads as not held, not as an error.
	mock.ExpectGet(key).RedisNil()
	held, err = m.IsHeld(context.Background(), key, "booking-1")
	require.NoError(t, err)
	assert.False(t, held)

	require.NoError(t, mock.ExpectationsWereMet())
}
