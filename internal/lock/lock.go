// Package lock implements the distributed per-seat-per-segment lock
// that serialises concurrent reservation attempts.  Locks live in a
// shared Redis instance reachable by every service instance; the
// design is meaningless with process-local locks.  Each lock is a
// single key written with SET NX PX and an owner value, so a lock
// self-expires after its TTL even if the process that created it
// crashes, and only the owner can release it early.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock key is already held.
// Acquisition never waits: a contended key fails immediately.
var ErrNotAcquired = errors.New("lock not acquired")

// SegmentKey builds the lock key for one seat on one segment of a
// schedule.  The segment part uses the raw stop identifiers, not their
// resolved orders, matching how reservation requests name segments.
func SegmentKey(scheduleID, seatID, startStopID, endStopID uint64) string {
	return fmt.Sprintf("lock:schedule:%d:seat:%d:segment:%d-%d", scheduleID, seatID, startStopID, endStopID)
}

// Locker is the mutual-exclusion capability injected into the booking
// service.  The owner string identifies the holder across processes;
// the reservation path uses the booking ID so that confirmation,
// running in a later request, can release the same locks.
type Locker interface {
	// Acquire attempts to take the key for owner with zero wait and
	// the given hold TTL.  ErrNotAcquired is returned when the key is
	// contended.
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) error
	// Release drops the lock if and only if owner still holds it.  It
	// is a no-op, never an error, when the key expired or belongs to
	// someone else.
	Release(ctx context.Context, key, owner string) error
	// IsHeld reports whether owner currently holds the key.
	IsHeld(ctx context.Context, key, owner string) (bool, error)
}

// releaseScript deletes the key only when it still stores this owner,
// so a lock that expired and was re-acquired by another attempt is
// never released by the previous holder.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// Manager is the Redis-backed Locker.
type Manager struct {
	client *redis.Client
}

// NewManager returns a Manager on the given Redis client.
func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

// Acquire implements Locker with a single SET NX PX attempt.
func (m *Manager) Acquire(ctx context.Context, key, owner string, ttl time.Duration) error {
	ok, err := m.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotAcquired, key)
	}
	return nil
}

// Release implements Locker with a compare-and-delete script.
func (m *Manager) Release(ctx context.Context, key, owner string) error {
	return m.client.Eval(ctx, releaseScript, []string{key}, owner).Err()
}

// IsHeld implements Locker.
func (m *Manager) IsHeld(ctx context.Context, key, owner string) (bool, error) {
	v, err := m.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == owner, nil
}
