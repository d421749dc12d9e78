package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gamfolz-glitch/pollapp/internal/models"

	"github.com/redis/go-redis/v9"
)

// TimerStore keeps the per-(poll, session) start timestamp. Expiry of
// stale records is the store's job, not the timer's.
type TimerStore interface {
	// Start records the given timestamp unless one is already on record,
	// and returns the effective start time.
	Start(ctx context.Context, pollID uint, sessionKey string, start time.Time, ttl time.Duration) (time.Time, error)
	// Get returns the recorded start time, or ok=false when none exists.
	// Expiry is judged against the caller's clock, not the store's.
	Get(ctx context.Context, pollID uint, sessionKey string, now time.Time) (time.Time, bool, error)
}

// Records outlive the limit by a grace window so a late submission can
// still be answered with "time exceeded" rather than "session expired".
const timerGrace = 10 * time.Minute

type TimerService struct {
	store TimerStore
	now   func() time.Time
}

func NewTimerService(store TimerStore) *TimerService {
	return &TimerService{store: store, now: time.Now}
}

// Begin starts the clock for this session on first contact with a
// time-limited poll and returns the remaining seconds. Polls without a
// limit return nil.
func (s *TimerService) Begin(ctx context.Context, poll *models.Poll, sessionKey string) (*int, error) {
	if !poll.HasTimeLimit() {
		return nil, nil
	}

	limit := time.Duration(poll.TimeLimitSeconds()) * time.Second
	start, err := s.store.Start(ctx, poll.ID, sessionKey, s.now(), limit+timerGrace)
	if err != nil {
		return nil, err
	}

	left := poll.TimeLimitSeconds() - int(s.now().Sub(start).Seconds())
	if left < 0 {
		left = 0
	}
	return &left, nil
}

// TimeLeft reports remaining seconds without starting the clock; nil
// when the poll is unlimited or the session has no start record.
func (s *TimerService) TimeLeft(ctx context.Context, poll *models.Poll, sessionKey string) (*int, error) {
	if !poll.HasTimeLimit() {
		return nil, nil
	}

	start, ok, err := s.store.Get(ctx, poll.ID, sessionKey, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	left := poll.TimeLimitSeconds() - int(s.now().Sub(start).Seconds())
	if left < 0 {
		left = 0
	}
	return &left, nil
}

// CheckSubmit gates a submission attempt. Server-side timestamps only;
// whatever the client claims about elapsed time is ignored.
func (s *TimerService) CheckSubmit(ctx context.Context, poll *models.Poll, sessionKey string) error {
	if !poll.HasTimeLimit() {
		return nil
	}

	start, ok, err := s.store.Get(ctx, poll.ID, sessionKey, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionExpired
	}

	elapsed := s.now().Sub(start)
	if elapsed > time.Duration(poll.TimeLimitSeconds())*time.Second {
		return &TimeExceededError{
			ElapsedMinutes: int(elapsed.Minutes()),
			LimitMinutes:   *poll.TimeLimitMinutes,
		}
	}
	return nil
}

func timerKey(pollID uint, sessionKey string) string {
	return fmt.Sprintf("poll_start:%d:%s", pollID, sessionKey)
}

// RedisTimerStore holds start times in Redis so timers survive restarts
// and are shared between replicas.
type RedisTimerStore struct {
	client *redis.Client
}

func NewRedisTimerStore(client *redis.Client) *RedisTimerStore {
	return &RedisTimerStore{client: client}
}

func (s *RedisTimerStore) Start(ctx context.Context, pollID uint, sessionKey string, start time.Time, ttl time.Duration) (time.Time, error) {
	key := timerKey(pollID, sessionKey)
	ok, err := s.client.SetNX(ctx, key, start.UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		return start, nil
	}

	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// Record expired between SetNX and Get; claim it now.
		if err := s.client.Set(ctx, key, start.UTC().Format(time.RFC3339Nano), ttl).Err(); err != nil {
			return time.Time{}, err
		}
		return start, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, val)
}

// Redis expires records on its own; the caller's clock is not needed.
func (s *RedisTimerStore) Get(ctx context.Context, pollID uint, sessionKey string, _ time.Time) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, timerKey(pollID, sessionKey)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

type memoryTimerEntry struct {
	start    time.Time
	expireAt time.Time
}

// MemoryTimerStore is the single-process fallback used when no Redis
// address is configured, and by tests.
type MemoryTimerStore struct {
	mu      sync.Mutex
	entries map[string]memoryTimerEntry
}

func NewMemoryTimerStore() *MemoryTimerStore {
	return &MemoryTimerStore{entries: make(map[string]memoryTimerEntry)}
}

func (s *MemoryTimerStore) Start(_ context.Context, pollID uint, sessionKey string, start time.Time, ttl time.Duration) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := timerKey(pollID, sessionKey)
	if entry, ok := s.entries[key]; ok && start.Before(entry.expireAt) {
		return entry.start, nil
	}
	s.entries[key] = memoryTimerEntry{start: start, expireAt: start.Add(ttl)}
	return start, nil
}

func (s *MemoryTimerStore) Get(_ context.Context, pollID uint, sessionKey string, now time.Time) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[timerKey(pollID, sessionKey)]
	if !ok || now.After(entry.expireAt) {
		return time.Time{}, false, nil
	}
	return entry.start, true, nil
}
