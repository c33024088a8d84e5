package distributed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	bperrors "github.com/vnykmshr/brakepedal/pkg/common/errors"
	"github.com/vnykmshr/brakepedal/internal/testutil"
	"github.com/vnykmshr/brakepedal/pkg/throttle"
)

var epoch2030 = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestRepository(t *testing.T) (*Repository, *testutil.MockClock, func(time.Duration)) {
	t.Helper()
	mr, rdb := testutil.NewRedis(t)
	clock := testutil.NewMockClock(epoch2030)

	repo, err := New(Config{Redis: rdb, Clock: clock})
	testutil.AssertNoError(t, err)

	// fastForward moves both the server's TTLs and the key clock.
	fastForward := func(d time.Duration) {
		mr.FastForward(d)
		clock.Advance(d)
	}
	return repo, clock, fastForward
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{})
	testutil.AssertError(t, err)
	if !bperrors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}

	var nilClient *redis.Client
	_, err = New(Config{Redis: nilClient})
	if !bperrors.IsValidationError(err) {
		t.Errorf("typed nil client: expected ValidationError, got %v", err)
	}

	_, rdb := testutil.NewRedis(t)
	_, err = New(Config{Redis: rdb, Timeout: -time.Second})
	if !bperrors.IsValidationError(err) {
		t.Errorf("negative timeout: expected ValidationError, got %v", err)
	}

	repo, err := New(Config{Redis: rdb, IdentityValues: []any{"p"}})
	testutil.AssertNoError(t, err)
	if _, ok := repo.clock.(throttle.SystemClock); !ok {
		t.Errorf("default clock = %T, want SystemClock", repo.clock)
	}
	testutil.AssertEqual(t, repo.CreateThrottleKey(throttle.NewKey("k"), throttle.NewLimiter(1, time.Minute)), "p:k:1m")
}

func TestAddOrIncrementWithExpiration_NewKeySetsTTL(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	repo, err := New(Config{Redis: rdb, Clock: testutil.NewMockClock(epoch2030)})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("test", "key")
	limiter := throttle.Limiter{}.Limit(1).Over(10 * time.Second)
	id := repo.CreateThrottleKey(key, limiter)

	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))

	got, err := mr.Get(id)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, "1")
	testutil.AssertEqual(t, mr.TTL(id), 10*time.Second)
}

func TestAddOrIncrementWithExpiration_ExistingWindowKeepsTTL(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	repo, err := New(Config{Redis: rdb, Clock: testutil.NewMockClock(epoch2030)})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("test", "key")
	limiter := throttle.NewLimiter(1, 100*time.Second)
	id := repo.CreateThrottleKey(key, limiter)

	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))
	mr.FastForward(30 * time.Second)
	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))
	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))

	count, ok, err := repo.GetThrottleCount(ctx, key, limiter)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, count, int64(3))
	testutil.AssertEqual(t, mr.TTL(id), 70*time.Second)
}

func TestAddOrIncrementWithExpiration_WindowRestartsAfterExpiry(t *testing.T) {
	repo, _, fastForward := newTestRepository(t)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("test", "key")
	limiter := throttle.NewLimiter(1, 10*time.Second)

	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))
	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))
	fastForward(10 * time.Second)

	_, ok, err := repo.GetThrottleCount(ctx, key, limiter)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, false)

	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))
	count, _, err := repo.GetThrottleCount(ctx, key, limiter)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, int64(1))
}

func TestGetThrottleCount(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	repo, err := New(Config{Redis: rdb, Clock: testutil.NewMockClock(epoch2030)})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("test", "key")
	limiter := throttle.NewLimiter(1, time.Second)
	id := repo.CreateThrottleKey(key, limiter)

	tests := []struct {
		name      string
		stored    *string
		wantCount int64
		wantOK    bool
	}{
		{"key does not exist", nil, 0, false},
		{"parsed value", ptr("10"), 10, true},
		{"unparsable value", ptr("not-a-number"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr.Del(id)
			if tt.stored != nil {
				testutil.AssertNoError(t, mr.Set(id, *tt.stored))
			}

			count, ok, err := repo.GetThrottleCount(ctx, key, limiter)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, ok, tt.wantOK)
			testutil.AssertEqual(t, count, tt.wantCount)
		})
	}
}

func ptr(s string) *string { return &s }

func TestLockExists(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	repo, err := New(Config{Redis: rdb})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("test", "key")
	limiter := throttle.NewLimiter(1, time.Second).LockFor(time.Second)

	for _, exists := range []bool{true, false} {
		mr.Del(repo.CreateLockKey(key, limiter))
		if exists {
			testutil.AssertNoError(t, mr.Set(repo.CreateLockKey(key, limiter), "1"))
		}

		got, err := repo.LockExists(ctx, key, limiter)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, got, exists)
	}
}

func TestSetLock(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	repo, err := New(Config{Redis: rdb, Clock: testutil.NewMockClock(epoch2030)})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("test", "key")
	limiter := throttle.NewLimiter(1, time.Minute).LockFor(30 * time.Second)
	lockID := repo.CreateLockKey(key, limiter)

	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))
	testutil.AssertNoError(t, repo.SetLock(ctx, key, limiter))

	testutil.AssertEqual(t, lockID, "test:key:lock:30s")
	testutil.AssertEqual(t, mr.Exists(lockID), true)
	testutil.AssertEqual(t, mr.TTL(lockID), 30*time.Second)

	// Unlike the memory backend, locking leaves the counter in place.
	count, ok, err := repo.GetThrottleCount(ctx, key, limiter)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, count, int64(1))
}

func TestSetLockWithoutLockDurationPanics(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	recovered := testutil.AssertPanics(t, func() {
		_ = repo.SetLock(context.Background(), throttle.NewKey("k"), throttle.NewLimiter(1, time.Second))
	})
	if err, ok := recovered.(error); !ok || !errors.Is(err, bperrors.ErrNoLockDuration) {
		t.Errorf("panic = %v, want ErrNoLockDuration", recovered)
	}
}

func TestLockExpires(t *testing.T) {
	repo, _, fastForward := newTestRepository(t)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("test", "key")
	limiter := throttle.Limiter{}.Limit(1).Over(10 * time.Second).LockFor(time.Second)

	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))
	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))
	testutil.AssertNoError(t, repo.SetLock(ctx, key, limiter))

	exists, err := repo.LockExists(ctx, key, limiter)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, exists, true)

	fastForward(time.Second)

	exists, err = repo.LockExists(ctx, key, limiter)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, exists, false)
}

func TestRemoveThrottle(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	repo, err := New(Config{Redis: rdb, Clock: testutil.NewMockClock(epoch2030)})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("test", "key")
	limiter := throttle.NewLimiter(1, time.Minute).LockFor(time.Minute)

	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))
	testutil.AssertNoError(t, repo.SetLock(ctx, key, limiter))
	testutil.AssertNoError(t, repo.RemoveThrottle(ctx, key, limiter))

	testutil.AssertEqual(t, mr.Exists(repo.CreateThrottleKey(key, limiter)), false)
	testutil.AssertEqual(t, mr.Exists(repo.CreateLockKey(key, limiter)), true)
}

func TestPerSecondWindowsUseSeparateKeys(t *testing.T) {
	repo, clock, _ := newTestRepository(t)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("caller")
	limiter := throttle.Limiter{}.Limit(2).PerSecond()

	testutil.AssertEqual(t, repo.CreateThrottleKey(key, limiter), "caller:1s:1893456000")
	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))
	testutil.AssertNoError(t, repo.AddOrIncrementWithExpiration(ctx, key, limiter))

	clock.Advance(time.Second)
	testutil.AssertEqual(t, repo.CreateThrottleKey(key, limiter), "caller:1s:1893456001")

	_, ok, err := repo.GetThrottleCount(ctx, key, limiter)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, false)
}

func TestConcurrentIncrements(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	repo, err := New(Config{Redis: rdb, Clock: testutil.NewMockClock(epoch2030)})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("hot")
	limiter := throttle.NewLimiter(1000, time.Minute)

	const callers = 100
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.AddOrIncrementWithExpiration(ctx, key, limiter)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		testutil.AssertNoError(t, err)
	}

	count, _, err := repo.GetThrottleCount(ctx, key, limiter)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, int64(callers))
	testutil.AssertEqual(t, mr.TTL(repo.CreateThrottleKey(key, limiter)), time.Minute)
}

func TestStoreFailurePropagates(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	repo, err := New(Config{Redis: rdb, Timeout: time.Second})
	testutil.AssertNoError(t, err)
	mr.Close()

	ctx := context.Background()
	key := throttle.NewKey("k")
	limiter := throttle.NewLimiter(1, time.Minute).LockFor(time.Minute)

	checks := map[string]error{
		"AddOrIncrementWithExpiration": repo.AddOrIncrementWithExpiration(ctx, key, limiter),
		"SetLock":                      repo.SetLock(ctx, key, limiter),
		"RemoveThrottle":               repo.RemoveThrottle(ctx, key, limiter),
		"Ping":                         repo.Ping(ctx),
	}
	_, _, checks["GetThrottleCount"] = repo.GetThrottleCount(ctx, key, limiter)
	_, checks["LockExists"] = repo.LockExists(ctx, key, limiter)

	for op, err := range checks {
		var opErr *bperrors.OperationError
		if !errors.As(err, &opErr) {
			t.Errorf("%s: error = %v, want OperationError", op, err)
			continue
		}
		testutil.AssertEqual(t, opErr.Module, "distributed")
		testutil.AssertEqual(t, opErr.Operation, op)
	}
}

func TestWithPolicyIdentityValues(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	repo, err := New(Config{Redis: rdb, Clock: testutil.NewMockClock(epoch2030), IdentityValues: []any{"base"}})
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := throttle.NewKey("k")
	lim := throttle.NewLimiter(5, time.Minute)

	view := repo.WithPolicyIdentityValues("v")
	testutil.AssertNoError(t, view.AddOrIncrementWithExpiration(ctx, key, lim))

	testutil.AssertEqual(t, mr.Exists("v:k:1m"), true)
	testutil.AssertEqual(t, mr.Exists("base:k:1m"), false)
	testutil.AssertEqual(t, repo.CreateThrottleKey(key, lim), "base:k:1m")
}

func TestPing(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	testutil.AssertNoError(t, repo.Ping(ctx))
}
