// Package distributed provides a throttle.Repository backed by Redis, so that
// every application instance shares the same counters and locks.
//
// # Protocol
//
// Counters are plain integers under the canonical counter key:
//
//	INCR api:user-42:1m
//	EXPIRE api:user-42:1m 60      (only when INCR returned 1)
//
// An INCR result of 1 marks the start of a window, either because the key
// was new or because it expired just before the increment. Only then is the
// TTL set; later increments leave it alone so a busy caller cannot push its
// own window back.
//
// Locks are written in one MULTI/EXEC transaction so no reader ever sees a
// lock key without its TTL:
//
//	MULTI
//	INCR api:user-42:lock:15m
//	EXPIRE api:user-42:lock:15m 900
//	EXEC
//
// # Quick Start
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	repo, err := distributed.New(distributed.Config{Redis: rdb})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	login := throttle.Limiter{}.Limit(5).PerMinute().LockFor(15 * time.Minute)
//	p, _ := policy.New(repo, policy.Config{Name: "login", Limiters: []throttle.Limiter{login}})
//
// # Failure Handling
//
// Redis errors are returned as *errors.OperationError carrying the key. The
// repository never retries; configure retries on the go-redis client if
// needed. Timeout bounds each call when set.
//
// A counter whose stored value is missing or not an integer reads as absent.
package distributed
