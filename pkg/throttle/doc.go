// Package throttle defines the fixed-window throttling engine: limiters,
// keys, the canonical key format and the Repository contract that backends
// implement.
//
// # Keys
//
// A counter key is the colon-joined list of the repository's policy identity
// values, the Key's values and the friendly form of the limiter's period:
//
//	api:user-42:1m40s
//
// Limiters with a period of exactly one second add the current Unix second,
// so every second gets its own counter:
//
//	api:user-42:1s:1893456000
//
// Lock keys replace the period with the literal "lock" and the friendly lock
// duration:
//
//	api:user-42:lock:15m
//
// # Fixed windows
//
// AddOrIncrementWithExpiration creates a counter at 1 with an expiration one
// period away, and only ever increments it afterwards. The expiration is
// never pushed back, which is what makes the window fixed rather than
// sliding.
//
// # Backends
//
// Two Repository implementations ship with the module:
//
//   - distributed: Redis through go-redis, shared by every process
//   - memory: an in-process expiring cache with an injectable Clock
//
// Both are selected by the caller at construction time; policy.Policy only
// sees the interface.
package throttle
