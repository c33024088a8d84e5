package policy

// State is the outcome of evaluating one limiter, or a whole policy.
type State int

const (
	// Open means the key is within its limit and not locked.
	Open State = iota
	// Throttled means the current window's count exceeds the limit.
	Throttled
	// Locked means a lock installed by an earlier violation is still live.
	Locked
)

// String returns the lower-case state name used in logs and metric labels.
func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Throttled:
		return "throttled"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}

// Blocking reports whether s should deny the request.
func (s State) Blocking() bool {
	return s == Throttled || s == Locked
}
