package throttle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// KeySeparator joins the segments of a canonical key.
	KeySeparator = ":"

	// LockMarker is the literal segment that distinguishes lock keys.
	LockMarker = "lock"
)

// FriendlyDuration renders d as its non-zero day, hour, minute and second
// components with no separator: 100s is "1m40s", 24h is "1d". Anything
// below one second is dropped.
func FriendlyDuration(d time.Duration) string {
	secs := int64(d / time.Second)

	days := secs / 86400
	hours := secs % 86400 / 3600
	minutes := secs % 3600 / 60
	seconds := secs % 60

	var b strings.Builder
	for _, part := range []struct {
		n    int64
		unit string
	}{
		{days, "d"},
		{hours, "h"},
		{minutes, "m"},
		{seconds, "s"},
	} {
		if part.n != 0 {
			b.WriteString(strconv.FormatInt(part.n, 10))
			b.WriteString(part.unit)
		}
	}
	return b.String()
}

// BaseKeyValues returns identity followed by the key's values.
func BaseKeyValues(key Key, identity []any) []any {
	values := key.Values()
	out := make([]any, 0, len(identity)+len(values)+3)
	out = append(out, identity...)
	return append(out, values...)
}

// ThrottleKeyString builds the counter key for key under limiter. A limiter
// with a period of exactly one second gets now's Unix timestamp appended so
// every second is its own window.
func ThrottleKeyString(key Key, limiter Limiter, identity []any, now time.Time) string {
	values := BaseKeyValues(key, identity)
	values = append(values, FriendlyDuration(limiter.Period()))
	if limiter.Period() == time.Second {
		values = append(values, now.Unix())
	}
	return joinValues(values)
}

// LockKeyString builds the lock key for key under limiter. It panics when
// the limiter has no lock duration.
func LockKeyString(key Key, limiter Limiter, identity []any) string {
	lock := limiter.MustLockDuration()
	values := BaseKeyValues(key, identity)
	values = append(values, LockMarker, FriendlyDuration(lock))
	return joinValues(values)
}

// SplitKeyString splits a canonical key back into its segments. The split is
// unambiguous as long as no identity or key value contains KeySeparator.
func SplitKeyString(s string) []string {
	return strings.Split(s, KeySeparator)
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, KeySeparator)
}
