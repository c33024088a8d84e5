package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	AssertEqual(t, clock.Now(), start)

	clock.Advance(100 * time.Second)
	AssertEqual(t, clock.Now(), time.Date(2030, 1, 1, 0, 1, 40, 0, time.UTC))

	clock.Set(start)
	AssertEqual(t, clock.Now(), start)
}

func TestNewMockClockZeroStart(t *testing.T) {
	before := time.Now()
	clock := NewMockClock(time.Time{})
	if clock.Now().Before(before) {
		t.Errorf("zero start should default to the current time, got %v", clock.Now())
	}
}

func TestEventually(t *testing.T) {
	var counter int32
	go func() {
		time.Sleep(30 * time.Millisecond)
		atomic.StoreInt32(&counter, 1)
	}()

	Eventually(t, func() bool {
		return atomic.LoadInt32(&counter) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAssertPanics(t *testing.T) {
	got := AssertPanics(t, func() { panic("boom") })
	AssertEqual(t, got, interface{}("boom"))
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(t)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("context should carry a deadline")
	}
	if time.Until(deadline) > TestTimeout {
		t.Errorf("deadline too far: %v", deadline)
	}
	if ctx.Err() != nil && ctx.Err() != context.DeadlineExceeded {
		t.Errorf("unexpected context error: %v", ctx.Err())
	}
}

func TestNewRedis(t *testing.T) {
	mr, rdb := NewRedis(t)
	ctx, cancel := WithTimeout(t)
	defer cancel()

	AssertNoError(t, rdb.Set(ctx, "k", "v", 0).Err())
	got, err := mr.Get("k")
	AssertNoError(t, err)
	AssertEqual(t, got, "v")
}
