package async

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	bperrors "github.com/vnykmshr/brakepedal/pkg/common/errors"
	"github.com/vnykmshr/brakepedal/internal/testutil"
)

func TestGo(t *testing.T) {
	d := newTestDispatcher(t, Config{Workers: 2, QueueSize: 4})
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	f := Go(ctx, d, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	v, err := f.Wait(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 42)

	select {
	case <-f.Done():
	default:
		t.Error("Done should be closed after Wait returned")
	}

	errBoom := errors.New("boom")
	_, err = Go(ctx, d, func(ctx context.Context) (string, error) {
		return "", errBoom
	}).Wait(ctx)
	if !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want errBoom", err)
	}
}

func TestGoPanic(t *testing.T) {
	d := newTestDispatcher(t, Config{Workers: 1})
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	_, err := Go(ctx, d, func(ctx context.Context) (int, error) {
		panic("kaboom")
	}).Wait(ctx)
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("err = %v, want panic error", err)
	}
}

func TestGoOnClosedDispatcher(t *testing.T) {
	d, err := NewDispatcher(Config{Workers: 1})
	testutil.AssertNoError(t, err)
	<-d.Shutdown()

	f := Go(context.Background(), d, func(ctx context.Context) (int, error) {
		return 1, nil
	})
	_, err = f.Wait(context.Background())
	if !errors.Is(err, bperrors.ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestFutureWaitCanceled(t *testing.T) {
	d := newTestDispatcher(t, Config{Workers: 1})

	release := make(chan struct{})
	f := Go(context.Background(), d, func(ctx context.Context) (int, error) {
		<-release
		return 7, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}

	close(release)
	v, err := f.Wait(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 7)
}
