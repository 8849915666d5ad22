package opworker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/internal/config"
	"github.com/ChuLiYu/jobcore/internal/facade"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

func newTestFacade(t *testing.T) *facade.Facade[types.IntKey] {
	t.Helper()
	gen := &types.IntKeyGenerator{}
	f := facade.New[types.IntKey](config.Default(), clock.NewReal(), gen.Next)
	t.Cleanup(f.Close)
	return f
}

func waitForState(t *testing.T, f *facade.Facade[types.IntKey], key types.IntKey, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := f.JobGet(context.Background(), key)
		if err != nil {
			t.Fatalf("JobGet: %v", err)
		}
		if job != nil && job.CurrentState != nil && job.CurrentState.Name == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %v never reached state %q", key, want)
}

func TestPoolMarksSucceeded(t *testing.T) {
	f := newTestFacade(t)
	key, err := f.EnqueueJob(context.Background(), "q", nil, nil, nil)
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}

	pool := New[types.IntKey](f, []string{"q"}, func(ctx context.Context, k types.IntKey) error {
		return nil
	})
	if err := pool.Start(2); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer pool.Stop()

	waitForState(t, f, key, "Succeeded")
}

func TestPoolMarksFailed(t *testing.T) {
	f := newTestFacade(t)
	key, err := f.EnqueueJob(context.Background(), "q", nil, nil, nil)
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}

	pool := New[types.IntKey](f, []string{"q"}, func(ctx context.Context, k types.IntKey) error {
		return errors.New("handler failed")
	})
	if err := pool.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer pool.Stop()

	waitForState(t, f, key, "Failed")
}

func TestStartTwiceReturnsErrAlreadyStarted(t *testing.T) {
	f := newTestFacade(t)
	pool := New[types.IntKey](f, []string{"q"}, func(ctx context.Context, k types.IntKey) error { return nil })
	if err := pool.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer pool.Stop()
	if err := pool.Start(1); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start = %v, want ErrAlreadyStarted", err)
	}
}
