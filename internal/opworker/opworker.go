// Package opworker is a small demo worker pool: N goroutines that
// repeatedly call Facade.FetchNext and drive a fetched job through its
// state transitions. It is not part of the core engine (C1-C8): the
// engine only ever hands out opaque job keys (spec §6, "a serialization
// hook for invocation payloads (opaque to the core)"); what a caller does
// with a fetched key is entirely up to it. This pool exists so cmd/engine
// has something to run end to end.
package opworker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ChuLiYu/jobcore/internal/command"
	"github.com/ChuLiYu/jobcore/internal/facade"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

var log = slog.Default()

// ErrAlreadyStarted is returned by Start on a pool that is already running.
var ErrAlreadyStarted = errors.New("opworker: pool already started")

// Handler processes one fetched job. Returning an error marks the job
// failed; returning nil marks it succeeded.
type Handler[K types.Key[K]] func(ctx context.Context, key K) error

// Pool runs a fixed number of fetch-and-process loops against a Facade.
type Pool[K types.Key[K]] struct {
	f       *facade.Facade[K]
	queues  []string
	handler Handler[K]

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New returns a pool that fetches from queues and runs handler on every
// job it pops.
func New[K types.Key[K]](f *facade.Facade[K], queues []string, handler Handler[K]) *Pool[K] {
	return &Pool[K]{f: f, queues: queues, handler: handler}
}

// Start launches n worker goroutines.
func (p *Pool[K]) Start(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true
	p.stopCh = make(chan struct{})

	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.loop(i)
	}
	return nil
}

// Stop signals every worker goroutine to exit and waits for them to drain.
func (p *Pool[K]) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool[K]) loop(id int) {
	defer p.wg.Done()
	ctx, cancel := contextWithStop(p.stopCh)
	defer cancel()

	for {
		queue, key, err := p.f.FetchNext(ctx, p.queues)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Warn("opworker fetch failed", "worker", id, "error", err)
			return
		}

		if err := p.handler(ctx, key); err != nil {
			log.Warn("opworker job failed", "worker", id, "queue", queue, "key", key.String(), "error", err)
			if markErr := p.markFailed(ctx, key, err); markErr != nil {
				log.Error("opworker could not record failure", "error", markErr)
			}
			continue
		}
		if markErr := p.markSucceeded(ctx, key); markErr != nil {
			log.Error("opworker could not record success", "error", markErr)
		}
	}
}

func (p *Pool[K]) markSucceeded(ctx context.Context, key K) error {
	tx := p.f.BeginTxn()
	if err := tx.Append(&command.JobSetState[K]{Key: key, Record: types.StateRecord{Name: "Succeeded"}}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Pool[K]) markFailed(ctx context.Context, key K, cause error) error {
	tx := p.f.BeginTxn()
	record := types.StateRecord{
		Name:   "Failed",
		Reason: cause.Error(),
	}
	if err := tx.Append(&command.JobSetState[K]{Key: key, Record: record}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// contextWithStop derives a cancellable context that cancels when stopCh
// is closed.
func contextWithStop(stopCh <-chan struct{}) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
