// Package facade is the external-collaborator layer (spec §1/§6) that
// wires C1 through C8 together: construct a transaction, append commands,
// commit, fetch, query. It owns no domain logic of its own; every
// method is a thin call into the component it names.
package facade

import (
	"context"
	"time"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/internal/command"
	"github.com/ChuLiYu/jobcore/internal/config"
	"github.com/ChuLiYu/jobcore/internal/dispatcher"
	"github.com/ChuLiYu/jobcore/internal/fetch"
	"github.com/ChuLiYu/jobcore/internal/lockregistry"
	"github.com/ChuLiYu/jobcore/internal/queuewait"
	"github.com/ChuLiYu/jobcore/internal/store"
	"github.com/ChuLiYu/jobcore/internal/txn"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

// Facade is the engine entry point, generic over the job-key variant
// selected at startup from config.Engine.IDType (spec's "idType" knob,
// resolved here rather than at runtime, since Go generics are compile
// time: cmd/engine picks between Facade[types.IntKey] and
// Facade[types.UUIDKey] once, at process start).
type Facade[K types.Key[K]] struct {
	Store      *store.Store[K]
	Dispatcher *dispatcher.Dispatcher[K]
	Locks      *lockregistry.Registry
	Graph      *queuewait.Graph
	Fetcher    *fetch.Fetcher[K]
	clk        clock.Clock
	keyGen     func() K
}

func stringComparer(kind config.StringComparerKind) types.StringComparer {
	if kind == config.ComparerCaseInsensitive {
		return types.CaseInsensitiveComparer
	}
	return types.OrdinalComparer
}

func readStrategy(s string) dispatcher.ReadStrategy {
	if s == "concurrent" {
		return dispatcher.ReadConcurrent
	}
	return dispatcher.ReadSequential
}

// New builds a fully wired engine: state store (C2), dispatcher (C5),
// lock registry (C3), queue wait graph (C4), and fetcher (C7). keyGen
// mints new job keys (see pkg/types.IntKeyGenerator / UUIDKeyGenerator).
func New[K types.Key[K]](cfg config.Config, clk clock.Clock, keyGen func() K) *Facade[K] {
	s := store.New[K](store.Options{
		Clock:             clk,
		StringComparer:    stringComparer(cfg.Engine.StringComparer),
		MaxExpirationTime: cfg.Engine.MaxExpirationTime,
		MaxStateHistory:   cfg.Engine.MaxStateHistoryLength,
	})
	graph := queuewait.New()
	d := dispatcher.New[K](s, clk, graph, dispatcher.Options{
		Strategy:         readStrategy(cfg.Engine.ReadStrategy),
		CommandTimeout:   cfg.Engine.CommandTimeout,
		EvictionInterval: cfg.Engine.EvictionInterval,
	})
	return &Facade[K]{
		Store:      s,
		Dispatcher: d,
		Locks:      lockregistry.New(),
		Graph:      graph,
		Fetcher:    fetch.New[K](d, graph),
		clk:        clk,
		keyGen:     keyGen,
	}
}

// Close shuts the dispatcher's worker goroutine down gracefully.
func (f *Facade[K]) Close() { f.Dispatcher.Close() }

// NewKey mints a fresh job key.
func (f *Facade[K]) NewKey() K { return f.keyGen() }

// BeginTxn starts a new transaction bound to this engine's dispatcher
// (spec §4.6).
func (f *Facade[K]) BeginTxn() *txn.Txn[K] {
	return txn.New[K](f.Dispatcher)
}

// AcquireLock blocks (respecting ctx) until the named resource is held by
// owner, reentrantly if owner already holds it (spec §4.3).
func (f *Facade[K]) AcquireLock(ctx context.Context, resource, owner string) (*lockregistry.Handle, error) {
	return f.Locks.Acquire(ctx, resource, owner)
}

// FetchNext blocks until a job key is available on one of queues, or ctx
// is done (spec §4.7).
func (f *Facade[K]) FetchNext(ctx context.Context, queues []string) (string, K, error) {
	return f.Fetcher.FetchNext(ctx, queues)
}

// --- Read queries (spec §4.8); all go through the dispatcher so they
// observe a consistent snapshot relative to the configured ReadStrategy.

func (f *Facade[K]) JobGet(ctx context.Context, key K) (*types.Job[K], error) {
	return dispatcher.SubmitRead[K, *types.Job[K]](ctx, f.Dispatcher, command.JobGetQuery[K](key))
}

func (f *Facade[K]) JobCount(ctx context.Context) (int, error) {
	return dispatcher.SubmitRead[K, int](ctx, f.Dispatcher, command.JobCountQuery[K]())
}

func (f *Facade[K]) StateCount(ctx context.Context, state string) (int, error) {
	return dispatcher.SubmitRead[K, int](ctx, f.Dispatcher, command.StateCountQuery[K](state))
}

func (f *Facade[K]) StateRange(ctx context.Context, state string, offset, count int) ([]K, error) {
	return dispatcher.SubmitRead[K, []K](ctx, f.Dispatcher, command.StateRangeQuery[K](state, offset, count))
}

func (f *Facade[K]) QueueCount(ctx context.Context, queue string) (int, error) {
	return dispatcher.SubmitRead[K, int](ctx, f.Dispatcher, command.QueueCountQuery[K](queue))
}

func (f *Facade[K]) QueuePeek(ctx context.Context, queue string, offset, count int) ([]K, error) {
	return dispatcher.SubmitRead[K, []K](ctx, f.Dispatcher, command.QueuePeekQuery[K](queue, offset, count))
}

func (f *Facade[K]) CounterGet(ctx context.Context, name string) (int64, error) {
	return dispatcher.SubmitRead[K, int64](ctx, f.Dispatcher, command.CounterGetQuery[K](name))
}

func (f *Facade[K]) HashGet(ctx context.Context, name string) (map[string]string, error) {
	return dispatcher.SubmitRead[K, map[string]string](ctx, f.Dispatcher, command.HashGetQuery[K](name))
}

func (f *Facade[K]) ListRange(ctx context.Context, name string, from, to int) ([]string, error) {
	return dispatcher.SubmitRead[K, []string](ctx, f.Dispatcher, command.ListRangeQuery[K](name, from, to))
}

func (f *Facade[K]) SetScan(ctx context.Context, name string) ([]types.SortedSetMember, error) {
	return dispatcher.SubmitRead[K, []types.SortedSetMember](ctx, f.Dispatcher, command.SetScanQuery[K](name))
}

func (f *Facade[K]) ServerGet(ctx context.Context, id string) (*types.ServerInfo, error) {
	return dispatcher.SubmitRead[K, *types.ServerInfo](ctx, f.Dispatcher, command.ServerGetQuery[K](id))
}

func (f *Facade[K]) ServerCount(ctx context.Context) (int, error) {
	return dispatcher.SubmitRead[K, int](ctx, f.Dispatcher, command.ServerCountQuery[K]())
}

// EnqueueJob is a one-shot convenience wrapping the common create+enqueue
// flow in a single transaction: mint a key, create the job, enqueue it,
// commit. Returns the minted key.
func (f *Facade[K]) EnqueueJob(ctx context.Context, queue string, invocation []byte, params map[string]string, expireIn *time.Duration) (K, error) {
	key := f.NewKey()
	job := &types.Job[K]{
		Key:        key,
		Invocation: invocation,
		Parameters: params,
		CreatedAt:  f.clk.Now(),
	}
	tx := f.BeginTxn()
	if err := tx.Append(&command.JobCreate[K]{Job: job, ExpireIn: expireIn}); err != nil {
		var zero K
		return zero, err
	}
	if err := tx.Append(&command.QueueEnqueue[K]{Queue: queue, Key: key}); err != nil {
		var zero K
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		var zero K
		return zero, err
	}
	return key, nil
}
