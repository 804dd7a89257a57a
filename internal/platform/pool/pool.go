package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/puddle/v2"
)

var (
	// ErrPoolExhausted is returned when no resource became available within
	// the acquire timeout.
	ErrPoolExhausted = errors.New("connection pool exhausted")

	// ErrPoolClosed is returned when acquiring from a closed pool.
	ErrPoolClosed = errors.New("connection pool closed")

	// ErrWarmupFailed is returned by New when the initial resources cannot be created.
	ErrWarmupFailed = errors.New("connection pool warm-up failed")
)

// Default settings applied when a Config field is zero.
const (
	DefaultAcquireTimeout    = 5 * time.Second
	DefaultHealthCheckPeriod = 30 * time.Second
	defaultDestroyTimeout    = 5 * time.Second
)

// Config describes how a Pool creates, validates, and destroys resources.
type Config[T any] struct {
	// MinSize is the number of resources created at start-up and maintained
	// in the background. At least one resource is always created at start-up
	// to prove the backing service is reachable.
	MinSize int32
	// MaxSize bounds the number of live resources.
	MaxSize int32

	AcquireTimeout    time.Duration
	HealthCheckPeriod time.Duration

	// Constructor creates a new resource. Required.
	Constructor func(ctx context.Context) (T, error)
	// Destructor closes a resource. Optional.
	Destructor func(ctx context.Context, value T)
	// IsBroken reports whether a resource must not be reused. Optional.
	IsBroken func(value T) bool
	// DiscardOn reports whether an error returned inside With leaves the
	// resource unfit for reuse. Optional; when nil only IsBroken decides.
	DiscardOn func(err error) bool

	Logger *slog.Logger
}

// Resource is a value checked out of a Pool. It must be handed back with
// Pool.Release or Pool.Discard exactly once; further calls are ignored.
type Resource[T any] struct {
	res  *puddle.Resource[T]
	done atomic.Bool
}

// Value returns the underlying resource.
func (r *Resource[T]) Value() T {
	return r.res.Value()
}

// Stats is a point-in-time view of pool occupancy and activity.
type Stats struct {
	Acquired     int32
	Idle         int32
	Constructing int32
	Total        int32
	Max          int32

	AcquireCount         int64
	EmptyAcquireCount    int64
	CanceledAcquireCount int64
	ExhaustedCount       int64
	DestroyedCount       int64
	AcquireDuration      time.Duration
}

// Pool is a bounded pool of resources of type T.
type Pool[T any] struct {
	p      *puddle.Pool[T]
	cfg    Config[T]
	logger *slog.Logger

	exhausted atomic.Int64
	destroyed atomic.Int64
	// destroying counts resources handed to puddle for destruction whose
	// destructor has not returned yet. puddle keeps them counted as acquired
	// until then.
	destroying atomic.Int32

	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

// New creates a pool, creates its initial resources, and starts background
// maintenance. It fails with ErrWarmupFailed if the initial resources cannot
// be created within ctx.
func New[T any](ctx context.Context, cfg Config[T]) (*Pool[T], error) {
	if cfg.Constructor == nil {
		return nil, errors.New("pool constructor is required")
	}
	if cfg.MaxSize < 1 {
		return nil, fmt.Errorf("pool max size must be at least 1, got %d", cfg.MaxSize)
	}
	if cfg.MinSize < 0 || cfg.MinSize > cfg.MaxSize {
		return nil, fmt.Errorf("pool min size must be between 0 and %d, got %d", cfg.MaxSize, cfg.MinSize)
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultAcquireTimeout
	}
	if cfg.HealthCheckPeriod <= 0 {
		cfg.HealthCheckPeriod = DefaultHealthCheckPeriod
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p := &Pool[T]{
		cfg:    cfg,
		logger: cfg.Logger.With(slog.String("component", "pool")),
		closed: make(chan struct{}),
	}

	pp, err := puddle.NewPool(&puddle.Config[T]{
		Constructor: cfg.Constructor,
		Destructor:  p.destroy,
		MaxSize:     cfg.MaxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	p.p = pp

	warm := max(cfg.MinSize, 1)
	for i := int32(0); i < warm; i++ {
		if err := pp.CreateResource(ctx); err != nil {
			pp.Close()
			return nil, fmt.Errorf("%w: resource %d of %d: %w", ErrWarmupFailed, i+1, warm, err)
		}
	}

	p.wg.Add(1)
	go p.maintain()

	p.logger.Debug("pool started",
		slog.Int("min_size", int(cfg.MinSize)),
		slog.Int("max_size", int(cfg.MaxSize)),
		slog.Duration("acquire_timeout", cfg.AcquireTimeout))

	return p, nil
}

func (p *Pool[T]) destroy(value T) {
	defer p.destroyDone()
	if p.cfg.Destructor == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultDestroyTimeout)
	defer cancel()
	p.cfg.Destructor(ctx, value)
}

// destroyResource destroys an acquired resource in the background.
func (p *Pool[T]) destroyResource(res *puddle.Resource[T]) {
	p.destroyed.Add(1)
	p.destroying.Add(1)
	res.Destroy()
}

// destroyDone settles the pending count once a destructor returns. Resources
// closed by puddle itself during Close were never counted.
func (p *Pool[T]) destroyDone() {
	for {
		n := p.destroying.Load()
		if n <= 0 || p.destroying.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// Acquire checks out a resource, waiting in FIFO order behind earlier callers
// for at most the configured acquire timeout. It returns ErrPoolExhausted when
// the acquire timeout or ctx's deadline expires while waiting, ErrPoolClosed
// after Close, and context.Canceled if the caller canceled ctx.
func (p *Pool[T]) Acquire(ctx context.Context) (*Resource[T], error) {
	actx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	// Idle resources can break while parked, e.g. when the server drops the
	// connection. Replace them instead of handing them out, but give up if
	// even fresh resources come back broken.
	for attempt := int32(0); attempt <= p.cfg.MaxSize; attempt++ {
		res, err := p.p.Acquire(actx)
		if err != nil {
			return nil, p.acquireError(ctx, err)
		}

		if p.cfg.IsBroken != nil && p.cfg.IsBroken(res.Value()) {
			p.destroyResource(res)
			continue
		}

		return &Resource[T]{res: res}, nil
	}

	return nil, errors.New("failed to acquire resource: every candidate was broken")
}

func (p *Pool[T]) acquireError(ctx context.Context, err error) error {
	// A deadline that expires while queued means no resource freed up in
	// time, whichever of the acquire timeout or the caller's deadline came
	// first. Only an explicit cancellation is reported as the caller's error.
	switch {
	case errors.Is(err, puddle.ErrClosedPool):
		return ErrPoolClosed
	case errors.Is(ctx.Err(), context.Canceled):
		return ctx.Err()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		p.exhausted.Add(1)
		p.logger.Warn("pool acquire timed out",
			slog.Duration("acquire_timeout", p.cfg.AcquireTimeout),
			slog.Int("max_size", int(p.cfg.MaxSize)),
			slog.Bool("caller_deadline", ctx.Err() != nil))
		return fmt.Errorf("%w: %w", ErrPoolExhausted, context.DeadlineExceeded)
	default:
		return fmt.Errorf("failed to acquire resource: %w", err)
	}
}

// Release returns a resource to the pool. A resource that IsBroken reports as
// broken is destroyed instead; a replacement is created lazily by the next
// Acquire, up to MaxSize.
func (p *Pool[T]) Release(r *Resource[T]) {
	if r == nil || !r.done.CompareAndSwap(false, true) {
		return
	}
	if p.cfg.IsBroken != nil && p.cfg.IsBroken(r.res.Value()) {
		p.destroyResource(r.res)
		return
	}
	r.res.Release()
}

// Discard destroys a resource unconditionally.
func (p *Pool[T]) Discard(r *Resource[T]) {
	if r == nil || !r.done.CompareAndSwap(false, true) {
		return
	}
	p.destroyResource(r.res)
}

// With acquires a resource, runs fn with it, and hands it back on every exit
// path. The resource is discarded if fn panics or returns an error matched by
// DiscardOn; otherwise it is released.
func (p *Pool[T]) With(ctx context.Context, fn func(ctx context.Context, value T) error) (err error) {
	r, err := p.Acquire(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if rec := recover(); rec != nil {
			p.Discard(r)
			// ALLOW-PANIC: propagating caught panic after discarding the resource
			panic(rec)
		}
		if err != nil && p.cfg.DiscardOn != nil && p.cfg.DiscardOn(err) {
			p.Discard(r)
			return
		}
		p.Release(r)
	}()

	return fn(ctx, r.Value())
}

// Stats returns current occupancy and cumulative counters. Resources being
// destroyed are excluded from Acquired and Total. The two reads are not
// atomic, so a resource whose destructor has just returned may still be
// counted for a moment.
func (p *Pool[T]) Stats() Stats {
	s := p.p.Stat()
	pending := p.destroying.Load()
	return Stats{
		Acquired:             max(s.AcquiredResources()-pending, 0),
		Idle:                 s.IdleResources(),
		Constructing:         s.ConstructingResources(),
		Total:                max(s.TotalResources()-pending, 0),
		Max:                  s.MaxResources(),
		AcquireCount:         s.AcquireCount(),
		EmptyAcquireCount:    s.EmptyAcquireCount(),
		CanceledAcquireCount: s.CanceledAcquireCount(),
		ExhaustedCount:       p.exhausted.Load(),
		DestroyedCount:       p.destroyed.Load(),
		AcquireDuration:      s.AcquireDuration(),
	}
}

// Close stops background maintenance and closes every resource. It blocks
// until all checked-out resources have been returned.
func (p *Pool[T]) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.wg.Wait()
		p.p.Close()
		p.logger.Debug("pool closed")
	})
}

func (p *Pool[T]) maintain() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.HealthCheckPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-p.closed:
			return
		case <-ticker.C:
			p.checkIdle()
			p.ensureMinSize()
		}
	}
}

// checkIdle destroys idle resources that have broken since their last use.
func (p *Pool[T]) checkIdle() {
	if p.cfg.IsBroken == nil {
		return
	}
	for _, res := range p.p.AcquireAllIdle() {
		if p.cfg.IsBroken(res.Value()) {
			p.destroyResource(res)
			continue
		}
		res.ReleaseUnused()
	}
}

// ensureMinSize tops the pool back up to MinSize after resources were destroyed.
func (p *Pool[T]) ensureMinSize() {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.AcquireTimeout)
	defer cancel()

	for p.p.Stat().TotalResources() < p.cfg.MinSize {
		select {
		case <-p.closed:
			return
		default:
		}
		if err := p.p.CreateResource(ctx); err != nil {
			if !errors.Is(err, puddle.ErrNotAvailable) && !errors.Is(err, puddle.ErrClosedPool) {
				p.logger.Warn("failed to replenish pool", slog.String("error", err.Error()))
			}
			return
		}
	}
}
