package loadgate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Status is the load state of a source.
type Status uint8

const (
	// StatusPending means a fetch is in flight.
	StatusPending Status = iota
	// StatusReady means the image is cached.
	StatusReady
	// StatusFailed means the last fetch failed.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the status will not change without Forget or Reset.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusFailed
}

// Result is the outcome of Ensure, Subscribe and Wait.
type Result struct {
	Status Status
	Image  *Image
	Err    error
}

// Stats are cumulative gate counters.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Fetches  uint64
	Failures uint64
}

// subscription is one pending Subscribe callback.
type subscription struct {
	mu       sync.Mutex
	fn       func(Result)
	canceled bool
	fired    bool
}

// fire invokes fn at most once, and never after cancel.
func (s *subscription) fire(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canceled || s.fired {
		return
	}
	s.fired = true
	s.fn(res)
}

func (s *subscription) cancel() {
	s.mu.Lock()
	s.canceled = true
	s.mu.Unlock()
}

// Gate tracks which sources are loaded and runs deduplicated fetches.
//
// Gate is safe for concurrent use.
type Gate struct {
	log          *zap.Logger
	cache        *Cache
	fetcher      Fetcher
	fetchTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]bool
	failures map[string]error
	subs     map[string][]*subscription
	closed   bool

	hits      atomic.Uint64
	misses    atomic.Uint64
	fetches   atomic.Uint64
	failCount atomic.Uint64
}

// New creates a gate that loads images with fetcher.
func New(fetcher Fetcher, opts ...Option) *Gate {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if fetcher == nil {
		fetcher = &DefaultFetcher{}
	}
	if cfg.cache == nil {
		cfg.cache = NewCache(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := &Gate{
		log:          cfg.logger,
		cache:        cfg.cache,
		fetcher:      fetcher,
		fetchTimeout: cfg.fetchTimeout,
		ctx:          ctx,
		cancel:       cancel,
		inflight:     make(map[string]bool),
		failures:     make(map[string]error),
		subs:         make(map[string][]*subscription),
	}
	g.cache.setEvictHook(func(src string) {
		g.log.Debug("image evicted", zap.String("src", src))
	})
	return g
}

// Cache returns the gate's cache.
func (g *Gate) Cache() *Cache {
	return g.cache
}

// Ensure returns the current status of src, starting a fetch if src is
// neither cached, failed, nor already in flight. It never blocks on I/O.
func (g *Gate) Ensure(src string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ensureLocked(src)
}

func (g *Gate) ensureLocked(src string) Result {
	if g.closed {
		return Result{Status: StatusFailed, Err: ErrClosed}
	}
	if img, ok := g.cache.Get(src); ok {
		g.hits.Add(1)
		return Result{Status: StatusReady, Image: img}
	}
	if err, ok := g.failures[src]; ok {
		return Result{Status: StatusFailed, Err: err}
	}
	if !g.inflight[src] {
		g.misses.Add(1)
		g.inflight[src] = true
		g.log.Debug("image miss", zap.String("src", src))
		go func() {
			// The flight result is delivered through settle.
			_, _, _ = g.group.Do(src, func() (any, error) {
				return g.load(src)
			})
		}()
	}
	return Result{Status: StatusPending}
}

// Subscribe arranges for fn to receive the terminal result of src exactly
// once. If src is not yet loading, a fetch is started. If the result is
// already terminal, fn is invoked on another goroutine.
//
// After cancel returns, fn will not be invoked. fn must not call cancel.
func (g *Gate) Subscribe(src string, fn func(Result)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	sub := &subscription{fn: fn}

	g.mu.Lock()
	res := g.ensureLocked(src)
	if res.Status == StatusPending {
		g.subs[src] = append(g.subs[src], sub)
	}
	g.mu.Unlock()

	if res.Status.IsTerminal() {
		go sub.fire(res)
	}
	return func() {
		sub.cancel()
		g.dropSubscription(src, sub)
	}
}

func (g *Gate) dropSubscription(src string, sub *subscription) {
	g.mu.Lock()
	defer g.mu.Unlock()

	list := g.subs[src]
	for i, s := range list {
		if s == sub {
			g.subs[src] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(g.subs[src]) == 0 {
		delete(g.subs, src)
	}
}

// Wait blocks until src is ready or failed, or ctx is done. It joins any
// fetch already in flight for src.
func (g *Gate) Wait(ctx context.Context, src string) (Result, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return Result{Status: StatusFailed, Err: ErrClosed}, ErrClosed
	}
	if img, ok := g.cache.Get(src); ok {
		g.mu.Unlock()
		g.hits.Add(1)
		return Result{Status: StatusReady, Image: img}, nil
	}
	if err, ok := g.failures[src]; ok {
		g.mu.Unlock()
		return Result{Status: StatusFailed, Err: err}, err
	}
	g.mu.Unlock()

	ch := g.group.DoChan(src, func() (any, error) {
		return g.load(src)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return Result{Status: StatusFailed, Err: r.Err}, r.Err
		}
		return Result{Status: StatusReady, Image: r.Val.(*Image)}, nil
	case <-ctx.Done():
		return Result{Status: StatusPending}, ctx.Err()
	}
}

// load runs one fetch for src and settles every waiter. It executes inside a
// singleflight group, so concurrent callers share it.
func (g *Gate) load(src string) (*Image, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		g.settle(src, nil, ErrClosed)
		return nil, ErrClosed
	}
	// A flight that finished just before this one started already cached src.
	if img, ok := g.cache.Get(src); ok {
		g.mu.Unlock()
		g.settle(src, img, nil)
		return img, nil
	}
	// Likewise a failed flight is final until Forget or Reset.
	if err, ok := g.failures[src]; ok {
		g.mu.Unlock()
		g.settle(src, nil, err)
		return nil, err
	}
	g.wg.Add(1)
	g.mu.Unlock()
	defer g.wg.Done()

	if src == "" {
		err := wrapFetchError(src, "", ErrEmptySource)
		g.settle(src, nil, err)
		return nil, err
	}

	ctx := g.ctx
	if g.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.fetchTimeout)
		defer cancel()
	}

	g.fetches.Add(1)
	start := time.Now()
	img, err := g.fetcher.Fetch(ctx, src)
	if err == nil && img == nil {
		err = ErrNotImage
	}
	if err != nil {
		err = wrapFetchError(src, "fetch", err)
		g.failCount.Add(1)
		g.log.Warn("image load failed",
			zap.String("src", src),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		g.settle(src, nil, err)
		return nil, err
	}

	img.Src = src
	g.log.Debug("image loaded",
		zap.String("src", src),
		zap.String("format", img.Format),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.Duration("elapsed", time.Since(start)))
	g.settle(src, img, nil)
	return img, nil
}

// settle records the outcome for src and resumes its subscribers.
func (g *Gate) settle(src string, img *Image, err error) {
	g.mu.Lock()
	switch {
	case err == nil:
		g.cache.Put(img)
		delete(g.failures, src)
	case errors.Is(err, ErrClosed), errors.Is(err, context.Canceled):
		// Not remembered: the gate is going away.
	default:
		g.failures[src] = err
	}
	delete(g.inflight, src)
	subs := g.subs[src]
	delete(g.subs, src)
	g.mu.Unlock()

	res := Result{Status: StatusReady, Image: img}
	if err != nil {
		res = Result{Status: StatusFailed, Err: err}
	}
	for _, sub := range subs {
		sub.fire(res)
	}
}

// Status returns the status of src without starting a fetch. A source that
// is neither cached, failed, nor in flight reports StatusPending and false.
func (g *Gate) Status(src string) (Status, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.cache.Has(src):
		return StatusReady, true
	case g.failures[src] != nil:
		return StatusFailed, true
	case g.inflight[src]:
		return StatusPending, true
	default:
		return StatusPending, false
	}
}

// Forget drops any cached image or remembered failure for src, so the next
// Ensure fetches again.
func (g *Gate) Forget(src string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache.Remove(src)
	delete(g.failures, src)
}

// Reset drops every cached image and remembered failure.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache.Clear()
	g.failures = make(map[string]error)
}

// Stats returns a snapshot of the gate counters.
func (g *Gate) Stats() Stats {
	return Stats{
		Hits:     g.hits.Load(),
		Misses:   g.misses.Load(),
		Fetches:  g.fetches.Load(),
		Failures: g.failCount.Load(),
	}
}

// Close cancels in-flight fetches and waits for them to finish. Pending
// subscribers receive StatusFailed.
func (g *Gate) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.mu.Unlock()

	g.cancel()
	g.wg.Wait()
	return nil
}
