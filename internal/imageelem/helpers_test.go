package imageelem

import (
	"context"
	"image"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/editor"
	"github.com/dshills/imagenode/internal/loadgate"
)

// manualClock fires timers only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs due timers in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

// Pending returns the number of armed timers.
func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// gatedFetcher returns a 10x10 image once release is closed.
type gatedFetcher struct {
	release chan struct{}
}

func newGatedFetcher(open bool) *gatedFetcher {
	f := &gatedFetcher{release: make(chan struct{})}
	if open {
		close(f.release)
	}
	return f
}

func (f *gatedFetcher) Fetch(ctx context.Context, src string) (*loadgate.Image, error) {
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return loadgate.NewImage(src, "png", image.NewRGBA(image.Rect(0, 0, 10, 10)), 100), nil
}

type fixture struct {
	ed    *editor.Editor
	gate  *loadgate.Gate
	clock *manualClock
	node  *document.ImageNode
	el    *Element
}

// newFixture builds an editor with image "img" and paragraph "p" and mounts
// an element for "img".
func newFixture(t *testing.T, fetcher loadgate.Fetcher) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)

	tree := document.NewTree()
	node := document.NewImageNodeWithKey("img", document.ImageAttrs{
		Src:       "a.png",
		AltText:   "a picture",
		Width:     document.Pixels(200),
		Height:    document.Inherit,
		MaxWidth:  500,
		Resizable: true,
	})
	if err := tree.Insert(node); err != nil {
		t.Fatal(err)
	}
	if err := tree.Insert(document.NewParagraphNodeWithKey("p", "hello")); err != nil {
		t.Fatal(err)
	}

	ed := editor.New(tree, editor.WithLogger(log))
	gate := loadgate.New(fetcher, loadgate.WithLogger(log))
	t.Cleanup(func() { gate.Close() })

	clock := &manualClock{}
	el := New(ed, gate, PropsFromNode(node), WithLogger(log), WithClock(clock))
	el.Mount()
	t.Cleanup(el.Unmount)

	return &fixture{ed: ed, gate: gate, clock: clock, node: node, el: el}
}

// runNextTask waits for one posted task and runs it.
func runNextTask(t *testing.T, ed *editor.Editor) {
	t.Helper()
	select {
	case fn := <-ed.Tasks():
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a posted task")
	}
}

// runUntil runs posted tasks until cond holds.
func runUntil(t *testing.T, ed *editor.Editor, cond func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !cond() {
		select {
		case fn := <-ed.Tasks():
			fn()
		case <-deadline:
			t.Fatal("timed out waiting for condition")
		}
	}
}
