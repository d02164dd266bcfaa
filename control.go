package webview

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/webview/cstring"
	"github.com/wippyai/webview/native"
)

// control is the block shared by every reference to one native instance.
type control struct {
	engine native.Engine
	handle native.Handle

	// strong counts live owning references. Once it reaches zero it never
	// rises again, so acquire and teardown cannot interleave.
	strong atomic.Int64

	mu             sync.Mutex
	pendingURL     cstring.Buffer
	running        bool
	destroyPending bool

	destroyed atomic.Bool
}

func newControl(engine native.Engine, handle native.Handle) *control {
	c := &control{engine: engine, handle: handle}
	c.strong.Store(1)
	return c
}

// acquire adds a strong reference unless the count already reached zero.
func (c *control) acquire() bool {
	for {
		n := c.strong.Load()
		if n <= 0 {
			return false
		}
		if c.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops one strong reference. The caller that observes the count
// reaching zero after its own decrement tears the engine down.
func (c *control) release() {
	n := c.strong.Add(-1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic("webview: strong reference count underflow")
	}
	c.teardown()
}

func (c *control) alive() bool {
	return c.strong.Load() > 0
}

// teardown terminates the event loop and destroys the instance. Destruction
// is deferred to the end of Run when the loop is still running.
func (c *control) teardown() {
	Logger().Debug("last reference released, terminating engine",
		zap.Uintptr("handle", uintptr(c.handle)))

	c.engine.Terminate(c.handle)

	c.mu.Lock()
	if c.running {
		c.destroyPending = true
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.destroy()
}

func (c *control) destroy() {
	if !c.destroyed.CompareAndSwap(false, true) {
		return
	}
	c.engine.Destroy(c.handle)
	n := dropContexts(c)
	Logger().Debug("engine destroyed",
		zap.Uintptr("handle", uintptr(c.handle)),
		zap.Int("contexts_dropped", n))
}

// enterRun marks the loop as running and hands back the URL recorded before
// Run. It fails once the last reference is gone.
func (c *control) enterRun() (cstring.Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive() || c.destroyed.Load() {
		return nil, false
	}
	c.running = true
	url := c.pendingURL
	c.pendingURL = nil
	return url, true
}

// exitRun clears the running flag and performs a destruction that was
// requested while the loop was running.
func (c *control) exitRun() {
	c.mu.Lock()
	c.running = false
	pending := c.destroyPending
	c.destroyPending = false
	c.mu.Unlock()

	if pending {
		c.destroy()
	}
}

// deferNavigate records url when the loop is not running yet and reports
// whether it did.
func (c *control) deferNavigate(url cstring.Buffer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.pendingURL = url
	return true
}
