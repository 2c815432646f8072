package controller

import (
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	jvmruntime "github.com/wippyai/jvm-runtime"
	"github.com/wippyai/jvm-runtime/errors"
	"github.com/wippyai/jvm-runtime/options"
)

// State is the lifecycle state of the runtime handle. Transitions are
// monotonic: Uninitialized -> Starting -> Running -> Stopped. There is
// no restart after Stopped.
type State int32

const (
	StateUninitialized State = iota
	StateStarting
	StateRunning
	StateStopped
)

// String returns the lowercase state name
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Loader loads the runtime's native shared library ahead of instance
// creation. prefer is "client", "server" or "".
type Loader interface {
	Load(prefer string) error
}

// Config wires a Controller's collaborators
type Config struct {
	// Bridge is the reflection boundary to the embedded runtime. Required.
	Bridge jvmruntime.Bridge

	// Loader loads the native shared library. Optional; nil skips the
	// load step (useful with bridges that carry their own runtime).
	Loader Loader

	// ImportLock models the host's global import lock. Optional.
	ImportLock ImportLock

	// StartTimeout bounds the wait for the startup handshake. Zero
	// blocks forever, matching the embedding contract's own semantics.
	StartTimeout time.Duration

	// KeepSignalHandlers leaves in place any process signal handlers
	// the foreign runtime installed during startup.
	KeepSignalHandlers bool
}

// Controller owns the process-wide runtime lifecycle: the start/stop
// handshake, the classpath set and the global function table.
//
// Controller is safe for concurrent use. Start is not re-entrant and
// fails if an instance already exists; Start and Stop are mutually
// exclusive.
type Controller struct {
	cfg       Config
	mu        sync.Mutex
	state     atomic.Int32
	inst      jvmruntime.Instance
	classpath []string
	cpSeen    map[string]struct{}
	funcs     map[string]jvmruntime.Function
	onStarted []func()
}

// New creates a controller around the given collaborators
func New(cfg Config) *Controller {
	return &Controller{
		cfg:    cfg,
		cpSeen: make(map[string]struct{}),
	}
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Started reports whether the runtime is running
func (c *Controller) Started() bool {
	return c.State() == StateRunning
}

// Bridge returns the configured bridge
func (c *Controller) Bridge() jvmruntime.Bridge {
	return c.cfg.Bridge
}

// Start launches the runtime with the given options in a dedicated,
// OS-thread-locked goroutine and blocks until the runtime reports
// readiness. Option normalization happens first, so configuration
// errors surface before any native call. A keyword classpath is merged
// behind the classpath accumulated via AddClassPath.
func (c *Controller) Start(s options.Startup) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.State() {
	case StateStopped:
		return errors.Stopped()
	case StateStarting, StateRunning:
		return errors.AlreadyRunning()
	}
	if c.cfg.Bridge == nil {
		return errors.NotInitialized("bridge")
	}

	res, err := options.Parse(s, c.classpath)
	if err != nil {
		return err
	}

	if c.cfg.Loader != nil {
		if err := c.cfg.Loader.Load(res.Prefer); err != nil {
			return errors.StartupFailure(err, "load native runtime library")
		}
	}

	return c.startLocked(res)
}

// EnsureStarted starts the runtime only if it has never been started,
// using only the previously accumulated classpath. It is idempotent
// and swallows exactly the already-running race: a concurrent start
// elsewhere in the process won, which is fine. Every other failure
// propagates.
func (c *Controller) EnsureStarted() error {
	if c.Started() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.State() {
	case StateRunning:
		return nil
	case StateStopped:
		return errors.Stopped()
	}
	if c.cfg.Bridge == nil {
		return errors.NotInitialized("bridge")
	}

	res, err := options.Parse(options.Startup{}, c.classpath)
	if err != nil {
		return err
	}
	if c.cfg.Loader != nil {
		if err := c.cfg.Loader.Load(""); err != nil {
			return errors.StartupFailure(err, "load native runtime library")
		}
	}

	if err := c.startLocked(res); err != nil {
		if errors.IsAlreadyRunning(err) {
			return nil
		}
		return err
	}
	return nil
}

// startLocked performs instance creation and the startup handshake.
// Caller holds c.mu.
func (c *Controller) startLocked(res *options.Result) error {
	inst, err := c.cfg.Bridge.CreateInstance()
	if err != nil {
		if errors.IsAlreadyRunning(err) {
			return err
		}
		return errors.StartupFailure(err, "create runtime instance")
	}

	c.state.Store(int32(StateStarting))

	ready := make(chan struct{})
	go func() {
		// The runtime main loop must stay on one OS thread for the
		// lifetime of the instance.
		runtime.LockOSThread()
		inst.Run(res.Args, ready)
	}()

	if err := c.waitReady(ready); err != nil {
		c.state.Store(int32(StateStopped))
		_ = c.cfg.Bridge.DestroyInstance()
		return err
	}

	if perr := inst.PendingStartupError(); perr != nil {
		// The native instance exists but is unusable; the handle is
		// poisoned rather than reset because the embedding contract
		// does not allow a second instance in this process.
		c.state.Store(int32(StateStopped))
		_ = c.cfg.Bridge.DestroyInstance()
		return errors.StartupFailure(perr, "runtime initialization failed")
	}

	c.inst = inst
	c.classpath = res.Classpath
	c.cpSeen = make(map[string]struct{}, len(res.Classpath))
	for _, p := range res.Classpath {
		c.cpSeen[p] = struct{}{}
	}
	c.funcs = c.cfg.Bridge.Functions()
	c.state.Store(int32(StateRunning))

	if !c.cfg.KeepSignalHandlers {
		restoreSignals()
	}

	Logger().Info("runtime started",
		zap.Strings("args", res.Args),
		zap.Int("classpath_entries", len(res.Classpath)),
		zap.Int("global_functions", len(c.funcs)))

	for _, h := range c.onStarted {
		h()
	}
	return nil
}

// waitReady blocks on the one-shot ready signal. If the calling
// goroutine's host currently holds its global import lock, the lock is
// released for the duration of the wait and reacquired afterwards:
// startup may be triggered lazily from inside an import, and the
// runtime's main loop can itself trigger nested imports, which would
// otherwise deadlock against the host.
func (c *Controller) waitReady(ready <-chan struct{}) error {
	lock := c.cfg.ImportLock
	held := lock != nil && lock.Held()
	if held {
		lock.Release()
		defer lock.Acquire()
	}

	if c.cfg.StartTimeout <= 0 {
		<-ready
		return nil
	}

	timer := time.NewTimer(c.cfg.StartTimeout)
	defer timer.Stop()
	select {
	case <-ready:
		return nil
	case <-timer.C:
		return errors.StartupFailure(nil, "runtime did not signal readiness within "+c.cfg.StartTimeout.String())
	}
}

// Stop terminates the runtime. The handle always transitions to
// Stopped and the cached global function table is invalidated, even if
// the underlying teardown fails: a half-stopped runtime must never be
// reported as started. No restart is possible afterwards.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(int32(StateStopped))
	c.inst = nil
	c.funcs = nil

	if c.cfg.Bridge == nil {
		return nil
	}
	if err := c.cfg.Bridge.DestroyInstance(); err != nil {
		Logger().Warn("runtime teardown failed", zap.Error(err))
		return errors.Shutdown(err)
	}
	Logger().Info("runtime stopped")
	return nil
}

// AddClassPath appends a path to the runtime classpath. Before start
// the path accumulates for the eventual startup options; after start
// it is also forwarded to the live classloader. Forwarding failures
// propagate and are not rolled back.
func (c *Controller) AddClassPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Configuration("classpath entry %q: %v", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.cpSeen[abs]; dup {
		return nil
	}
	c.cpSeen[abs] = struct{}{}
	c.classpath = append(c.classpath, abs)

	if c.State() != StateRunning {
		return nil
	}
	if err := c.cfg.Bridge.AddClassPath(abs); err != nil {
		return errors.Classpath(abs, err)
	}
	return nil
}

// ClassPath returns a copy of the accumulated classpath set
func (c *Controller) ClassPath() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.classpath))
	copy(out, c.classpath)
	return out
}

// Function returns a global free function by name. The table is only
// populated while the runtime is running.
func (c *Controller) Function(name string) (jvmruntime.Function, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn, ok := c.funcs[name]
	return fn, ok
}

// Functions returns a copy of the global free-function table
func (c *Controller) Functions() map[string]jvmruntime.Function {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]jvmruntime.Function, len(c.funcs))
	for k, v := range c.funcs {
		out[k] = v
	}
	return out
}

// OnStarted registers a hook invoked after the runtime reaches Running.
// If the runtime is already running the hook fires immediately. The
// namespace registry uses this to publish the namespace root.
func (c *Controller) OnStarted(h func()) {
	c.mu.Lock()
	running := c.State() == StateRunning
	if !running {
		c.onStarted = append(c.onStarted, h)
	}
	c.mu.Unlock()

	if running {
		h()
	}
}
