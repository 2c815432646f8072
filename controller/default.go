package controller

import (
	"sync"

	"github.com/wippyai/jvm-runtime/errors"
	"github.com/wippyai/jvm-runtime/options"
)

// The process hosts exactly one runtime, so most embedders work through
// a single shared controller configured once at init time.
var (
	defaultMu   sync.RWMutex
	defaultCtrl *Controller
)

// SetDefault installs the process-wide controller
func SetDefault(c *Controller) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCtrl = c
}

// Default returns the process-wide controller, or nil if unset
func Default() *Controller {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCtrl
}

func requireDefault() (*Controller, error) {
	if c := Default(); c != nil {
		return c, nil
	}
	return nil, errors.NotInitialized("default controller")
}

// Start starts the default controller's runtime
func Start(s options.Startup) error {
	c, err := requireDefault()
	if err != nil {
		return err
	}
	return c.Start(s)
}

// Started reports whether the default controller's runtime is running
func Started() bool {
	c := Default()
	return c != nil && c.Started()
}

// Stop stops the default controller's runtime
func Stop() error {
	c, err := requireDefault()
	if err != nil {
		return err
	}
	return c.Stop()
}

// EnsureStarted lazily starts the default controller's runtime
func EnsureStarted() error {
	c, err := requireDefault()
	if err != nil {
		return err
	}
	return c.EnsureStarted()
}

// AddClassPath appends a classpath entry on the default controller
func AddClassPath(path string) error {
	c, err := requireDefault()
	if err != nil {
		return err
	}
	return c.AddClassPath(path)
}
