package bridgetest

import (
	"context"
	"strings"
	"sync"
	"time"

	jvmruntime "github.com/wippyai/jvm-runtime"
	"github.com/wippyai/jvm-runtime/errors"
)

// Catalog scripts the foreign namespace a Bridge serves.
type Catalog struct {
	// Packages maps a dotted name to its immediate child package names.
	Packages map[string][]string
	// Classes maps a dotted name to its immediate child classes
	// (simple name -> canonical name).
	Classes map[string]map[string]string
	// Descriptions maps a dotted name to its package description.
	Descriptions map[string]string
	// Functions is the global free-function table.
	Functions map[string]jvmruntime.Function
}

// Bridge is a scripted, in-memory jvmruntime.Bridge. It records every
// call so tests can assert exact native-call counts, and supports
// injecting failures at each step.
type Bridge struct {
	mu  sync.Mutex
	cat Catalog

	created   bool
	destroyed bool
	done      chan struct{}

	// CreateErr fails CreateInstance when set.
	CreateErr error
	// StartErr becomes the pending startup error of the instance.
	StartErr error
	// DestroyErr fails DestroyInstance when set. Run still unblocks.
	DestroyErr error
	// AddClassPathErr fails AddClassPath when set.
	AddClassPathErr error
	// ReadyDelay postpones the ready signal, for handshake timeout tests.
	ReadyDelay time.Duration

	createCalls   int
	destroyCalls  int
	discoverCalls map[string]int
	resolveCalls  map[string]int
	descCalls     map[string]int
	runArgs       []string
	addedPaths    []string
}

// New creates a scripted bridge serving the given catalog
func New(cat Catalog) *Bridge {
	return &Bridge{
		cat:           cat,
		discoverCalls: make(map[string]int),
		resolveCalls:  make(map[string]int),
		descCalls:     make(map[string]int),
	}
}

type instance struct {
	b *Bridge
}

func (i *instance) Run(args []string, ready chan<- struct{}) {
	i.b.mu.Lock()
	i.b.runArgs = append([]string(nil), args...)
	done := i.b.done
	delay := i.b.ReadyDelay
	i.b.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	close(ready)
	<-done
}

func (i *instance) PendingStartupError() error {
	i.b.mu.Lock()
	defer i.b.mu.Unlock()
	return i.b.StartErr
}

// CreateInstance allocates the single scripted instance. Like the real
// embedding contract, it fails forever once an instance has existed.
func (b *Bridge) CreateInstance() (jvmruntime.Instance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.createCalls++
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}
	if b.created {
		return nil, errors.AlreadyRunning()
	}
	b.created = true
	b.done = make(chan struct{})
	return &instance{b: b}, nil
}

func (b *Bridge) DestroyInstance() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.destroyCalls++
	if b.created && !b.destroyed {
		close(b.done)
	}
	b.destroyed = true
	return b.DestroyErr
}

func (b *Bridge) AddClassPath(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.AddClassPathErr != nil {
		return b.AddClassPathErr
	}
	b.addedPaths = append(b.addedPaths, path)
	return nil
}

func (b *Bridge) DiscoverChildren(dotted string) (jvmruntime.Children, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.discoverCalls[dotted]++

	classes := make(map[string]string, len(b.cat.Classes[dotted]))
	for k, v := range b.cat.Classes[dotted] {
		classes[k] = v
	}
	return jvmruntime.Children{
		Packages: append([]string(nil), b.cat.Packages[dotted]...),
		Classes:  classes,
	}, nil
}

func (b *Bridge) ResolveClass(canonical string) (jvmruntime.Class, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resolveCalls[canonical]++

	parent := ""
	if i := strings.LastIndex(canonical, "."); i >= 0 {
		parent = canonical[:i]
	}
	for _, canon := range b.cat.Classes[parent] {
		if canon == canonical {
			return Class(canonical), nil
		}
	}
	return nil, errors.NotFound("class", canonical)
}

func (b *Bridge) PackageDescription(dotted string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.descCalls[dotted]++
	if d, ok := b.cat.Descriptions[dotted]; ok {
		return d, nil
	}
	return "", errors.NotFound("package description", dotted)
}

func (b *Bridge) Functions() map[string]jvmruntime.Function {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]jvmruntime.Function, len(b.cat.Functions))
	for k, v := range b.cat.Functions {
		out[k] = v
	}
	return out
}

// Recorded state accessors

// CreateCalls returns how many times CreateInstance was called
func (b *Bridge) CreateCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createCalls
}

// DestroyCalls returns how many times DestroyInstance was called
func (b *Bridge) DestroyCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroyCalls
}

// DiscoverCalls returns how many times DiscoverChildren was called for dotted
func (b *Bridge) DiscoverCalls(dotted string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.discoverCalls[dotted]
}

// ResolveCalls returns how many times ResolveClass was called for canonical
func (b *Bridge) ResolveCalls(canonical string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolveCalls[canonical]
}

// DescriptionCalls returns how many times PackageDescription was called for dotted
func (b *Bridge) DescriptionCalls(dotted string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.descCalls[dotted]
}

// RunArgs returns the argument list the main loop received
func (b *Bridge) RunArgs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.runArgs...)
}

// AddedPaths returns classpath entries forwarded to the live classloader
func (b *Bridge) AddedPaths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.addedPaths...)
}

// Destroyed reports whether DestroyInstance has been called
func (b *Bridge) Destroyed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroyed
}

// Class is a canonical-name-only class handle
type Class string

// CanonicalName implements jvmruntime.Class
func (c Class) CanonicalName() string { return string(c) }

// Func is a scripted global function
type Func struct {
	name string
	fn   func(ctx context.Context, args ...any) (any, error)
}

// FuncOf wraps fn as a jvmruntime.Function
func FuncOf(name string, fn func(ctx context.Context, args ...any) (any, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Name implements jvmruntime.Function
func (f *Func) Name() string { return f.name }

// Call implements jvmruntime.Function
func (f *Func) Call(ctx context.Context, args ...any) (any, error) {
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(ctx, args...)
}
