package engine

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	jvmruntime "github.com/wippyai/jvm-runtime"
	"github.com/wippyai/jvm-runtime/errors"
	"github.com/wippyai/jvm-runtime/options"
)

// Config configures a WazeroBridge.
type Config struct {
	// Descriptions maps dotted package names to the descriptions served
	// by PackageDescription.
	Descriptions map[string]string

	// MemoryLimitPages caps instance memory in 64KiB pages. Zero keeps
	// the engine default.
	MemoryLimitPages uint32
}

// WazeroBridge is a jvmruntime.Bridge backed by a wazero runtime. The
// foreign namespace is realized as WebAssembly modules: classpath
// entries are .wasm files, dotted export names become classes under
// their package chain, and exports without dots populate the global
// function table.
type WazeroBridge struct {
	cfg Config

	mu      sync.Mutex
	created bool
	inst    *instance
	queued  []string
}

// New creates a bridge around the given configuration
func New(cfg Config) *WazeroBridge {
	return &WazeroBridge{cfg: cfg}
}

// CreateInstance allocates the single runtime instance for this
// process. Like the native embedding contract, a second instance is
// refused even after the first is destroyed.
func (b *WazeroBridge) CreateInstance() (jvmruntime.Instance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.created {
		return nil, errors.AlreadyRunning()
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if b.cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(b.cfg.MemoryLimitPages)
	}

	b.created = true
	b.inst = &instance{
		rt:       wazero.NewRuntimeWithConfig(context.Background(), runtimeCfg),
		queued:   b.queued,
		done:     make(chan struct{}),
		packages: make(map[string]map[string]struct{}),
		classes:  make(map[string]map[string]string),
		classIdx: make(map[string]*Class),
		funcs:    make(map[string]jvmruntime.Function),
	}
	b.queued = nil
	return b.inst, nil
}

// DestroyInstance unblocks the main loop and closes the runtime
func (b *WazeroBridge) DestroyInstance() error {
	b.mu.Lock()
	inst := b.inst
	b.inst = nil
	b.mu.Unlock()

	if inst == nil {
		return nil
	}
	return inst.destroy()
}

// AddClassPath loads the module immediately when the instance is live,
// and queues it for the eventual startup load otherwise.
func (b *WazeroBridge) AddClassPath(path string) error {
	b.mu.Lock()
	inst := b.inst
	if inst == nil {
		b.queued = append(b.queued, path)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()
	return inst.addClassPath(path)
}

// DiscoverChildren lists the immediate child packages and classes of
// the dotted name ("" is the namespace root).
func (b *WazeroBridge) DiscoverChildren(dotted string) (jvmruntime.Children, error) {
	inst, err := b.live()
	if err != nil {
		return jvmruntime.Children{}, err
	}
	return inst.discoverChildren(dotted), nil
}

// ResolveClass returns the class handle for a canonical name
func (b *WazeroBridge) ResolveClass(canonical string) (jvmruntime.Class, error) {
	inst, err := b.live()
	if err != nil {
		return nil, err
	}
	return inst.resolveClass(canonical)
}

// PackageDescription serves the configured description catalog
func (b *WazeroBridge) PackageDescription(dotted string) (string, error) {
	if d, ok := b.cfg.Descriptions[dotted]; ok {
		return d, nil
	}
	return "", errors.NotFound("package description", dotted)
}

// Functions returns a copy of the global free-function table
func (b *WazeroBridge) Functions() map[string]jvmruntime.Function {
	inst, err := b.live()
	if err != nil {
		return nil
	}
	return inst.functions()
}

func (b *WazeroBridge) live() (*instance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inst == nil || !b.inst.running() {
		return nil, errors.NotInitialized("runtime instance")
	}
	return b.inst, nil
}

type instance struct {
	rt wazero.Runtime

	mu      sync.Mutex
	started bool
	pending error
	queued  []string

	packages map[string]map[string]struct{}
	classes  map[string]map[string]string // package -> simple name -> canonical
	classIdx map[string]*Class
	funcs    map[string]jvmruntime.Function

	done        chan struct{}
	destroyOnce sync.Once
	destroyErr  error
}

// Run loads every classpath module, signals readiness and parks until
// the instance is destroyed. Load failures are recorded as the pending
// startup error rather than returned; the embedder observes them
// through PendingStartupError after the handshake.
func (i *instance) Run(args []string, ready chan<- struct{}) {
	ctx := context.Background()

	var entries []string
	for _, tok := range args {
		if strings.HasPrefix(tok, options.ClasspathProperty) {
			entries = append(entries, splitPathList(tok[len(options.ClasspathProperty):])...)
		}
	}
	i.mu.Lock()
	entries = append(entries, i.queued...)
	i.queued = nil
	i.mu.Unlock()

	for _, path := range entries {
		if err := i.load(ctx, path); err != nil {
			i.mu.Lock()
			i.pending = err
			i.mu.Unlock()
			break
		}
	}

	i.mu.Lock()
	i.started = i.pending == nil
	i.mu.Unlock()

	close(ready)
	<-i.done
}

// PendingStartupError reports a failure latched during Run
func (i *instance) PendingStartupError() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.pending
}

func (i *instance) running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.started
}

func (i *instance) destroy() error {
	i.destroyOnce.Do(func() {
		close(i.done)
		i.destroyErr = i.rt.Close(context.Background())
	})
	return i.destroyErr
}

func (i *instance) addClassPath(path string) error {
	i.mu.Lock()
	if !i.started {
		i.queued = append(i.queued, path)
		i.mu.Unlock()
		return nil
	}
	i.mu.Unlock()
	return i.load(context.Background(), path)
}

func (i *instance) load(ctx context.Context, path string) error {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return errors.Classpath(path, err)
	}
	compiled, err := i.rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return errors.Classpath(path, err)
	}
	mod, err := i.rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(path))
	if err != nil {
		return errors.Classpath(path, err)
	}

	i.index(mod)
	Logger().Info("module loaded",
		zap.String("path", path),
		zap.Int("exports", len(mod.ExportedFunctionDefinitions())))
	return nil
}

// index records a module's exports in the namespace tables.
func (i *instance) index(mod api.Module) {
	defs := mod.ExportedFunctionDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	i.mu.Lock()
	defer i.mu.Unlock()

	for _, name := range names {
		fn := mod.ExportedFunction(name)
		dot := strings.LastIndex(name, ".")
		if dot < 0 {
			i.funcs[name] = &export{name: name, fn: fn}
			continue
		}

		pkg, simple := name[:dot], name[dot+1:]
		if i.classes[pkg] == nil {
			i.classes[pkg] = make(map[string]string)
		}
		i.classes[pkg][simple] = name
		i.classIdx[name] = &Class{canonical: name, fn: fn}
		i.recordPackageChainLocked(pkg)
	}
}

func (i *instance) recordPackageChainLocked(pkg string) {
	for pkg != "" {
		parent, child := "", pkg
		if dot := strings.LastIndex(pkg, "."); dot >= 0 {
			parent, child = pkg[:dot], pkg[dot+1:]
		}
		if i.packages[parent] == nil {
			i.packages[parent] = make(map[string]struct{})
		}
		i.packages[parent][child] = struct{}{}
		pkg = parent
	}
}

func (i *instance) discoverChildren(dotted string) jvmruntime.Children {
	i.mu.Lock()
	defer i.mu.Unlock()

	pkgs := make([]string, 0, len(i.packages[dotted]))
	for p := range i.packages[dotted] {
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)

	classes := make(map[string]string, len(i.classes[dotted]))
	for k, v := range i.classes[dotted] {
		classes[k] = v
	}
	return jvmruntime.Children{Packages: pkgs, Classes: classes}
}

func (i *instance) resolveClass(canonical string) (jvmruntime.Class, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if c, ok := i.classIdx[canonical]; ok {
		return c, nil
	}
	return nil, errors.NotFound("class", canonical)
}

func (i *instance) functions() map[string]jvmruntime.Function {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make(map[string]jvmruntime.Function, len(i.funcs))
	for k, v := range i.funcs {
		out[k] = v
	}
	return out
}

func splitPathList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, string(os.PathListSeparator)) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
