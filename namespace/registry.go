package namespace

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/jvm-runtime/controller"
	"github.com/wippyai/jvm-runtime/errors"
)

// DefaultSuperRoot is the reserved top-level name exposing the entire
// foreign namespace. With the default, `J.java.util` names the foreign
// `java.util` package.
const DefaultSuperRoot = "J"

// DefaultPrefixes are the top-level names importable directly, without
// the super-root alias.
var DefaultPrefixes = []string{"java", "javax"}

// DefaultDenyList holds member names that interactive host tooling
// probes speculatively on arbitrary objects. Resolving them against the
// runtime would trigger expensive failed reflection lookups, so they
// are rejected without a bridge call. The set is configuration, not
// contract; override it via Config.DenyList.
var DefaultDenyList = []string{
	"__loader__", "__path__", "__file__", "__cache__", "__spec__", "__methods__",
	"_ipython_display_", "_repr_jpeg_", "_repr_html_", "_repr_svg_", "_repr_png_",
	"_repr_javascript_", "_repr_markdown_", "_repr_latex_", "_repr_json_", "_repr_pdf_",
	"_getAttributeNames", "trait_names",
}

// Config adjusts registry behavior. The zero value selects the defaults.
type Config struct {
	// SuperRoot overrides DefaultSuperRoot.
	SuperRoot string

	// Prefixes overrides DefaultPrefixes.
	Prefixes []string

	// DenyList overrides DefaultDenyList. An empty non-nil slice
	// disables the deny list entirely.
	DenyList []string

	// ExposeHidden disables the underscore-prefix shadowing rule, so a
	// foreign protected class `_Foo` no longer hides the name `Foo`.
	ExposeHidden bool
}

// Registry is the global mapping from dotted names to namespace nodes
// and resolved classes. It intercepts host import requests for the
// super-root alias and the registered top-level prefixes, and creates
// each Node at most once per dotted name.
type Registry struct {
	ctrl      *controller.Controller
	superRoot string

	mu       sync.RWMutex
	nodes    map[string]*Node
	modules  map[string]any
	prefixes map[string]struct{}

	deny         map[string]struct{}
	exposeHidden bool
}

// NewRegistry creates a registry bound to the given controller. The
// registry publishes the namespace root under the super-root alias as
// soon as the runtime reaches Running.
func NewRegistry(ctrl *controller.Controller, cfg Config) *Registry {
	superRoot := cfg.SuperRoot
	if superRoot == "" {
		superRoot = DefaultSuperRoot
	}
	prefixes := cfg.Prefixes
	if prefixes == nil {
		prefixes = DefaultPrefixes
	}
	denyList := cfg.DenyList
	if denyList == nil {
		denyList = DefaultDenyList
	}

	r := &Registry{
		ctrl:         ctrl,
		superRoot:    superRoot,
		nodes:        make(map[string]*Node),
		modules:      make(map[string]any),
		prefixes:     make(map[string]struct{}, len(prefixes)),
		deny:         make(map[string]struct{}, len(denyList)),
		exposeHidden: cfg.ExposeHidden,
	}
	for _, p := range prefixes {
		r.prefixes[p] = struct{}{}
	}
	for _, d := range denyList {
		r.deny[d] = struct{}{}
	}

	ctrl.OnStarted(func() {
		if _, err := r.Node(""); err != nil {
			Logger().Warn("publish namespace root", zap.Error(err))
		}
	})

	return r
}

// SuperRoot returns the reserved super-root alias name
func (r *Registry) SuperRoot() string {
	return r.superRoot
}

// RegisterPrefix adds a top-level name that loads foreign packages and
// classes directly. This is a process-global setting affecting every
// import, so register sparingly. Names containing path or package
// separators are rejected.
func (r *Registry) RegisterPrefix(name string) error {
	if name == "" || strings.ContainsAny(name, "./\\") {
		return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Name(name).
			Detail(`prefix cannot be empty or contain "." "/" "\"`).
			Build()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes[name] = struct{}{}
	return nil
}

// Prefixes returns the registered top-level prefixes, sorted
func (r *Registry) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.prefixes))
	for p := range r.prefixes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Node returns the node for the given dotted name ("" is the root),
// creating it on first touch. Creation transparently boots the runtime
// via EnsureStarted and queries the bridge exactly once for the node's
// immediate children; concurrent first touches of the same dotted name
// converge on a single node.
func (r *Registry) Node(dotted string) (*Node, error) {
	r.mu.RLock()
	n, ok := r.nodes[dotted]
	r.mu.RUnlock()
	if ok {
		return n, nil
	}
	return r.createNode(dotted, "", false)
}

func (r *Registry) createNode(dotted, desc string, descKnown bool) (*Node, error) {
	if err := r.ctrl.EnsureStarted(); err != nil {
		return nil, err
	}

	children, err := r.ctrl.Bridge().DiscoverChildren(dotted)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err, "discover children of "+nameOrRoot(dotted))
	}

	n := &Node{
		reg:         r,
		name:        dotted,
		packages:    make(map[string]struct{}, len(children.Packages)),
		classes:     children.Classes,
		desc:        desc,
		descFetched: descKnown,
		members:     make(map[string]any),
	}
	if n.classes == nil {
		n.classes = map[string]string{}
	}
	for _, p := range children.Packages {
		n.packages[p] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if exist, ok := r.nodes[dotted]; ok {
		// Lost the creation race; the winner's node is canonical.
		return exist, nil
	}
	r.nodes[dotted] = n
	r.recordAliasesLocked(dotted, n)
	return n, nil
}

// recordAliasesLocked records v in the module table under the
// super-root alias form and, for prefix-eligible names, the bare form.
func (r *Registry) recordAliasesLocked(dotted string, v any) {
	if dotted == "" {
		r.modules[r.superRoot] = v
		return
	}
	r.modules[r.superRoot+"."+dotted] = v
	if r.underPrefixLocked(dotted) {
		r.modules[dotted] = v
	}
}

func (r *Registry) underPrefixLocked(name string) bool {
	for p := range r.prefixes {
		if name == p || strings.HasPrefix(name, p+".") {
			return true
		}
	}
	return false
}

func (r *Registry) isSuper(name string) bool {
	return name == r.superRoot || strings.HasPrefix(name, r.superRoot+".")
}

// Resolve resolves a dotted name relative to the namespace root and
// returns a *Node, a jvmruntime.Class or a jvmruntime.Function.
func (r *Registry) Resolve(dotted string) (any, error) {
	if dotted == "" {
		return r.Node("")
	}

	segs := strings.Split(dotted, ".")
	var cur any
	cur, err := r.Node(segs[0])
	if err != nil {
		return nil, err
	}
	for _, seg := range segs[1:] {
		node, ok := cur.(*Node)
		if !ok {
			return nil, errors.NotFound("member", dotted)
		}
		cur, err = node.Member(seg)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// Accepts reports whether the registry intercepts the given import
// name: it must equal or be nested under the super-root alias or one
// of the registered top-level prefixes.
func (r *Registry) Accepts(name string) bool {
	if r.isSuper(name) {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.underPrefixLocked(name)
}

// Load resolves an intercepted import name. The super-root alias
// prefix is stripped before resolution and the result is recorded
// under every applicable dotted-name alias, so a re-import resolves
// from the module table without re-invoking the interceptor.
func (r *Registry) Load(name string) (any, error) {
	r.mu.RLock()
	v, ok := r.modules[name]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}

	stripped := name
	switch {
	case name == r.superRoot:
		stripped = ""
	case strings.HasPrefix(name, r.superRoot+"."):
		stripped = name[len(r.superRoot)+1:]
	default:
		if !r.Accepts(name) {
			return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
				Name(name).
				Detail("name is outside the intercepted namespace").
				Build()
		}
	}

	v, err := r.Resolve(stripped)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.modules[name] = v
	r.recordAliasesLocked(stripped, v)
	r.mu.Unlock()
	return v, nil
}

func nameOrRoot(dotted string) string {
	if dotted == "" {
		return "<root>"
	}
	return dotted
}
