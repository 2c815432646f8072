package namespace

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"

	jvmruntime "github.com/wippyai/jvm-runtime"
	"github.com/wippyai/jvm-runtime/bridgetest"
	"github.com/wippyai/jvm-runtime/controller"
	"github.com/wippyai/jvm-runtime/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func catalog() bridgetest.Catalog {
	return bridgetest.Catalog{
		Packages: map[string][]string{
			"":            {"java", "com"},
			"java":        {"util", "lang"},
			"java.util":   {"concurrent"},
			"com":         {"example"},
			"com.example": nil,
		},
		Classes: map[string]map[string]string{
			"java.util":   {"ArrayList": "java.util.ArrayList", "_Secret": "java.util._Secret"},
			"java.lang":   {"String": "java.lang.String"},
			"com.example": {"Widget": "com.example.Widget"},
		},
		Descriptions: map[string]string{
			"java":     "Provides the core platform packages.",
			"java.rmi": "Remote method invocation.",
		},
		Functions: map[string]jvmruntime.Function{
			"currentTimeMillis": bridgetest.FuncOf("currentTimeMillis", func(ctx context.Context, args ...any) (any, error) {
				return int64(42), nil
			}),
		},
	}
}

func newFixture(t *testing.T, cfg Config) (*Registry, *controller.Controller, *bridgetest.Bridge) {
	t.Helper()
	b := bridgetest.New(catalog())
	ctrl := controller.New(controller.Config{Bridge: b})
	t.Cleanup(func() { _ = ctrl.Stop() })
	return NewRegistry(ctrl, cfg), ctrl, b
}

func TestNodeCreatedOncePerName(t *testing.T) {
	reg, _, b := newFixture(t, Config{})

	n1, err := reg.Node("java")
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	n2, err := reg.Node("java")
	if err != nil {
		t.Fatalf("node again: %v", err)
	}
	if n1 != n2 {
		t.Error("second lookup returned a different node")
	}
	if got := b.DiscoverCalls("java"); got != 1 {
		t.Errorf("discovery calls for java = %d, want 1", got)
	}
}

func TestNodeCreationBootsRuntime(t *testing.T) {
	reg, ctrl, b := newFixture(t, Config{})

	if ctrl.Started() {
		t.Fatal("runtime started before any namespace access")
	}
	if _, err := reg.Node("java"); err != nil {
		t.Fatalf("node: %v", err)
	}
	if !ctrl.Started() {
		t.Error("first node access should boot the runtime")
	}
	if got := b.CreateCalls(); got != 1 {
		t.Errorf("CreateInstance calls = %d, want 1", got)
	}
	// The root is published as soon as the runtime is up.
	if got := b.DiscoverCalls(""); got != 1 {
		t.Errorf("root discovery calls = %d, want 1", got)
	}
}

func TestMemberResolvesClassOnce(t *testing.T) {
	reg, _, b := newFixture(t, Config{})

	n, err := reg.Node("java.util")
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	m1, err := n.Member("ArrayList")
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	cls, ok := m1.(jvmruntime.Class)
	if !ok {
		t.Fatalf("member type = %T, want class", m1)
	}
	if cls.CanonicalName() != "java.util.ArrayList" {
		t.Errorf("canonical = %q", cls.CanonicalName())
	}

	m2, err := n.Member("ArrayList")
	if err != nil {
		t.Fatalf("member again: %v", err)
	}
	if m1 != m2 {
		t.Error("cached member differs from first resolution")
	}
	if got := b.ResolveCalls("java.util.ArrayList"); got != 1 {
		t.Errorf("class resolutions = %d, want 1", got)
	}
}

func TestMemberResolvesChildPackage(t *testing.T) {
	reg, _, b := newFixture(t, Config{})

	n, err := reg.Node("java")
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	m, err := n.Member("util")
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	child, ok := m.(*Node)
	if !ok || child.Name() != "java.util" {
		t.Fatalf("member = %v (%T), want node java.util", m, m)
	}

	direct, err := reg.Node("java.util")
	if err != nil {
		t.Fatal(err)
	}
	if child != direct {
		t.Error("child node and direct lookup diverged")
	}
	if got := b.DiscoverCalls("java.util"); got != 1 {
		t.Errorf("discovery calls = %d, want 1", got)
	}
}

func TestRootFunctionMember(t *testing.T) {
	reg, ctrl, _ := newFixture(t, Config{})
	if err := ctrl.EnsureStarted(); err != nil {
		t.Fatal(err)
	}

	root, err := reg.Node("")
	if err != nil {
		t.Fatal(err)
	}
	m, err := root.Member("currentTimeMillis")
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	fn, ok := m.(jvmruntime.Function)
	if !ok {
		t.Fatalf("member type = %T, want function", m)
	}
	v, err := fn.Call(context.Background())
	if err != nil || v != int64(42) {
		t.Errorf("call = %v, %v", v, err)
	}

	// Free functions exist only at the root; elsewhere the name goes
	// through the normal package/class probes.
	n, err := reg.Node("java")
	if err != nil {
		t.Fatal(err)
	}
	m, err = n.Member("currentTimeMillis")
	if err != nil {
		t.Fatal(err)
	}
	if _, isFn := m.(jvmruntime.Function); isFn {
		t.Error("free function resolved on a non-root node")
	}
}

func TestUnderscoreShadowing(t *testing.T) {
	reg, _, b := newFixture(t, Config{})

	n, err := reg.Node("java.util")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := n.Member("Secret"); !errors.IsNotFound(err) {
		t.Errorf("Member(Secret) = %v, want not_found while _Secret exists", err)
	}
	if got := b.ResolveCalls("java.util.Secret"); got != 0 {
		t.Errorf("shadowed name triggered %d class resolutions", got)
	}
	if got := b.DescriptionCalls("java.util.Secret"); got != 0 {
		t.Errorf("shadowed name triggered %d description probes", got)
	}
}

func TestExposeHiddenDisablesShadowing(t *testing.T) {
	reg, _, b := newFixture(t, Config{ExposeHidden: true})

	n, err := reg.Node("java.util")
	if err != nil {
		t.Fatal(err)
	}
	// With shadowing off the name falls through to the runtime probes
	// and comes back as an optimistic child node.
	m, err := n.Member("Secret")
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	if _, ok := m.(*Node); !ok {
		t.Errorf("member type = %T, want node", m)
	}
	if got := b.DescriptionCalls("java.util.Secret"); got != 1 {
		t.Errorf("description probes = %d, want 1", got)
	}
}

func TestDenyListNeverTouchesBridge(t *testing.T) {
	reg, ctrl, b := newFixture(t, Config{})
	if err := ctrl.EnsureStarted(); err != nil {
		t.Fatal(err)
	}
	root, err := reg.Node("")
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"__loader__", "_ipython_display_", "trait_names"} {
		if _, err := root.Member(name); !errors.IsNotFound(err) {
			t.Errorf("Member(%s) = %v, want not_found", name, err)
		}
		if got := b.DescriptionCalls(name); got != 0 {
			t.Errorf("%s: %d description probes, want 0", name, got)
		}
		if got := b.ResolveCalls(name); got != 0 {
			t.Errorf("%s: %d class resolutions, want 0", name, got)
		}
	}
}

func TestDescriptionProbeCreatesDescribedNode(t *testing.T) {
	reg, _, b := newFixture(t, Config{})

	n, err := reg.Node("java")
	if err != nil {
		t.Fatal(err)
	}
	// rmi is not in java's discovered children, but the runtime knows it.
	m, err := n.Member("rmi")
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	child, ok := m.(*Node)
	if !ok {
		t.Fatalf("member type = %T, want node", m)
	}
	if got := child.Description(); got != "Remote method invocation." {
		t.Errorf("description = %q", got)
	}
	if got := b.DescriptionCalls("java.rmi"); got != 1 {
		t.Errorf("description calls = %d, want 1 (probe result reused)", got)
	}
}

func TestUnknownMemberIsOptimisticNode(t *testing.T) {
	reg, _, b := newFixture(t, Config{})

	n, err := reg.Node("java")
	if err != nil {
		t.Fatal(err)
	}
	m, err := n.Member("sql")
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	child, ok := m.(*Node)
	if !ok || child.Name() != "java.sql" {
		t.Fatalf("member = %v (%T), want optimistic node java.sql", m, m)
	}
	if got := b.DescriptionCalls("java.sql"); got != 1 {
		t.Errorf("description probes = %d, want 1", got)
	}
	if got := b.ResolveCalls("java.sql"); got != 1 {
		t.Errorf("class probes = %d, want 1", got)
	}
}

func TestDescriptionLazyWithFallback(t *testing.T) {
	reg, _, b := newFixture(t, Config{})

	n, err := reg.Node("java")
	if err != nil {
		t.Fatal(err)
	}
	if got := n.Description(); got != "Provides the core platform packages." {
		t.Errorf("description = %q", got)
	}
	n.Description()
	if got := b.DescriptionCalls("java"); got != 1 {
		t.Errorf("description calls = %d, want 1", got)
	}

	bare, err := reg.Node("java.util")
	if err != nil {
		t.Fatal(err)
	}
	if got := bare.Description(); got != "<java package java.util>" {
		t.Errorf("fallback description = %q", got)
	}
}

func TestMembersListing(t *testing.T) {
	reg, ctrl, _ := newFixture(t, Config{})
	if err := ctrl.EnsureStarted(); err != nil {
		t.Fatal(err)
	}
	root, err := reg.Node("")
	if err != nil {
		t.Fatal(err)
	}

	got := root.Members()
	want := []string{"com", "currentTimeMillis", "java"}
	if len(got) != len(want) {
		t.Fatalf("Members() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Members() = %v, want %v", got, want)
		}
	}

	util, err := reg.Node("java.util")
	if err != nil {
		t.Fatal(err)
	}
	if !util.HasPackage("concurrent") || !util.HasClass("ArrayList") {
		t.Errorf("java.util children missing: %v", util.Members())
	}
}

func TestAccepts(t *testing.T) {
	reg, _, _ := newFixture(t, Config{})

	tests := []struct {
		name string
		want bool
	}{
		{"J", true},
		{"J.java.util", true},
		{"Jx", false},
		{"java", true},
		{"java.util.concurrent", true},
		{"javax.swing", true},
		{"os", false},
		{"com", false},
		{"javafx", false},
	}
	for _, tt := range tests {
		if got := reg.Accepts(tt.name); got != tt.want {
			t.Errorf("Accepts(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRegisterPrefix(t *testing.T) {
	reg, _, _ := newFixture(t, Config{})

	for _, bad := range []string{"", "a.b", "a/b", `a\b`} {
		if err := reg.RegisterPrefix(bad); err == nil {
			t.Errorf("RegisterPrefix(%q) accepted", bad)
		}
	}
	if err := reg.RegisterPrefix("com"); err != nil {
		t.Fatalf("RegisterPrefix(com): %v", err)
	}
	if !reg.Accepts("com.example.Widget") {
		t.Error("registered prefix not intercepted")
	}

	got := reg.Prefixes()
	want := []string{"com", "java", "javax"}
	if len(got) != len(want) {
		t.Fatalf("Prefixes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Prefixes() = %v, want %v", got, want)
		}
	}
}

func TestLoadClassEndToEnd(t *testing.T) {
	reg, _, b := newFixture(t, Config{})
	if err := reg.RegisterPrefix("com"); err != nil {
		t.Fatal(err)
	}

	v, err := reg.Load("com.example.Widget")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cls, ok := v.(jvmruntime.Class)
	if !ok || cls.CanonicalName() != "com.example.Widget" {
		t.Fatalf("load = %v (%T), want class com.example.Widget", v, v)
	}

	if got := b.DiscoverCalls("com"); got != 1 {
		t.Errorf("discovery calls for com = %d, want 1", got)
	}
	if got := b.DiscoverCalls("com.example"); got != 1 {
		t.Errorf("discovery calls for com.example = %d, want 1", got)
	}
	if got := b.ResolveCalls("com.example.Widget"); got != 1 {
		t.Errorf("class resolutions = %d, want 1", got)
	}

	// Re-imports under every alias hit the module table: no new
	// bridge traffic.
	for _, alias := range []string{"com.example.Widget", "J.com.example.Widget"} {
		again, err := reg.Load(alias)
		if err != nil {
			t.Fatalf("load %s: %v", alias, err)
		}
		if again != v {
			t.Errorf("load %s returned a different value", alias)
		}
	}
	if got := b.ResolveCalls("com.example.Widget"); got != 1 {
		t.Errorf("class resolutions after re-imports = %d, want 1", got)
	}
}

func TestLoadSuperRootForms(t *testing.T) {
	reg, _, b := newFixture(t, Config{})

	v, err := reg.Load("J")
	if err != nil {
		t.Fatalf("load J: %v", err)
	}
	root, ok := v.(*Node)
	if !ok || !root.IsRoot() {
		t.Fatalf("load J = %v (%T), want root node", v, v)
	}

	v, err = reg.Load("J.java.util")
	if err != nil {
		t.Fatalf("load J.java.util: %v", err)
	}
	n, ok := v.(*Node)
	if !ok || n.Name() != "java.util" {
		t.Fatalf("load J.java.util = %v (%T)", v, v)
	}

	// The bare form was recorded as an alias during node creation.
	bare, err := reg.Load("java.util")
	if err != nil {
		t.Fatal(err)
	}
	if bare != v {
		t.Error("bare and super-root forms diverged")
	}
	if got := b.DiscoverCalls("java.util"); got != 1 {
		t.Errorf("discovery calls = %d, want 1", got)
	}
}

func TestLoadRejectsOutsideNamespace(t *testing.T) {
	reg, _, b := newFixture(t, Config{})

	if _, err := reg.Load("os.path"); err == nil {
		t.Error("load of a non-intercepted name succeeded")
	}
	if got := b.CreateCalls(); got != 0 {
		t.Errorf("rejected load started the runtime (%d create calls)", got)
	}
}

func TestFinderAdapters(t *testing.T) {
	reg, _, _ := newFixture(t, Config{})

	f := reg.Finder()
	if f.FindModule("os") {
		t.Error("legacy finder claimed a non-intercepted name")
	}
	if !f.FindModule("java.util") {
		t.Fatal("legacy finder rejected an intercepted name")
	}
	v, err := f.LoadModule("java.util")
	if err != nil {
		t.Fatalf("legacy load: %v", err)
	}

	if _, ok := reg.FindSpec("os"); ok {
		t.Error("FindSpec claimed a non-intercepted name")
	}
	spec, ok := reg.FindSpec("java.util")
	if !ok {
		t.Fatal("FindSpec rejected an intercepted name")
	}
	if spec.Name != "java.util" {
		t.Errorf("spec name = %q", spec.Name)
	}
	if len(spec.SearchLocations) != 1 || spec.SearchLocations[0] != "java/util" {
		t.Errorf("search locations = %v", spec.SearchLocations)
	}
	w, err := spec.Create()
	if err != nil {
		t.Fatalf("spec create: %v", err)
	}
	if w != v {
		t.Error("the two hook shapes resolved different values")
	}
}

func TestConcurrentNodeCreationConverges(t *testing.T) {
	reg, _, _ := newFixture(t, Config{})

	const workers = 16
	nodes := make([]*Node, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			n, err := reg.Node("java.lang")
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			nodes[i] = n
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if nodes[i] != nodes[0] {
			t.Fatalf("worker %d got a different node", i)
		}
	}
}

func TestCustomSuperRoot(t *testing.T) {
	reg, _, _ := newFixture(t, Config{SuperRoot: "jvm"})

	if reg.SuperRoot() != "jvm" {
		t.Fatalf("super root = %q", reg.SuperRoot())
	}
	if !reg.Accepts("jvm.com.example") {
		t.Error("custom super root not intercepted")
	}
	if reg.Accepts("J.java") {
		t.Error("default super root should be inert when overridden")
	}
}
