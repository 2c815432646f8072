// Package namespace presents the foreign runtime's hierarchical
// namespace (packages -> classes -> members) as lazily populated,
// cached nodes, and integrates that resolution into a host import
// protocol.
//
// # Nodes
//
// A Node is created at most once per dotted name. Creation triggers a
// lazy runtime start (EnsureStarted) and exactly one bridge discovery
// call for the node's immediate children. Member resolution order:
//
//  1. global free function (root node only)
//  2. known immediate child class
//  3. known immediate child package
//  4. not-found when an underscore-prefixed variant is a known class
//  5. not-found for configured host-introspection probe names, with no
//     bridge call
//  6. package description probe, then class probe, then an optimistic
//     child node confirmed lazily on its own first access
//
// Every outcome is cached, so repeated access is O(1) with zero bridge
// calls.
//
// # Import Interception
//
// The registry accepts dotted names equal to or nested under the
// super-root alias (default "J") or a registered top-level prefix
// (default "java", "javax"):
//
//	reg := namespace.NewRegistry(ctrl, namespace.Config{})
//	_ = reg.RegisterPrefix("com")
//	v, err := reg.Load("com.example.Widget")
//
// Results are recorded under every applicable dotted-name alias, so
// re-imports bypass the interceptor. Both historical hook shapes
// (Finder and FindSpec/ModuleSpec) wrap the same resolve operation.
package namespace
