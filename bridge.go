package jvmruntime

import "context"

// Class is an opaque handle to a resolved foreign class. Field access,
// construction and method invocation live behind the bridge and are not
// part of this contract.
type Class interface {
	CanonicalName() string
}

// Function is a callable global published by the foreign runtime.
type Function interface {
	Name() string
	Call(ctx context.Context, args ...any) (any, error)
}

// Children holds the immediate members of one foreign package.
type Children struct {
	// Packages lists the simple names of immediate child packages.
	Packages []string
	// Classes maps simple class names to canonical class names.
	Classes map[string]string
}

// Instance is a created, not yet running, runtime instance.
type Instance interface {
	// Run executes the runtime main loop on the calling goroutine with
	// the final startup argument list. It closes ready exactly once,
	// after initialization has finished (successfully or not), and
	// returns only when the instance is destroyed.
	Run(args []string, ready chan<- struct{})

	// PendingStartupError reports an initialization failure raised on
	// the main-loop goroutine, or nil if startup succeeded.
	PendingStartupError() error
}

// Bridge is the reflection boundary to the embedded foreign runtime.
//
// Implementations must be safe for concurrent use. Exactly one runtime
// instance may exist per process: CreateInstance fails if one already
// exists, and no new instance can be created after DestroyInstance.
type Bridge interface {
	// CreateInstance allocates the process-wide runtime instance.
	CreateInstance() (Instance, error)

	// DestroyInstance tears the runtime down. Best effort; the caller
	// treats the runtime as stopped even if this fails.
	DestroyInstance() error

	// AddClassPath appends a path to the live runtime's classloader.
	AddClassPath(path string) error

	// DiscoverChildren returns the immediate child packages and classes
	// under the given dotted name ("" is the namespace root).
	DiscoverChildren(dotted string) (Children, error)

	// ResolveClass resolves a class by canonical name.
	ResolveClass(canonical string) (Class, error)

	// PackageDescription fetches the description of a package, or a
	// not-found error if the runtime has none.
	PackageDescription(dotted string) (string, error)

	// Functions returns the global free-function table.
	Functions() map[string]Function
}
