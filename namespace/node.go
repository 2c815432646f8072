package namespace

import (
	"sort"
	"sync"

	"github.com/wippyai/jvm-runtime/errors"
)

// Node represents one foreign package, identified by its dotted name.
// Its immediate children are discovered through the bridge exactly once
// and memoized; every member resolution outcome is cached, so repeated
// access after the first touch costs no bridge calls.
type Node struct {
	reg  *Registry
	name string

	// Immutable after creation.
	packages map[string]struct{}
	classes  map[string]string // simple name -> canonical name

	mu          sync.Mutex
	desc        string
	descFetched bool
	members     map[string]any
}

// Name returns the node's dotted name; the root's name is ""
func (n *Node) Name() string {
	return n.name
}

// IsRoot reports whether this is the namespace root
func (n *Node) IsRoot() bool {
	return n.name == ""
}

// Member resolves an immediate member of this node: a global free
// function (root only), a class, a child package node, or - when the
// runtime knows nothing about the name yet - an optimistically created
// child node whose existence is confirmed on its own first access.
//
// Foreign protected/private classes (underscore-prefixed) are never
// exposed under their public name, and names on the configured deny
// list are rejected without touching the bridge.
func (n *Node) Member(name string) (any, error) {
	n.mu.Lock()
	if v, ok := n.members[name]; ok {
		n.mu.Unlock()
		return v, nil
	}
	n.mu.Unlock()

	v, err := n.resolveMember(name)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if exist, ok := n.members[name]; ok {
		return exist, nil
	}
	n.members[name] = v
	return v, nil
}

func (n *Node) resolveMember(name string) (any, error) {
	full := name
	if n.name != "" {
		full = n.name + "." + name
	}

	if n.IsRoot() {
		if fn, ok := n.reg.ctrl.Function(name); ok {
			return fn, nil
		}
	}

	if canonical, ok := n.classes[name]; ok {
		cls, err := n.reg.ctrl.Bridge().ResolveClass(canonical)
		if err != nil {
			return nil, err
		}
		return cls, nil
	}

	if _, ok := n.packages[name]; ok {
		return n.reg.Node(full)
	}

	if !n.reg.exposeHidden {
		if _, hidden := n.classes["_"+name]; hidden {
			return nil, errors.NotFound("member", full)
		}
		if _, hidden := n.classes["__"+name]; hidden {
			return nil, errors.NotFound("member", full)
		}
	}

	if _, denied := n.reg.deny[name]; denied {
		return nil, errors.NotFound("member", full)
	}

	// Unknown to this node. Ask the runtime whether it is a package,
	// then a class; otherwise create the child optimistically.
	if desc, err := n.reg.ctrl.Bridge().PackageDescription(full); err == nil {
		return n.reg.createNode(full, desc, true)
	}
	if cls, err := n.reg.ctrl.Bridge().ResolveClass(full); err == nil {
		return cls, nil
	}
	return n.reg.Node(full)
}

// Members lists the node's known immediate members: the union of child
// package names and child class names, plus the global free-function
// names for the root. It never forces enumeration of the foreign
// namespace beyond this node's memoized children.
func (n *Node) Members() []string {
	out := make([]string, 0, len(n.packages)+len(n.classes))
	for p := range n.packages {
		out = append(out, p)
	}
	for c := range n.classes {
		out = append(out, c)
	}
	if n.IsRoot() {
		for f := range n.reg.ctrl.Functions() {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// HasPackage reports whether name is a known immediate child package
func (n *Node) HasPackage(name string) bool {
	_, ok := n.packages[name]
	return ok
}

// HasClass reports whether name is a known immediate child class
func (n *Node) HasClass(name string) bool {
	_, ok := n.classes[name]
	return ok
}

// Description returns the foreign package description, fetched through
// the bridge at most once. Nodes without a description fall back to the
// generic textual representation.
func (n *Node) Description() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.descFetched {
		n.descFetched = true
		if d, err := n.reg.ctrl.Bridge().PackageDescription(n.name); err == nil {
			n.desc = d
		}
	}
	if n.desc == "" {
		return n.stringLocked()
	}
	return n.desc
}

// String returns a generic textual representation of the node
func (n *Node) String() string {
	return n.stringLocked()
}

func (n *Node) stringLocked() string {
	if n.name == "" {
		return "<java root package>"
	}
	return "<java package " + n.name + ">"
}
