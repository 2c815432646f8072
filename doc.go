// Package jvmruntime embeds a reflection-capable managed runtime (a JVM)
// in a Go process and exposes its hierarchical namespace to the host.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	jvmruntime/          Root package with the Bridge, Instance, Class and Function contracts
//	├── controller/      Singleton runtime lifecycle, classpath set, startup handshake
//	├── options/         Startup option normalization and TOML startup files
//	├── namespace/       Lazily populated namespace nodes and import interception
//	├── engine/          Reference Bridge backed by wazero modules
//	├── loader/          Platform discovery and loading of the native JVM library
//	├── errors/          Structured error types for debugging
//	└── bridgetest/      Scripted in-memory Bridge for tests and embedders
//
// # Quick Start
//
// Wire a bridge into a controller, attach a namespace registry, and let
// the first import boot the runtime lazily:
//
//	ctrl := controller.New(controller.Config{Bridge: bridge})
//	reg := namespace.NewRegistry(ctrl, namespace.Config{})
//
//	node, err := reg.Resolve("java.util")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	member, err := node.(*namespace.Node).Member("HashMap")
//
// # Lifecycle
//
// Exactly one runtime instance exists per process. The handle moves
// monotonically through Uninitialized, Starting, Running and Stopped;
// there is no restart after Stopped. The runtime main loop runs on one
// dedicated, OS-thread-locked goroutine; the launching goroutine blocks
// on a one-shot ready signal (optionally bounded by
// controller.Config.StartTimeout).
//
// # Thread Safety
//
// Controller, Registry and Node are safe for concurrent use. A Node's
// children are discovered through the bridge at most once; concurrent
// first-touch resolution of the same dotted name converges on a single
// Node.
//
// # Scope
//
// Marshaling of object references, fields, overloaded methods, arrays
// and collections across the runtime boundary belongs to the Bridge
// implementation and is out of scope for this library's core.
package jvmruntime
