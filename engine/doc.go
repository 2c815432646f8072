// Package engine provides a reference Bridge implementation backed by
// a wazero WebAssembly runtime.
//
// The foreign runtime is realized as a set of WASM modules: each
// classpath entry is a .wasm file loaded into one shared runtime.
// Dotted export names ("java.util.ArrayList") become classes under
// their package chain; exports without dots ("currentTimeMillis")
// populate the global free-function table. Package descriptions come
// from a configured catalog.
//
//	bridge := engine.New(engine.Config{})
//	ctrl := controller.New(controller.Config{Bridge: bridge})
//	_ = ctrl.Start(options.Startup{Classpath: []string{"core.wasm"}})
//
// Calls cross the boundary as raw integer stack values; rich argument
// marshaling is out of scope here and belongs to the embedder.
package engine
