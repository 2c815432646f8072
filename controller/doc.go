// Package controller owns the singleton lifecycle of the embedded runtime.
//
// # Lifecycle
//
// The runtime handle moves monotonically through four states:
//
//	Uninitialized -> Starting -> Running -> Stopped
//
// Start creates the process-wide instance through the bridge (failing
// if one already exists), launches the runtime main loop on a
// dedicated, OS-thread-locked goroutine, and blocks on a one-shot
// ready signal until the loop reports readiness. A startup failure
// raised on the background goroutine is re-raised synchronously to the
// caller. There is no restart after Stopped.
//
// # Deadlock Avoidance
//
// Startup may happen lazily from inside a host import while the host's
// global import lock is held. The main loop may itself trigger nested
// imports, so the controller releases the lock around the handshake
// wait (see ImportLock).
//
// # Classpath
//
// AddClassPath accumulates absolute, deduplicated entries before start
// and forwards them to the live classloader after start. Forwarding
// failures propagate without rollback.
//
// # Example
//
//	ctrl := controller.New(controller.Config{Bridge: bridge})
//	_ = ctrl.AddClassPath("lib/app.jar")
//	if err := ctrl.Start(options.Startup{MaxHeapKiB: 65536}); err != nil {
//	    log.Fatal(err)
//	}
//	defer ctrl.Stop()
package controller
