package controller

// ImportLock models the host's global import lock.
//
// Startup may be triggered lazily from inside an import, in which case
// the calling goroutine holds this lock. The runtime's main loop can
// itself trigger nested imports during initialization, so the
// controller releases the lock before blocking on the startup
// handshake and reacquires it immediately afterwards. Hosts without an
// import lock leave Config.ImportLock nil.
type ImportLock interface {
	// Held reports whether the calling goroutine holds the lock.
	Held() bool
	Release()
	Acquire()
}
