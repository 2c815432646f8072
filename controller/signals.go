package controller

import (
	"os"
	"os/signal"
	"syscall"
)

// restoreSignals undoes signal handler changes made by the foreign
// runtime during startup so the host keeps its interrupt behavior.
func restoreSignals() {
	signal.Reset(os.Interrupt, syscall.SIGTERM)
}
