// Package bridgetest provides a scripted, in-memory Bridge for testing
// code that embeds the runtime without a native JVM.
//
// A Catalog describes the namespace the bridge serves; the bridge
// records every call so tests can assert exact native-call counts:
//
//	b := bridgetest.New(bridgetest.Catalog{
//	    Packages: map[string][]string{"": {"java"}, "java": {"util"}},
//	    Classes:  map[string]map[string]string{"java.util": {"HashMap": "java.util.HashMap"}},
//	})
//	ctrl := controller.New(controller.Config{Bridge: b})
//
// Failure injection fields (CreateErr, StartErr, DestroyErr,
// AddClassPathErr, ReadyDelay) cover the startup handshake's error and
// timeout paths.
package bridgetest
