package loader

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/jvm-runtime/errors"
)

// Library is a located native runtime library.
type Library struct {
	// Path is the absolute path to the shared library.
	Path string
	// Kind is "client" or "server".
	Kind string
}

// JavaHome returns the runtime installation directory: the JAVA_HOME
// environment variable when set, otherwise a platform-specific search
// (PATH probing through symlinks on unix, the java_home tool on macOS,
// the JavaSoft registry keys on Windows).
func JavaHome() (string, error) {
	if home := os.Getenv("JAVA_HOME"); home != "" {
		return home, nil
	}
	return javaHomePlatform()
}

// JDKHome returns the development-kit installation directory: the
// JDK_HOME environment variable when set, otherwise derived from the
// runtime home. On Windows the JDK registers separately from the JRE.
func JDKHome() (string, error) {
	if home := os.Getenv("JDK_HOME"); home != "" {
		return home, nil
	}
	return jdkHomePlatform()
}

// Find locates the native runtime library under JavaHome. An
// installation may carry a client build, a server build or both;
// prefer biases the pick but is not guaranteed. Empty prefer takes
// server when available.
func Find(prefer string) (Library, error) {
	if prefer != "" && prefer != "client" && prefer != "server" {
		return Library{}, errors.Configuration(`prefer must be "client", "server" or empty, got %q`, prefer)
	}

	home, err := JavaHome()
	if err != nil {
		return Library{}, err
	}
	paths, err := libraryCandidates(home)
	if err != nil {
		return Library{}, err
	}

	client, server := classify(paths)
	if client == "" && server == "" {
		return Library{}, errors.NotFound("runtime library", home)
	}

	switch prefer {
	case "client":
		if client != "" {
			return Library{Path: client, Kind: "client"}, nil
		}
		Logger().Warn(`preferred "client" runtime not found, using "server"`)
	case "server":
		if server != "" {
			return Library{Path: server, Kind: "server"}, nil
		}
		Logger().Warn(`preferred "server" runtime not found, using "client"`)
	}
	if server != "" {
		return Library{Path: server, Kind: "server"}, nil
	}
	return Library{Path: client, Kind: "client"}, nil
}

// classify splits candidate library paths into client and server
// builds by path convention. Unidentified paths fill the empty slots,
// server first.
func classify(paths []string) (client, server string) {
	for _, p := range paths {
		switch {
		case strings.Contains(p, "server"):
			server = p
		case strings.Contains(p, "client"):
			client = p
		case server == "":
			Logger().Warn("library path not identified as server or client, assuming server",
				zap.String("path", p))
			server = p
		case client == "":
			Logger().Warn("library path not identified as server or client, assuming client",
				zap.String("path", p))
			client = p
		default:
			Logger().Warn("library path not identified, ignoring", zap.String("path", p))
		}
	}
	return client, server
}

// Loader loads the native runtime library at most once per process.
// It satisfies controller.Loader.
type Loader struct {
	mu     sync.Mutex
	handle uintptr
	kind   string
}

// Load finds and loads the library, honoring the client/server
// preference. Once loaded it is a no-op: a later conflicting
// preference only logs a warning, because the library cannot be
// swapped in a live process.
func (l *Loader) Load(prefer string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle != 0 {
		if prefer != "" && prefer != l.kind {
			Logger().Warn("runtime library already loaded, preference ignored",
				zap.String("loaded", l.kind),
				zap.String("preferred", prefer))
		}
		return nil
	}

	lib, err := Find(prefer)
	if err != nil {
		return err
	}
	handle, err := openLibrary(lib.Path)
	if err != nil {
		return errors.StartupFailure(err, "load "+lib.Path)
	}

	l.handle = handle
	l.kind = lib.Kind
	Logger().Info("runtime library loaded",
		zap.String("path", lib.Path),
		zap.String("kind", lib.Kind))
	return nil
}

// Kind returns "client" or "server" once loaded, "" before
func (l *Loader) Kind() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.kind
}
