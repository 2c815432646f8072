//go:build !windows

package loader

import (
	"io/fs"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ebitengine/purego"

	"github.com/wippyai/jvm-runtime/errors"
)

func libName() string {
	if runtime.GOOS == "darwin" {
		return "libjvm.dylib"
	}
	return "libjvm.so"
}

func javaHomePlatform() (string, error) {
	if runtime.GOOS == "darwin" {
		if out, err := exec.Command("/usr/libexec/java_home").Output(); err == nil {
			if home := strings.TrimSpace(string(out)); home != "" {
				return home, nil
			}
		}
	}

	// Resolve the java binary on PATH through its symlinks; the
	// installation root is two levels above <home>/bin/java.
	java, err := exec.LookPath("java")
	if err != nil {
		return "", errors.NotFound("java installation", "set JAVA_HOME or install a JRE/JDK")
	}
	resolved, err := filepath.EvalSymlinks(java)
	if err != nil {
		return "", errors.NotFound("java installation", java)
	}
	return filepath.Dir(filepath.Dir(resolved)), nil
}

func jdkHomePlatform() (string, error) {
	// The JDK and JRE are co-located outside Windows.
	home, err := JavaHome()
	if err != nil {
		return "", err
	}
	if filepath.Base(home) == "jre" {
		home = filepath.Dir(home)
	}
	return home, nil
}

func libraryCandidates(home string) ([]string, error) {
	var out []string
	walkErr := filepath.WalkDir(home, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			return nil
		}
		if !d.IsDir() && d.Name() == libName() {
			out = append(out, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, errors.NotFound("runtime library", home)
	}
	return out, nil
}

func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}
