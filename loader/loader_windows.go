//go:build windows

package loader

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/wippyai/jvm-runtime/errors"
)

const (
	jreKey = `SOFTWARE\JavaSoft\Java Runtime Environment`
	jdkKey = `SOFTWARE\JavaSoft\Java Development Kit`
)

func javaHomePlatform() (string, error) {
	if home, err := javaSoftHome(jreKey); err == nil {
		return home, nil
	}
	return "", errors.NotFound("java installation", "set JAVA_HOME or install a JRE/JDK")
}

func jdkHomePlatform() (string, error) {
	if home, err := javaSoftHome(jdkKey); err == nil {
		return home, nil
	}
	return "", errors.NotFound("JDK installation", "set JDK_HOME or install a JDK")
}

// javaSoftHome reads the JavaHome value for the CurrentVersion subkey
// of a JavaSoft registry key, checking HKCU before HKLM.
func javaSoftHome(key string) (string, error) {
	var lastErr error
	for _, root := range []registry.Key{registry.CURRENT_USER, registry.LOCAL_MACHINE} {
		home, err := readJavaHome(root, key)
		if err == nil {
			return home, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func readJavaHome(root registry.Key, key string) (string, error) {
	k, err := registry.OpenKey(root, key, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	version, _, err := k.GetStringValue("CurrentVersion")
	if err != nil {
		return "", err
	}
	vk, err := registry.OpenKey(root, key+`\`+version, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer vk.Close()

	home, _, err := vk.GetStringValue("JavaHome")
	return home, err
}

func libraryCandidates(home string) ([]string, error) {
	var out []string
	for _, base := range []string{home, filepath.Join(home, "jre")} {
		for _, kind := range []string{"client", "server"} {
			p := filepath.Join(base, "bin", kind, "jvm.dll")
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func openLibrary(path string) (uintptr, error) {
	handle, err := windows.LoadLibrary(path)
	return uintptr(handle), err
}
