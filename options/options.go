package options

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/wippyai/jvm-runtime/errors"
)

// MinHeapKiB is the floor applied to the max heap size before encoding.
const MinHeapKiB = 2048

// Startup carries the raw option tokens plus the keyword shortcuts for
// the common cases. Raw tokens use the runtime's command-line syntax
// (-verbose:gc, -enableassertions, -Xcheck:jni, ...).
type Startup struct {
	// Raw is the ordered list of raw option tokens.
	Raw []string

	// Classpath entries to merge into the accumulated classpath set.
	// Each entry may itself be a path-list-separator joined string.
	Classpath []string

	// MaxHeapKiB is the maximum heap size in KiB. Zero means unset.
	// Values below MinHeapKiB are raised to MinHeapKiB.
	MaxHeapKiB int

	// Headless, when set, controls the headless property token.
	Headless *bool
}

// Result is the normalized output of Parse, ready for the native loader
// and the runtime instance.
type Result struct {
	// Args is the cleaned token list with the synthesized classpath,
	// heap and headless tokens appended.
	Args []string

	// Prefer is the extracted client/server preference, or "".
	Prefer string

	// Classpath is the merged classpath: accumulated entries first,
	// then new ones, each canonicalized to an absolute path, deduped.
	Classpath []string
}

// Bool is a convenience for the Headless field.
func Bool(v bool) *bool { return &v }

var (
	headlessRe = regexp.MustCompile(`^-Djava\.awt\.headless=([tT]rue|[fF]alse)$`)
	heapRe     = regexp.MustCompile(`^-Xmx(\d+)([kKmM]?)$`)
)

// ClasspathProperty is the raw option token prefix carrying the merged
// classpath to the runtime instance.
const ClasspathProperty = "-Djava.class.path="

// forbidden are the low-level control hooks reserved by the embedding
// contract. They install process exit/abort/diagnostic handlers and
// must never come from user options.
var forbidden = map[string]struct{}{
	"vfprintf": {},
	"exit":     {},
	"abort":    {},
}

// Parse normalizes startup options into a runtime-ready argument list.
//
// It recognizes, at most once each, the client/server preference, the
// headless flag, the heap-size flag and the classpath property, and
// extracts them from the raw list. Specifying any of these families
// twice, whether via raw flag or keyword shortcut, is a configuration
// error. The -cp/-classpath syntax is rejected because the keyword
// classpath is the canonical way to extend the classpath.
//
// accumulated is the classpath set gathered before start; it is merged
// ahead of any classpath given here, order preserved.
func Parse(s Startup, accumulated []string) (*Result, error) {
	var (
		cleaned   []string
		prefer    string
		headless  *bool
		heapKiB   int
		heapSet   bool
		rawCP     string
		rawCPSeen bool
	)

	for _, tok := range s.Raw {
		if _, ok := forbidden[tok]; ok {
			return nil, errors.ForbiddenOption(tok, "reserved by the embedding contract")
		}

		if tok == "-client" || tok == "-server" {
			if prefer != "" {
				return nil, errors.DuplicateOption("client/server preference")
			}
			// The runtime ignores this flag at startup; it selects
			// which native library the loader picks ahead of time.
			prefer = tok[1:]
			continue
		}

		if m := headlessRe.FindStringSubmatch(tok); m != nil {
			if headless != nil {
				return nil, errors.DuplicateOption("headless")
			}
			v := strings.EqualFold(m[1], "true")
			headless = &v
			continue
		}

		if m := heapRe.FindStringSubmatch(tok); m != nil {
			if heapSet {
				return nil, errors.DuplicateOption("max heap size")
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, errors.Configuration("invalid heap size %q", tok)
			}
			switch m[2] {
			case "k", "K":
				heapKiB = n
			case "m", "M":
				heapKiB = n * 1024
			default: // bytes
				heapKiB = n / 1024
			}
			heapSet = true
			continue
		}

		if strings.HasPrefix(tok, "-cp") || strings.HasPrefix(tok, "-classpath") {
			return nil, errors.ForbiddenOption(tok, "use the classpath keyword instead of -cp/-classpath")
		}
		if strings.HasPrefix(tok, ClasspathProperty) {
			if rawCPSeen {
				return nil, errors.DuplicateOption("classpath")
			}
			rawCP = tok[len(ClasspathProperty):]
			rawCPSeen = true
			continue
		}

		cleaned = append(cleaned, tok)
	}

	// Keyword shortcuts collide with their raw flag families.
	if s.MaxHeapKiB != 0 {
		if heapSet {
			return nil, errors.DuplicateOption("max heap size")
		}
		heapKiB = s.MaxHeapKiB
		heapSet = true
	}
	if s.Headless != nil {
		if headless != nil {
			return nil, errors.DuplicateOption("headless")
		}
		headless = s.Headless
	}
	if len(s.Classpath) > 0 && rawCPSeen {
		return nil, errors.DuplicateOption("classpath")
	}

	var incoming []string
	if rawCPSeen {
		incoming = splitPathList(rawCP)
	}
	for _, entry := range s.Classpath {
		incoming = append(incoming, splitPathList(entry)...)
	}

	classpath, err := mergeClasspath(accumulated, incoming)
	if err != nil {
		return nil, err
	}

	args := cleaned
	if len(classpath) > 0 {
		args = append(args, ClasspathProperty+strings.Join(classpath, string(os.PathListSeparator)))
	}
	if heapSet {
		if heapKiB < MinHeapKiB {
			heapKiB = MinHeapKiB
		}
		args = append(args, "-Xmx"+strconv.Itoa(heapKiB)+"k")
	}
	if headless != nil && *headless {
		args = append(args, "-Djava.awt.headless=true")
	}

	return &Result{Args: args, Prefer: prefer, Classpath: classpath}, nil
}

// MergeClasspath combines already-accumulated entries with new ones,
// canonicalizing each to an absolute path and dropping duplicates while
// preserving order.
func MergeClasspath(accumulated, incoming []string) ([]string, error) {
	return mergeClasspath(accumulated, incoming)
}

func mergeClasspath(accumulated, incoming []string) ([]string, error) {
	merged := make([]string, 0, len(accumulated)+len(incoming))
	seen := make(map[string]struct{}, len(accumulated)+len(incoming))

	add := func(p string) error {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Configuration("classpath entry %q: %v", p, err)
		}
		if _, dup := seen[abs]; dup {
			return nil
		}
		seen[abs] = struct{}{}
		merged = append(merged, abs)
		return nil
	}

	for _, p := range accumulated {
		if err := add(p); err != nil {
			return nil, err
		}
	}
	for _, p := range incoming {
		if err := add(p); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func splitPathList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, string(os.PathListSeparator)) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
