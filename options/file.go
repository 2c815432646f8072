package options

import (
	"github.com/BurntSushi/toml"

	"github.com/wippyai/jvm-runtime/errors"
)

// startupFile is the on-disk shape of a TOML startup file.
type startupFile struct {
	Options    []string `toml:"options"`
	Classpath  []string `toml:"classpath"`
	MaxHeapKiB int      `toml:"max_heap_kib"`
	Headless   *bool    `toml:"headless"`
}

// LoadFile reads startup options from a TOML file:
//
//	options      = ["-verbose:gc", "-enableassertions"]
//	classpath    = ["lib/app.jar", "lib/deps"]
//	max_heap_kib = 65536
//	headless     = true
//
// The result feeds Parse unchanged, so duplicate detection between the
// file's raw options and its keyword fields still applies.
func LoadFile(path string) (Startup, error) {
	var f startupFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return Startup{}, errors.New(errors.PhaseOptions, errors.KindInvalidInput).
			Name(path).
			Cause(err).
			Detail("decode startup file").
			Build()
	}
	return Startup{
		Raw:        f.Options,
		Classpath:  f.Classpath,
		MaxHeapKiB: f.MaxHeapKiB,
		Headless:   f.Headless,
	}, nil
}
