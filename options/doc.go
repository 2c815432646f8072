// Package options normalizes heterogeneous startup options into a
// runtime-ready argument list.
//
// The common cases use keyword shortcuts on Startup (classpath entries,
// max heap in KiB, headless); anything else passes through as raw
// tokens. Each of the four recognized option families may be given at
// most once, whether as a raw flag or a keyword, and the reserved
// embedding hooks (vfprintf, exit, abort) are rejected outright.
//
//	res, err := options.Parse(options.Startup{
//	    Raw:        []string{"-verbose:gc"},
//	    Classpath:  []string{"lib/app.jar"},
//	    MaxHeapKiB: 65536,
//	    Headless:   options.Bool(true),
//	}, nil)
//
// Startup options can also come from a TOML file via LoadFile.
package options
