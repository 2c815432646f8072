package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/jvm-runtime/controller"
	"github.com/wippyai/jvm-runtime/engine"
	"github.com/wippyai/jvm-runtime/loader"
	"github.com/wippyai/jvm-runtime/namespace"
	"github.com/wippyai/jvm-runtime/options"
)

func main() {
	var (
		classpath   = flag.String("cp", "", "Classpath: path-list separated .wasm modules")
		optionsFile = flag.String("options", "", "TOML startup options file")
		prefixes    = flag.String("prefix", "", "Extra top-level prefixes to intercept (comma-separated)")
		pkg         = flag.String("pkg", "", "Dotted package to list (default: root)")
		class       = flag.String("class", "", "Canonical class name to resolve")
		call        = flag.String("call", "", "Global function to invoke with the remaining integer arguments")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive browser (TUI)")
	)
	flag.Parse()

	if *classpath == "" && *optionsFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: jbrowse -cp <modules.wasm> [-pkg name] [-class name] [-call name [args...]]")
		fmt.Fprintln(os.Stderr, "       jbrowse -cp <modules.wasm> -i  (interactive browser)")
		fmt.Fprintln(os.Stderr, "       jbrowse -options <startup.toml> [-i]")
		os.Exit(1)
	}

	if *verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			controller.SetLogger(l)
			namespace.SetLogger(l)
			engine.SetLogger(l)
			loader.SetLogger(l)
		}
	}

	startup := options.Startup{}
	if *optionsFile != "" {
		s, err := options.LoadFile(*optionsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		startup = s
	}
	if *classpath != "" {
		startup.Classpath = append(startup.Classpath, *classpath)
	}

	var err error
	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		err = runInteractive(startup, splitList(*prefixes))
	} else {
		err = run(startup, splitList(*prefixes), *pkg, *class, *call, flag.Args())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(startup options.Startup, prefixes []string, pkg, class, call string, callArgs []string) error {
	bridge := engine.New(engine.Config{})
	ctrl := controller.New(controller.Config{Bridge: bridge})
	defer ctrl.Stop()

	reg := namespace.NewRegistry(ctrl, namespace.Config{})
	for _, p := range prefixes {
		if err := reg.RegisterPrefix(p); err != nil {
			return err
		}
	}

	if err := ctrl.Start(startup); err != nil {
		return err
	}

	node, err := reg.Node(pkg)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\nMembers:\n", node.Description())
	for _, name := range node.Members() {
		kind := "package"
		switch {
		case node.HasClass(name):
			kind = "class"
		case node.IsRoot():
			if _, ok := ctrl.Function(name); ok {
				kind = "function"
			}
		}
		fmt.Printf("  %-8s  %s\n", kind, name)
	}

	if class != "" {
		cls, err := bridge.ResolveClass(class)
		if err != nil {
			return err
		}
		fmt.Printf("\nClass: %s\n", cls.CanonicalName())
	}

	if call != "" {
		fn, ok := ctrl.Function(call)
		if !ok {
			return fmt.Errorf("no global function %q", call)
		}
		args := make([]any, len(callArgs))
		for i, a := range callArgs {
			n, err := strconv.ParseUint(a, 10, 64)
			if err != nil {
				return fmt.Errorf("argument %q: %w", a, err)
			}
			args[i] = n
		}
		result, err := fn.Call(context.Background(), args...)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s(%s) = %v\n", call, strings.Join(callArgs, ", "), result)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
