package engine_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	jvmruntime "github.com/wippyai/jvm-runtime"
	"github.com/wippyai/jvm-runtime/controller"
	"github.com/wippyai/jvm-runtime/engine"
	"github.com/wippyai/jvm-runtime/errors"
	"github.com/wippyai/jvm-runtime/namespace"
	"github.com/wippyai/jvm-runtime/options"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// buildWASM assembles a minimal core module exporting one nullary
// function per name, each returning i64 7.
func buildWASM(exports ...string) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})

	// Type section: a single () -> i64 signature.
	writeSection(&buf, 1, []byte{0x01, 0x60, 0x00, 0x01, 0x7e})

	// Function section: every function uses type 0.
	fs := uleb(len(exports))
	for range exports {
		fs = append(fs, 0x00)
	}
	writeSection(&buf, 3, fs)

	es := uleb(len(exports))
	for i, name := range exports {
		es = append(es, uleb(len(name))...)
		es = append(es, name...)
		es = append(es, 0x00) // func export
		es = append(es, uleb(i)...)
	}
	writeSection(&buf, 7, es)

	// Code section: no locals, i64.const 7, end.
	cs := uleb(len(exports))
	for range exports {
		cs = append(cs, 0x04, 0x00, 0x42, 0x07, 0x0b)
	}
	writeSection(&buf, 10, cs)

	return buf.Bytes()
}

func writeSection(buf *bytes.Buffer, id byte, contents []byte) {
	buf.WriteByte(id)
	buf.Write(uleb(len(contents)))
	buf.Write(contents)
}

func uleb(n int) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			return out
		}
	}
}

func writeModule(t *testing.T, dir, file string, exports ...string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, buildWASM(exports...), 0o644))
	return path
}

func TestBridgeEndToEnd(t *testing.T) {
	path := writeModule(t, t.TempDir(), "core.wasm",
		"java.util.ArrayList", "java.util.HashMap", "java.lang.String", "currentTimeMillis")

	b := engine.New(engine.Config{Descriptions: map[string]string{"java": "Core platform."}})
	inst, err := b.CreateInstance()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.DestroyInstance() })

	ready := make(chan struct{})
	go inst.Run([]string{options.ClasspathProperty + path}, ready)
	<-ready
	require.NoError(t, inst.PendingStartupError())

	children, err := b.DiscoverChildren("")
	require.NoError(t, err)
	require.Equal(t, []string{"java"}, children.Packages)
	require.Empty(t, children.Classes)

	children, err = b.DiscoverChildren("java")
	require.NoError(t, err)
	require.Equal(t, []string{"lang", "util"}, children.Packages)

	children, err = b.DiscoverChildren("java.util")
	require.NoError(t, err)
	require.Empty(t, children.Packages)
	require.Equal(t, map[string]string{
		"ArrayList": "java.util.ArrayList",
		"HashMap":   "java.util.HashMap",
	}, children.Classes)

	cls, err := b.ResolveClass("java.util.ArrayList")
	require.NoError(t, err)
	require.Equal(t, "java.util.ArrayList", cls.CanonicalName())

	_, err = b.ResolveClass("java.util.Vector")
	require.True(t, errors.IsNotFound(err))

	fns := b.Functions()
	require.Contains(t, fns, "currentTimeMillis")
	v, err := fns["currentTimeMillis"].Call(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(7), v)

	desc, err := b.PackageDescription("java")
	require.NoError(t, err)
	require.Equal(t, "Core platform.", desc)
	_, err = b.PackageDescription("java.util")
	require.True(t, errors.IsNotFound(err))
}

func TestClassInvoke(t *testing.T) {
	path := writeModule(t, t.TempDir(), "app.wasm", "com.example.Widget")

	b := engine.New(engine.Config{})
	inst, err := b.CreateInstance()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.DestroyInstance() })

	ready := make(chan struct{})
	go inst.Run([]string{options.ClasspathProperty + path}, ready)
	<-ready
	require.NoError(t, inst.PendingStartupError())

	raw, err := b.ResolveClass("com.example.Widget")
	require.NoError(t, err)
	cls, ok := raw.(*engine.Class)
	require.True(t, ok)

	results, err := cls.Invoke(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, results)
}

func TestRunRecordsPendingError(t *testing.T) {
	b := engine.New(engine.Config{})
	inst, err := b.CreateInstance()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.DestroyInstance() })

	missing := filepath.Join(t.TempDir(), "missing.wasm")
	ready := make(chan struct{})
	go inst.Run([]string{options.ClasspathProperty + missing}, ready)
	<-ready
	require.Error(t, inst.PendingStartupError())
}

func TestSecondInstanceRefused(t *testing.T) {
	b := engine.New(engine.Config{})
	_, err := b.CreateInstance()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.DestroyInstance() })

	_, err = b.CreateInstance()
	require.True(t, errors.IsAlreadyRunning(err))

	// The contract holds even after destroy.
	require.NoError(t, b.DestroyInstance())
	_, err = b.CreateInstance()
	require.True(t, errors.IsAlreadyRunning(err))
}

func TestControllerIntegration(t *testing.T) {
	dir := t.TempDir()
	core := writeModule(t, dir, "core.wasm", "com.example.Widget", "ping")

	b := engine.New(engine.Config{})
	ctrl := controller.New(controller.Config{Bridge: b})
	t.Cleanup(func() { _ = ctrl.Stop() })

	require.NoError(t, ctrl.Start(options.Startup{Classpath: []string{core}}))

	fn, ok := ctrl.Function("ping")
	require.True(t, ok)
	v, err := fn.Call(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(7), v)

	reg := namespace.NewRegistry(ctrl, namespace.Config{})
	require.NoError(t, reg.RegisterPrefix("com"))

	got, err := reg.Load("com.example.Widget")
	require.NoError(t, err)
	cls, ok := got.(jvmruntime.Class)
	require.True(t, ok)
	require.Equal(t, "com.example.Widget", cls.CanonicalName())

	// A module added while live extends the namespace in place.
	extra := writeModule(t, dir, "extra.wasm", "org.demo.Thing")
	require.NoError(t, ctrl.AddClassPath(extra))

	children, err := b.DiscoverChildren("org.demo")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"Thing": "org.demo.Thing"}, children.Classes)
}
