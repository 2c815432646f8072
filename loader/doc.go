// Package loader locates and loads the native runtime shared library.
//
// Discovery honors JAVA_HOME/JDK_HOME first and falls back to a
// platform search: PATH probing through symlinks on unix systems, the
// java_home tool on macOS, and the JavaSoft registry keys on Windows.
// Installations may ship a client build, a server build or both; Find
// classifies candidates by path and picks per the caller's preference.
//
// Loader satisfies controller.Loader and loads the library exactly
// once, without cgo.
package loader
