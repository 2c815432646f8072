// Package errors provides structured error types for the jvm-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes the dotted name or option the error refers to and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseStartup, errors.KindStartupFailure).
//		Name("JVM-Main").
//		Detail("main loop never signalled readiness").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DuplicateOption("max heap size")
//	err := errors.NotFound("class", "java.util.HashMap")
//
// All errors implement the standard error interface and support errors.Is/As.
// The Is* helpers classify the three caller-visible families: configuration
// errors, startup failures (including the already-running race swallowed by
// EnsureStarted) and non-fatal resolution not-found conditions.
package errors
