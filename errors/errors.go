package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseOptions   Phase = "options"   // startup option parsing
	PhaseStartup   Phase = "startup"   // runtime instance creation and handshake
	PhaseClasspath Phase = "classpath" // classpath mutation
	PhaseResolve   Phase = "resolve"   // namespace resolution
	PhaseShutdown  Phase = "shutdown"  // runtime teardown
)

// Kind categorizes the error
type Kind string

const (
	KindConfiguration   Kind = "configuration"
	KindDuplicateOption Kind = "duplicate_option"
	KindForbiddenOption Kind = "forbidden_option"
	KindAlreadyRunning  Kind = "already_running"
	KindStartupFailure  Kind = "startup_failure"
	KindNotFound        Kind = "not_found"
	KindStopped         Kind = "stopped"
	KindNotInitialized  Kind = "not_initialized"
	KindInvalidInput    Kind = "invalid_input"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Name   string // dotted name, option family or path the error refers to
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteString(" at ")
		b.WriteString(e.Name)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Name sets the dotted name, option family or path the error refers to
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Configuration creates an invalid startup configuration error
func Configuration(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseOptions,
		Kind:   KindConfiguration,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// DuplicateOption reports that an option family was specified more than once,
// whether via raw flag or keyword argument
func DuplicateOption(family string) *Error {
	return &Error{
		Phase:  PhaseOptions,
		Kind:   KindDuplicateOption,
		Name:   family,
		Detail: "option specified more than once",
	}
}

// ForbiddenOption reports a raw flag reserved by the embedding contract
func ForbiddenOption(flag, reason string) *Error {
	return &Error{
		Phase:  PhaseOptions,
		Kind:   KindForbiddenOption,
		Name:   flag,
		Detail: reason,
	}
}

// AlreadyRunning reports that a runtime instance already exists in the process
func AlreadyRunning() *Error {
	return &Error{
		Phase:  PhaseStartup,
		Kind:   KindAlreadyRunning,
		Detail: "a runtime instance already exists in this process",
	}
}

// StartupFailure wraps an initialization failure reported by the runtime
func StartupFailure(cause error, detail string) *Error {
	return &Error{
		Phase:  PhaseStartup,
		Kind:   KindStartupFailure,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error for a namespace member.
// It is an ordinary missing-member condition, not fatal.
func NotFound(what, name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotFound,
		Name:   name,
		Detail: fmt.Sprintf("%s not found", what),
	}
}

// Stopped reports use of the runtime after Stop
func Stopped() *Error {
	return &Error{
		Phase:  PhaseStartup,
		Kind:   KindStopped,
		Detail: "runtime was stopped and cannot be restarted",
	}
}

// NotInitialized creates a not-initialized error for a missing collaborator
func NotInitialized(component string) *Error {
	return &Error{
		Phase:  PhaseStartup,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Shutdown wraps a teardown failure. The handle is cleared regardless.
func Shutdown(cause error) *Error {
	return &Error{
		Phase:  PhaseShutdown,
		Kind:   KindStartupFailure,
		Detail: "destroy runtime instance",
		Cause:  cause,
	}
}

// Classpath wraps a live classloader mutation failure
func Classpath(path string, cause error) *Error {
	return &Error{
		Phase: PhaseClasspath,
		Kind:  KindInvalidInput,
		Name:  path,
		Cause: cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsNotFound reports whether err is a resolution not-found error
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound
}

// IsAlreadyRunning reports whether err is the already-running startup race
func IsAlreadyRunning(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindAlreadyRunning
}

// IsConfiguration reports whether err is an invalid startup configuration
func IsConfiguration(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindConfiguration, KindDuplicateOption, KindForbiddenOption:
		return true
	}
	return false
}

// IsStopped reports whether err signals use after Stop
func IsStopped(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindStopped
}
