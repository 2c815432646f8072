package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "phase and kind only",
			err:  &Error{Phase: PhaseStartup, Kind: KindStartupFailure},
			want: "[startup] startup_failure",
		},
		{
			name: "with name",
			err:  &Error{Phase: PhaseResolve, Kind: KindNotFound, Name: "java.util.Foo"},
			want: "[resolve] not_found at java.util.Foo",
		},
		{
			name: "with detail",
			err:  &Error{Phase: PhaseOptions, Kind: KindDuplicateOption, Name: "max heap size", Detail: "option specified more than once"},
			want: "[options] duplicate_option at max heap size: option specified more than once",
		},
		{
			name: "with cause",
			err:  &Error{Phase: PhaseShutdown, Kind: KindStartupFailure, Cause: fmt.Errorf("boom")},
			want: "[shutdown] startup_failure (caused by: boom)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := DuplicateOption("classpath")
	if !stderrors.Is(err, &Error{Phase: PhaseOptions, Kind: KindDuplicateOption}) {
		t.Error("Is() should match on phase and kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseStartup, Kind: KindDuplicateOption}) {
		t.Error("Is() should not match a different phase")
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("native create failed")
	err := StartupFailure(cause, "create instance")
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseResolve, KindNotFound).
		Name("com.example").
		Detail("no such package %q", "example").
		Build()

	if err.Phase != PhaseResolve || err.Kind != KindNotFound {
		t.Fatalf("builder lost phase/kind: %v", err)
	}
	if err.Name != "com.example" {
		t.Errorf("Name = %q, want %q", err.Name, "com.example")
	}
	if !strings.Contains(err.Detail, `"example"`) {
		t.Errorf("Detail = %q, formatting not applied", err.Detail)
	}
}

func TestClassifiers(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", AlreadyRunning())

	if !IsAlreadyRunning(wrapped) {
		t.Error("IsAlreadyRunning should see through wrapping")
	}
	if IsAlreadyRunning(StartupFailure(nil, "x")) {
		t.Error("IsAlreadyRunning should not match startup_failure")
	}

	if !IsNotFound(NotFound("class", "a.B")) {
		t.Error("IsNotFound(NotFound) = false")
	}
	if IsNotFound(Stopped()) {
		t.Error("IsNotFound(Stopped) = true")
	}

	for _, e := range []error{Configuration("x"), DuplicateOption("y"), ForbiddenOption("exit", "reserved")} {
		if !IsConfiguration(e) {
			t.Errorf("IsConfiguration(%v) = false", e)
		}
	}
	if IsConfiguration(AlreadyRunning()) {
		t.Error("IsConfiguration(AlreadyRunning) = true")
	}

	if !IsStopped(Stopped()) {
		t.Error("IsStopped(Stopped) = false")
	}
}
