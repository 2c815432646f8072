package loader

import (
	"testing"

	"github.com/wippyai/jvm-runtime/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		paths      []string
		wantClient string
		wantServer string
	}{
		{
			name: "both identified",
			paths: []string{
				"/opt/java/lib/client/libjvm.so",
				"/opt/java/lib/server/libjvm.so",
			},
			wantClient: "/opt/java/lib/client/libjvm.so",
			wantServer: "/opt/java/lib/server/libjvm.so",
		},
		{
			name:       "server only",
			paths:      []string{"/opt/java/lib/server/libjvm.so"},
			wantServer: "/opt/java/lib/server/libjvm.so",
		},
		{
			name:       "unidentified assumed server first",
			paths:      []string{"/opt/java/lib/libjvm.so"},
			wantServer: "/opt/java/lib/libjvm.so",
		},
		{
			name: "second unidentified assumed client",
			paths: []string{
				"/opt/a/libjvm.so",
				"/opt/b/libjvm.so",
			},
			wantServer: "/opt/a/libjvm.so",
			wantClient: "/opt/b/libjvm.so",
		},
		{
			name: "third unidentified dropped",
			paths: []string{
				"/opt/a/libjvm.so",
				"/opt/b/libjvm.so",
				"/opt/c/libjvm.so",
			},
			wantServer: "/opt/a/libjvm.so",
			wantClient: "/opt/b/libjvm.so",
		},
		{
			name: "later match wins",
			paths: []string{
				"/opt/java/lib/server/libjvm.so",
				"/usr/lib/jvm/lib/server/libjvm.so",
			},
			wantServer: "/usr/lib/jvm/lib/server/libjvm.so",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := classify(tt.paths)
			if client != tt.wantClient {
				t.Errorf("client = %q, want %q", client, tt.wantClient)
			}
			if server != tt.wantServer {
				t.Errorf("server = %q, want %q", server, tt.wantServer)
			}
		})
	}
}

func TestFindRejectsBadPreference(t *testing.T) {
	if _, err := Find("fast"); !errors.IsConfiguration(err) {
		t.Errorf("Find(fast) = %v, want configuration error", err)
	}
}

func TestJavaHomeEnvOverride(t *testing.T) {
	t.Setenv("JAVA_HOME", "/opt/custom/java")
	home, err := JavaHome()
	if err != nil {
		t.Fatalf("JavaHome: %v", err)
	}
	if home != "/opt/custom/java" {
		t.Errorf("JavaHome = %q", home)
	}
}

func TestJDKHomeEnvOverride(t *testing.T) {
	t.Setenv("JDK_HOME", "/opt/custom/jdk")
	home, err := JDKHome()
	if err != nil {
		t.Fatalf("JDKHome: %v", err)
	}
	if home != "/opt/custom/jdk" {
		t.Errorf("JDKHome = %q", home)
	}
}

func TestFindNoLibraries(t *testing.T) {
	t.Setenv("JAVA_HOME", t.TempDir())
	if _, err := Find(""); !errors.IsNotFound(err) {
		t.Errorf("Find in empty home = %v, want not_found", err)
	}
}
