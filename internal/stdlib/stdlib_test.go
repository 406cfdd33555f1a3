package stdlib

import "testing"

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestResolveFallbacks(t *testing.T) {
	tests := []struct {
		target string
		want   string
		ok     bool
	}{
		{"x86_64-apple-darwin", "c++", true},
		{"aarch64-apple-darwin", "c++", true},
		{"x86_64-unknown-freebsd", "c++", true},
		{"x86_64-unknown-openbsd", "c++", true},
		{"x86_64-unknown-linux-gnu", "stdc++", true},
		{"x86_64-unknown-linux-musl", "stdc++", true},
		{"riscv64gc-unknown-linux-gnu", "stdc++", true},
		{"aarch64-linux-android", "c++_shared", true},
		{"armv7-linux-androideabi", "c++_shared", true},
		{"x86_64-pc-windows-msvc", "", false},
		{"i686-pc-windows-msvc", "", false},
		{"x86_64-pc-windows-gnu", "stdc++", true},
	}
	for _, tt := range tests {
		got, ok := Resolve(tt.target, tt.target, nil)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Resolve(%q) = %q, %v, want %q, %v", tt.target, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveOverridePrecedence(t *testing.T) {
	const target = "x86_64-apple-darwin"

	// Exact-triple override beats every fallback and every other key.
	env := envFrom(map[string]string{
		"CXXSTDLIB_x86_64-apple-darwin": "exact",
		"CXXSTDLIB_x86_64_apple_darwin": "underscored",
		"HOST_CXXSTDLIB":                "generic-host",
		"CXXSTDLIB":                     "generic",
	})
	if got, ok := Resolve(target, target, env); !ok || got != "exact" {
		t.Errorf("exact override: got %q, %v", got, ok)
	}

	env = envFrom(map[string]string{
		"CXXSTDLIB_x86_64_apple_darwin": "underscored",
		"HOST_CXXSTDLIB":                "generic-host",
		"CXXSTDLIB":                     "generic",
	})
	if got, ok := Resolve(target, target, env); !ok || got != "underscored" {
		t.Errorf("underscored override: got %q, %v", got, ok)
	}

	env = envFrom(map[string]string{
		"HOST_CXXSTDLIB": "generic-host",
		"CXXSTDLIB":      "generic",
	})
	if got, ok := Resolve(target, target, env); !ok || got != "generic-host" {
		t.Errorf("HOST override: got %q, %v", got, ok)
	}

	env = envFrom(map[string]string{"CXXSTDLIB": "generic"})
	if got, ok := Resolve(target, target, env); !ok || got != "generic" {
		t.Errorf("generic override: got %q, %v", got, ok)
	}
}

func TestResolveHostTargetKind(t *testing.T) {
	env := envFrom(map[string]string{
		"HOST_CXXSTDLIB":   "host-lib",
		"TARGET_CXXSTDLIB": "target-lib",
	})

	// Native build consults HOST_CXXSTDLIB.
	if got, _ := Resolve("x86_64-unknown-linux-gnu", "x86_64-unknown-linux-gnu", env); got != "host-lib" {
		t.Errorf("native build: got %q, want host-lib", got)
	}
	// Cross build consults TARGET_CXXSTDLIB.
	if got, _ := Resolve("aarch64-unknown-linux-gnu", "x86_64-unknown-linux-gnu", env); got != "target-lib" {
		t.Errorf("cross build: got %q, want target-lib", got)
	}
}

func TestResolveOverrideBeatsMsvc(t *testing.T) {
	env := envFrom(map[string]string{"CXXSTDLIB_x86_64-pc-windows-msvc": "msvcprt"})
	got, ok := Resolve("x86_64-pc-windows-msvc", "x86_64-pc-windows-msvc", env)
	if !ok || got != "msvcprt" {
		t.Errorf("override on msvc: got %q, %v, want msvcprt, true", got, ok)
	}
}
