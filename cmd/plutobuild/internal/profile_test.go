package internal

import (
	"os"
	"path/filepath"
	"testing"

	plutobuild "github.com/plutolang/pluto-build"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pluto-build.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
out: /tmp/pluto-out
target: aarch64-unknown-linux-gnu
host: x86_64-unknown-linux-gnu
source: vendor/pluto
maxStackSize: 1000000
useLongjmp: true
debug: false
`)
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Out != "/tmp/pluto-out" || p.Target != "aarch64-unknown-linux-gnu" ||
		p.Host != "x86_64-unknown-linux-gnu" || p.Source != "vendor/pluto" {
		t.Errorf("decoded profile = %+v", p)
	}
	if p.MaxStackSize == nil || *p.MaxStackSize != 1000000 {
		t.Errorf("MaxStackSize = %v, want 1000000", p.MaxStackSize)
	}
	if p.UseLongjmp == nil || !*p.UseLongjmp {
		t.Errorf("UseLongjmp = %v, want true", p.UseLongjmp)
	}
	if p.Debug == nil || *p.Debug {
		t.Errorf("Debug = %v, want false", p.Debug)
	}
}

func TestLoadProfileErrors(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: want error")
	}
	if _, err := LoadProfile(writeProfile(t, "out: [not, a, string")); err == nil {
		t.Error("malformed yaml: want error")
	}
}

func TestProfileApply(t *testing.T) {
	b := plutobuild.NewWithEnv(map[string]string{
		"TARGET": "x86_64-unknown-linux-gnu",
		"HOST":   "x86_64-unknown-linux-gnu",
	})

	p := &Profile{Out: "/tmp/out", Target: "aarch64-unknown-linux-gnu"}
	p.Apply(b)

	if b.OutputDir() != "/tmp/out" {
		t.Errorf("OutputDir() = %q, want /tmp/out", b.OutputDir())
	}
	if b.TargetTriple() != "aarch64-unknown-linux-gnu" {
		t.Errorf("TargetTriple() = %q, profile should override the environment", b.TargetTriple())
	}
	// Unset profile fields keep the environment defaults.
	if b.HostTriple() != "x86_64-unknown-linux-gnu" {
		t.Errorf("HostTriple() = %q, want environment default", b.HostTriple())
	}
}
