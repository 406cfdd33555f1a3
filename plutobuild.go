// Package plutobuild compiles the vendored Pluto interpreter and its
// Soup support library into static archives, then reports the linkage
// metadata a host build needs to consume them.
package plutobuild

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/plutolang/pluto-build/internal/arch"
	"github.com/plutolang/pluto-build/internal/stdlib"
	"github.com/plutolang/pluto-build/xcc"
)

// Build holds the mutable parameters of one build. Fields default from
// the environment snapshot taken at construction; setters override them
// and chain. Build() consumes the value and produces Artifacts.
type Build struct {
	outDir       string
	target       string
	host         string
	sourceDir    string
	maxStackSize *int
	useLongjmp   *bool
	debug        bool

	env     map[string]string
	compile func(cfg *xcc.Config, name string) (string, error)
}

// New returns a Build defaulted from the current process environment.
// The environment is read exactly once, here; later changes to the
// process environment do not affect the build.
func New() *Build {
	return NewWithEnv(environMap())
}

// NewWithEnv is New with an explicit environment snapshot.
func NewWithEnv(env map[string]string) *Build {
	b := &Build{
		env:     env,
		compile: (*xcc.Config).Compile,
	}
	if v, ok := env["OUT_DIR"]; ok && v != "" {
		b.outDir = filepath.Join(v, "pluto-build")
	}
	b.target = env["TARGET"]
	b.host = env["HOST"]
	b.sourceDir = env["PLUTO_SOURCE_DIR"]
	if b.sourceDir == "" {
		b.sourceDir = "pluto"
	}
	if v, ok := env["PLUTO_BUILD_DEBUG"]; ok {
		b.debug = v != "" && v != "0" && !strings.EqualFold(v, "false")
	}
	return b
}

// OutDir overrides the output directory.
func (b *Build) OutDir(dir string) *Build {
	b.outDir = dir
	return b
}

// Target overrides the target triple.
func (b *Build) Target(triple string) *Build {
	b.target = triple
	return b
}

// Host overrides the host triple.
func (b *Build) Host(triple string) *Build {
	b.host = triple
	return b
}

// Source overrides the root of the vendored Pluto source tree. The Soup
// tree is expected under <dir>/vendor/Soup.
func (b *Build) Source(dir string) *Build {
	b.sourceDir = dir
	return b
}

// SetMaxStackSize bounds the interpreter stack, forwarded as the
// LUAI_MAXSTACK compile-time constant.
func (b *Build) SetMaxStackSize(size int) *Build {
	b.maxStackSize = &size
	return b
}

// UseLongjmp selects longjmp instead of C++ exceptions for non-local
// control flow.
func (b *Build) UseLongjmp(use bool) *Build {
	b.useLongjmp = &use
	return b
}

// Debug switches between the debug branch (interpreter API checks) and
// the release branch (assertions off, -O2). Release is the default.
func (b *Build) Debug(debug bool) *Build {
	b.debug = debug
	return b
}

// OutputDir returns the currently configured output directory.
func (b *Build) OutputDir() string {
	return b.outDir
}

// TargetTriple returns the currently configured target triple.
func (b *Build) TargetTriple() string {
	return b.target
}

// HostTriple returns the currently configured host triple.
func (b *Build) HostTriple() string {
	return b.host
}

// Build compiles the Soup support library and then the Pluto library
// into the output directory, which is recreated from scratch first.
// Missing target, host or output directory is caller misuse and panics
// before any filesystem mutation; compile failures abort with the
// toolchain's diagnostic.
func (b *Build) Build() *Artifacts {
	target := b.require(b.target, "TARGET")
	host := b.require(b.host, "HOST")
	outDir := b.require(b.outDir, "OUT_DIR")

	soupDir := filepath.Join(b.sourceDir, "vendor", "Soup")

	// Fresh-build guarantee: stale artifacts from an earlier
	// configuration never leak into this one.
	if _, err := os.Stat(outDir); err == nil {
		if err := os.RemoveAll(outDir); err != nil {
			panic(fmt.Sprintf("plutobuild: clean %s: %v", outDir, err))
		}
	}

	base := xcc.New().
		Target(target).
		Host(host).
		Warnings(false).
		Std("c++17").
		FlagIfSupported("-fvisibility=hidden").
		FlagIfSupported("-fno-rtti").
		FlagIfSupported("-Wno-multichar")

	if b.maxStackSize != nil {
		base.Define("LUAI_MAXSTACK", strconv.Itoa(*b.maxStackSize))
	}
	if b.useLongjmp != nil && *b.useLongjmp {
		base.Define("LUA_USE_LONGJMP", "1")
	}
	if b.debug {
		base.Define("LUA_USE_APICHECK", "")
	} else {
		base.Define("NDEBUG", "")
		base.OptLevel(2)
		// Lets the compiler lower calls like sqrt() into single
		// instructions when errno semantics are not required.
		base.FlagIfSupported("-fno-math-errno")
	}

	soup := base.Clone().OutDir(outDir)
	if err := soup.AddFilesByExt(filepath.Join(soupDir, "soup"), ".cpp"); err != nil {
		panic(fmt.Sprintf("plutobuild: %v", err))
	}
	if err := arch.Apply(soup, target, soupDir); err != nil {
		panic(fmt.Sprintf("plutobuild: %v", err))
	}
	if _, err := b.compile(soup, "soup"); err != nil {
		panic(fmt.Sprintf("plutobuild: %v", err))
	}

	// The Pluto tree compiles from the unaugmented base: it has no
	// architecture-specific fast paths, only Soup does.
	pluto := base.Clone().OutDir(outDir)
	if err := pluto.AddFilesByExt(b.sourceDir, ".cpp"); err != nil {
		panic(fmt.Sprintf("plutobuild: %v", err))
	}
	if _, err := b.compile(pluto, "pluto"); err != nil {
		panic(fmt.Sprintf("plutobuild: %v", err))
	}

	cppStdlib, haveStdlib := stdlib.Resolve(target, host, b.lookupEnv)

	return &Artifacts{
		libDir:     outDir,
		libs:       []string{"pluto", "soup"},
		cppStdlib:  cppStdlib,
		haveStdlib: haveStdlib,
	}
}

func (b *Build) require(value, name string) string {
	if value == "" {
		panic("plutobuild: " + name + " not set")
	}
	return value
}

func (b *Build) lookupEnv(key string) (string, bool) {
	v, ok := b.env[key]
	return v, ok
}

func environMap() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
