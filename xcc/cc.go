// Package xcc drives a C++ compiler and archiver to turn a set of
// translation units into a static library. A Config is assembled with
// chainable setters, cloned per compilation unit, and consumed by Compile.
package xcc

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

type macro struct {
	name  string
	value string // empty means a bare -Dname
}

// Config collects everything needed to compile one static library:
// source files, include paths, macro definitions and compiler flags,
// plus the target/host triples and the output directory.
type Config struct {
	target   string
	host     string
	std      string
	optLevel int // -1 when unset
	warnings bool
	files    []string
	includes []string
	defines  []macro
	flags    []string
	// Flags applied only if the compiler accepts them. Probed at
	// Compile time, unsupported ones are dropped without error.
	maybeFlags []string
	outDir     string

	cxx        string
	probe      func(cxx, flag string) error
	probeCache map[string]bool
}

// New returns an empty Config with warnings enabled and no
// optimization level set.
func New() *Config {
	return &Config{
		optLevel:   -1,
		warnings:   true,
		probe:      probeFlag,
		probeCache: map[string]bool{},
	}
}

// Clone returns a deep copy. The copy and the original can be extended
// independently; neither sees the other's later additions.
func (c *Config) Clone() *Config {
	d := *c
	d.files = slices.Clone(c.files)
	d.includes = slices.Clone(c.includes)
	d.defines = slices.Clone(c.defines)
	d.flags = slices.Clone(c.flags)
	d.maybeFlags = slices.Clone(c.maybeFlags)
	d.probeCache = make(map[string]bool, len(c.probeCache))
	for k, v := range c.probeCache {
		d.probeCache[k] = v
	}
	return &d
}

func (c *Config) Target(triple string) *Config {
	c.target = triple
	return c
}

func (c *Config) Host(triple string) *Config {
	c.host = triple
	return c
}

// Std sets the language standard, e.g. "c++17".
func (c *Config) Std(std string) *Config {
	c.std = std
	return c
}

func (c *Config) Warnings(enabled bool) *Config {
	c.warnings = enabled
	return c
}

func (c *Config) OptLevel(level int) *Config {
	c.optLevel = level
	return c
}

// Compiler overrides compiler resolution. Without it the CXX
// environment variable wins, then the first of c++, g++ and clang++
// found in PATH.
func (c *Config) Compiler(path string) *Config {
	c.cxx = path
	return c
}

// Define records a macro definition. An empty value defines the bare
// macro name.
func (c *Config) Define(name, value string) *Config {
	c.defines = append(c.defines, macro{name: name, value: value})
	return c
}

func (c *Config) Include(dir string) *Config {
	c.includes = append(c.includes, dir)
	return c
}

// Flag adds a flag unconditionally; a compiler that rejects it fails
// the build.
func (c *Config) Flag(flag string) *Config {
	c.flags = append(c.flags, flag)
	return c
}

// FlagIfSupported adds a flag that is applied only when the compiler
// accepts it. Unsupported flags are dropped silently.
func (c *Config) FlagIfSupported(flag string) *Config {
	c.maybeFlags = append(c.maybeFlags, flag)
	return c
}

// File registers a single translation unit.
func (c *Config) File(path string) *Config {
	c.files = append(c.files, path)
	return c
}

// OutDir sets the directory where objects and the archive are written.
func (c *Config) OutDir(dir string) *Config {
	c.outDir = dir
	return c
}

// Files returns the registered translation units in registration order.
func (c *Config) Files() []string {
	return slices.Clone(c.files)
}

// Args returns the rendered per-object compiler arguments. Best-effort
// flags are excluded: they are only resolved against a real compiler at
// Compile time. Likewise the clang --target flag appears only when the
// compiler was set explicitly via Compiler; Compile renders it against
// the compiler it resolves.
func (c *Config) Args() []string {
	name := ""
	if c.cxx != "" {
		name = filepath.Base(c.cxx)
	}
	return c.commandLine(name)
}

// BestEffortFlags returns the flags registered via FlagIfSupported, in
// registration order, whether or not the compiler will accept them.
func (c *Config) BestEffortFlags() []string {
	return slices.Clone(c.maybeFlags)
}

// AddFilesByExt registers every regular file directly under dir whose
// name ends with ext (e.g. ".cpp"), in lexical order. It does not
// recurse into subdirectories.
func (c *Config) AddFilesByExt(dir, ext string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("xcc: enumerate %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		c.files = append(c.files, filepath.Join(dir, e.Name()))
	}
	return nil
}

// Supports reports whether the resolved compiler accepts flag. Results
// are cached per flag for the lifetime of the Config.
func (c *Config) Supports(flag string) bool {
	if ok, cached := c.probeCache[flag]; cached {
		return ok
	}
	cxx, err := c.compiler()
	if err != nil {
		c.probeCache[flag] = false
		return false
	}
	ok := c.probe(cxx, flag) == nil
	c.probeCache[flag] = ok
	return ok
}

// Compile compiles every registered source file to an object under the
// output directory and archives them into lib<name>.a. It returns the
// archive path.
func (c *Config) Compile(name string) (string, error) {
	if c.outDir == "" {
		return "", fmt.Errorf("xcc: output directory not set")
	}
	if len(c.files) == 0 {
		return "", fmt.Errorf("xcc: no source files for lib%s", name)
	}
	cxx, err := c.compiler()
	if err != nil {
		return "", err
	}
	cxxName := filepath.Base(cxx)
	if c.crossBuild() && !isClang(cxxName) && !strings.HasPrefix(cxxName, c.target+"-") {
		return "", fmt.Errorf("xcc: compiler %s cannot target %s, set CXX to a cross compiler", cxxName, c.target)
	}
	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return "", err
	}

	args := c.commandLine(cxxName)
	for _, flag := range c.maybeFlags {
		if c.Supports(flag) {
			args = append(args, flag)
		}
	}

	objs := make([]string, 0, len(c.files))
	for _, src := range c.files {
		obj := filepath.Join(c.outDir, objectName(src))
		if err := run(cxx, append(slices.Clone(args), "-c", src, "-o", obj)); err != nil {
			return "", fmt.Errorf("xcc: compile %s: %w", src, err)
		}
		objs = append(objs, obj)
	}

	lib := filepath.Join(c.outDir, "lib"+name+".a")
	ar := os.Getenv("AR")
	if ar == "" {
		ar = "ar"
	}
	if err := run(ar, append([]string{"rcs", lib}, objs...)); err != nil {
		return "", fmt.Errorf("xcc: archive lib%s.a: %w", name, err)
	}
	return lib, nil
}

// commandLine renders the per-object compiler arguments for the named
// compiler, sources and best-effort flags excluded.
func (c *Config) commandLine(cxxName string) []string {
	var args []string
	if c.std != "" {
		args = append(args, "-std="+c.std)
	}
	if !c.warnings {
		args = append(args, "-w")
	}
	if c.optLevel >= 0 {
		args = append(args, fmt.Sprintf("-O%d", c.optLevel))
	}
	if c.crossBuild() && isClang(cxxName) {
		args = append(args, "--target="+c.target)
	}
	for _, inc := range c.includes {
		args = append(args, "-I"+inc)
	}
	for _, m := range c.defines {
		if m.value == "" {
			args = append(args, "-D"+m.name)
		} else {
			args = append(args, "-D"+m.name+"="+m.value)
		}
	}
	return append(args, c.flags...)
}

func (c *Config) compiler() (string, error) {
	if c.cxx != "" {
		return c.cxx, nil
	}
	if v := os.Getenv("CXX"); v != "" {
		return v, nil
	}
	// Cross builds prefer a triple-prefixed toolchain when one exists.
	if c.target != "" && c.target != c.host {
		if path, err := exec.LookPath(c.target + "-g++"); err == nil {
			return path, nil
		}
	}
	for _, name := range []string{"c++", "g++", "clang++"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("xcc: no C++ compiler found, set CXX")
}

func (c *Config) crossBuild() bool {
	return c.target != "" && c.target != c.host
}

func isClang(name string) bool {
	return strings.Contains(name, "clang")
}

// objectName keeps the parent directory in the object file name so that
// same-named sources from different directories do not collide. Sources
// registered without a usable parent (".", a bare name, a filesystem
// root) fall back to the plain stem.
func objectName(src string) string {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dir := filepath.Base(filepath.Dir(src))
	if dir == "." || dir == "" || dir == string(filepath.Separator) {
		return stem + ".o"
	}
	return dir + "." + stem + ".o"
}

// probeFlag checks flag acceptance by compiling an empty translation
// unit with -Werror so that an unknown-flag warning fails the probe.
func probeFlag(cxx, flag string) error {
	dir, err := os.MkdirTemp("", "xcc-probe-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)
	src := filepath.Join(dir, "probe.cpp")
	if err := os.WriteFile(src, []byte("int main() { return 0; }\n"), 0o644); err != nil {
		return err
	}
	cmd := exec.Command(cxx, "-Werror", flag, "-c", src, "-o", filepath.Join(dir, "probe.o"))
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

func run(bin string, args []string) error {
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
