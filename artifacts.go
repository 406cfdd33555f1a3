package plutobuild

import (
	"fmt"
	"io"
)

// Artifacts is the immutable result of a build: where the archives
// landed, their names in link order, and the C++ runtime library to
// link alongside them, if the platform needs one spelled out.
type Artifacts struct {
	libDir     string
	libs       []string
	cppStdlib  string
	haveStdlib bool
}

// LibDir returns the directory holding the produced static libraries.
func (a *Artifacts) LibDir() string {
	return a.libDir
}

// Libs returns the produced library names in link order, the main
// library first.
func (a *Artifacts) Libs() []string {
	libs := make([]string, len(a.libs))
	copy(libs, a.libs)
	return libs
}

// CppStdlib returns the resolved C++ runtime library link name.
// ok is false when the platform links it implicitly (e.g. MSVC).
func (a *Artifacts) CppStdlib() (name string, ok bool) {
	return a.cppStdlib, a.haveStdlib
}

// PrintLinkMetadata writes the line-oriented link directives the host
// build consumes: the native search path, one static-library directive
// per produced archive, and the runtime library when one was resolved.
func (a *Artifacts) PrintLinkMetadata(w io.Writer) {
	fmt.Fprintf(w, "link-search=native=%s\n", a.libDir)
	for _, lib := range a.libs {
		fmt.Fprintf(w, "link-lib=static=%s\n", lib)
	}
	if a.haveStdlib {
		fmt.Fprintf(w, "link-lib=%s\n", a.cppStdlib)
	}
}

// LdFlags returns the equivalent linker flags for consumers that feed
// them to cgo or a plain linker invocation.
func (a *Artifacts) LdFlags() []string {
	flags := make([]string, 0, len(a.libs)+2)
	flags = append(flags, "-L"+a.libDir)
	for _, lib := range a.libs {
		flags = append(flags, "-l"+lib)
	}
	if a.haveStdlib {
		flags = append(flags, "-l"+a.cppStdlib)
	}
	return flags
}
