// Package stdlib resolves the C++ runtime library a linker must pull in
// alongside the produced static archives.
package stdlib

import "strings"

// Resolve returns the link name of the C++ standard library for the
// given target, or ok=false when the platform links it implicitly.
//
// Resolution order, first match wins:
//  1. CXXSTDLIB_<target>
//  2. CXXSTDLIB_<target with hyphens replaced by underscores>
//  3. HOST_CXXSTDLIB when host == target, TARGET_CXXSTDLIB otherwise
//  4. CXXSTDLIB
//  5. Platform family inferred from the triple: none for MSVC, LLVM
//     libc++ for Apple and the BSDs, the shared libc++ for Android,
//     GNU libstdc++ for everything else.
//
// env looks up one variable in the caller's environment snapshot; a nil
// env skips the override chain entirely.
func Resolve(target, host string, env func(string) (string, bool)) (string, bool) {
	if env != nil {
		kind := "TARGET"
		if host == target {
			kind = "HOST"
		}
		for _, key := range []string{
			"CXXSTDLIB_" + target,
			"CXXSTDLIB_" + strings.ReplaceAll(target, "-", "_"),
			kind + "_CXXSTDLIB",
			"CXXSTDLIB",
		} {
			if v, ok := env(key); ok {
				return v, true
			}
		}
	}

	switch {
	case strings.Contains(target, "msvc"):
		return "", false
	case strings.Contains(target, "apple"),
		strings.Contains(target, "freebsd"),
		strings.Contains(target, "openbsd"):
		return "c++", true
	case strings.Contains(target, "android"):
		return "c++_shared", true
	default:
		return "stdc++", true
	}
}
