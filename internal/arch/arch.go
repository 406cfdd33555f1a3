// Package arch maps a target triple to the CPU-specific additions the
// Soup build needs: the intrinsics macro, the Intrin source directory
// and the hardware-feature compiler flags.
package arch

import (
	"path/filepath"
	"strings"

	"github.com/plutolang/pluto-build/xcc"
)

// Augmentation describes what a target gains on top of the shared
// configuration. The zero value means no additions at all.
type Augmentation struct {
	Defines []string // bare macro names
	Flags   []string // best-effort hardware-feature flags
	Intrin  bool     // compile the Intrin source directory
}

// For returns the augmentation for target. It matches on triple
// substrings and is total: unrecognized triples get the zero value, so
// the portable fallback paths compile instead.
func For(target string) Augmentation {
	switch {
	case strings.Contains(target, "x86_64"):
		return Augmentation{
			Defines: []string{"SOUP_USE_INTRIN"},
			Flags: []string{
				"-maes",
				"-mpclmul",
				"-mrdrnd",
				"-mrdseed",
				"-msha",
				"-msse4.1",
			},
			Intrin: true,
		}
	case strings.Contains(target, "aarch64"):
		return Augmentation{
			Defines: []string{"SOUP_USE_INTRIN"},
			Flags:   []string{"-march=armv8-a+crypto+crc"},
			Intrin:  true,
		}
	default:
		return Augmentation{}
	}
}

// Apply extends cfg with the augmentation for target. soupDir is the
// root of the Soup tree; its Intrin subdirectory is enumerated only
// when the target has intrinsics.
func Apply(cfg *xcc.Config, target, soupDir string) error {
	a := For(target)
	for _, name := range a.Defines {
		cfg.Define(name, "")
	}
	for _, flag := range a.Flags {
		cfg.FlagIfSupported(flag)
	}
	if a.Intrin {
		return cfg.AddFilesByExt(filepath.Join(soupDir, "Intrin"), ".cpp")
	}
	return nil
}
