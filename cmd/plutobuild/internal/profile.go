package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	plutobuild "github.com/plutolang/pluto-build"
)

// Profile is an optional YAML build profile. Unset fields leave the
// environment-derived defaults untouched; explicit command-line flags
// still win over profile values.
type Profile struct {
	Out          string `yaml:"out"`
	Target       string `yaml:"target"`
	Host         string `yaml:"host"`
	Source       string `yaml:"source"`
	MaxStackSize *int   `yaml:"maxStackSize"`
	UseLongjmp   *bool  `yaml:"useLongjmp"`
	Debug        *bool  `yaml:"debug"`
}

// LoadProfile reads and decodes a YAML build profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

// Apply copies the profile's set fields onto b.
func (p *Profile) Apply(b *plutobuild.Build) {
	if p.Out != "" {
		b.OutDir(p.Out)
	}
	if p.Target != "" {
		b.Target(p.Target)
	}
	if p.Host != "" {
		b.Host(p.Host)
	}
	if p.Source != "" {
		b.Source(p.Source)
	}
	if p.MaxStackSize != nil {
		b.SetMaxStackSize(*p.MaxStackSize)
	}
	if p.UseLongjmp != nil {
		b.UseLongjmp(*p.UseLongjmp)
	}
	if p.Debug != nil {
		b.Debug(*p.Debug)
	}
}
