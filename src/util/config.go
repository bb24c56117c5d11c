package util

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Manifest is the optional YAML build manifest (vslc2c.yaml) supplying
// defaults for any flag not given on the command line; CLI flags always
// override these values, and the manifest never changes language
// semantics, only the defaults this driver runs with.
type Manifest struct {
	Arch    string   `yaml:"arch"`
	Opt     bool     `yaml:"opt"`
	Verbose bool     `yaml:"verbose"`
	Sources []string `yaml:"sources"`
}

// ---------------------
// ----- Functions -----
// ---------------------

// LoadManifest reads and parses a YAML build manifest.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ApplyManifest layers a loaded manifest's values under opt, leaving any
// flag explicitly set on the command line untouched.
func ApplyManifest(opt *Options, m *Manifest) {
	if !opt.Opt {
		opt.Opt = m.Opt
	}
	if !opt.Verbose {
		opt.Verbose = m.Verbose
	}
	if opt.Arch == "" {
		opt.Arch = m.Arch
	}
	if len(opt.Names) == 0 {
		opt.Names = m.Sources
	}
}
