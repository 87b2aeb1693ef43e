// Package config loads host-configurable resource ceilings for a fiber:
// maximum call-frame depth and maximum operand-stack size. The teacher
// hardcodes these as fixed-size arrays (pkg/vm/vm.go: a 1024-slot value
// stack, a 256-slot local table); this package keeps those numbers as
// defaults but lets a host override them from a YAML file, grounded on
// MongooseMoo-barn's own gopkg.in/yaml.v3 config loading.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Limits bounds the resources a single fiber may consume before the VM
// aborts it with a runtime error rather than growing without limit.
type Limits struct {
	MaxCallDepth    int `yaml:"max_call_depth"`
	MaxOperandStack int `yaml:"max_operand_stack"`
}

// Defaults mirrors the teacher's hardcoded VM sizing.
func Defaults() *Limits {
	return &Limits{
		MaxCallDepth:    256,
		MaxOperandStack: 1024,
	}
}

// Load reads Limits from a YAML file at path, starting from Defaults and
// overriding whichever fields the file sets.
func Load(path string) (*Limits, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads Limits from r in YAML form.
func Parse(r io.Reader) (*Limits, error) {
	l := Defaults()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(l); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return l, nil
}
