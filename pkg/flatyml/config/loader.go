package config

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/flatyml/pkg/flatyml"
)

// FromFile opens and parses a flat configuration file.
func FromFile(path string, opts ...flatyml.Option) (Config, error) {
	r, err := flatyml.Open(path, opts...)
	if err != nil {
		return Config{}, fmt.Errorf("open config file: %w", err)
	}
	defer r.Close()

	return FromReader(r)
}

// FromBytes parses flat configuration text.
func FromBytes(data []byte, opts ...flatyml.Option) (Config, error) {
	r := flatyml.OpenBytes("bytes", data, opts...)
	defer r.Close()

	return FromReader(r)
}

// FromReader builds a Config from r, parsing it first if needed.
// The Config holds a copy; r may be closed afterwards.
func FromReader(r *flatyml.Reader) (Config, error) {
	if r == nil {
		return Config{}, flatyml.ErrInvalidPointer
	}
	if !r.Parsed() {
		if err := r.Parse(context.Background()); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	return New(r.Snapshot().Map()), nil
}

// FromYAML decodes a full YAML document with a YAML parser, keeping only
// top-level integer and string scalars. Useful for checking that a file
// means the same thing to both parsers.
func FromYAML(data []byte) (Config, error) {
	var snap flatyml.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(snap.Map()), nil
}
