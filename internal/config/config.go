// Package config loads the optional defaults file for the limit command.
//
// The file is YAML, validated against an embedded CUE schema before
// decoding so that typos and type mismatches are rejected with a precise
// message instead of silently becoming zero values. Flags always override
// file values.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config holds limit-command defaults read from a YAML file.
// Pointer fields distinguish "absent" from "explicitly zero".
type Config struct {
	File     string   `yaml:"file"`
	Max      *int     `yaml:"max"`
	NSeconds *float64 `yaml:"nseconds"`
	Logfile  string   `yaml:"logfile"`
}

// Load reads, validates, and decodes the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := validate(path, data); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	return &cfg, nil
}

// validate unifies the YAML document with the embedded schema.
func validate(path string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return fmt.Errorf("build config %s: %w", path, err)
	}

	if err := schema.Unify(value).Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	return nil
}
