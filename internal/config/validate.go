package config

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource []byte

// validateSchema checks the raw YAML config against the embedded CUE
// schema before decoding, so wrong value types or out-of-range values
// fail loudly instead of silently falling back to defaults.
func validateSchema(filename string, yamlBytes []byte) error {
	ctx := cuecontext.New()

	file, err := cueyaml.Extract(filename, yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(file)
	if configVal.Err() != nil {
		return fmt.Errorf("cannot build config value: %w", configVal.Err())
	}

	schemaVal := ctx.CompileBytes(schemaSource)
	if schemaVal.Err() != nil {
		return fmt.Errorf("cannot compile schema: %w", schemaVal.Err())
	}

	final := schemaVal.Unify(configVal)
	if final.Err() != nil {
		return fmt.Errorf("schema unify failed: %w", final.Err())
	}
	if err := final.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
