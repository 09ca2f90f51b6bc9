// Package config loads the ambient runtime configuration named in
// SPEC_FULL.md §A: recursion depth limit, REPL history size, the
// default real-vs-fake selection for standard libraries, and the asset
// manifest URL. It is unrelated to the agent binary's own configuration
// loading, which SPEC_FULL.md's Non-goals explicitly exclude — this is
// the runtime's own ambient concern, carried regardless.
package config

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Config is the validated, typed result of loading a YAML config document.
type Config struct {
	// MaxRecursionDepth is the configured recursion limit. interp.MaxDepth
	// is a constant; this package does not apply the value to it.
	MaxRecursionDepth int `yaml:"max_recursion_depth"`
	// ReplHistorySize is the configured bound on the REPL's accepted-block
	// history (§4.8); this package does not apply it to a REPL.
	ReplHistorySize int `yaml:"repl_history_size"`
	// UseFakeLibraries records the real-vs-fake library choice (§4.6
	// "fake bindings"). Interpreter construction reads
	// eldritch.Options.FakeLibraries, not this field.
	UseFakeLibraries bool `yaml:"use_fake_libraries"`
	// AssetManifestURL is the agent-served remote manifest the assets
	// library resolves names against before falling back to embedded
	// assets (§4.7).
	AssetManifestURL string `yaml:"asset_manifest_url"`
}

// Default returns the configuration applied when no file is loaded.
func Default() *Config {
	return &Config{
		MaxRecursionDepth: 500,
		ReplHistorySize:   500,
		UseFakeLibraries:  false,
		AssetManifestURL:  "",
	}
}

// schemaJSON is the JSON Schema every loaded config document is validated
// against before being applied, mirroring core/types.Validator's
// compile-then-validate discipline (Draft2020, no remote $ref).
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "max_recursion_depth": {"type": "integer", "minimum": 1, "maximum": 100000},
    "repl_history_size": {"type": "integer", "minimum": 0, "maximum": 1000000},
    "use_fake_libraries": {"type": "boolean"},
    "asset_manifest_url": {"type": "string"}
  }
}`

// Load parses and validates a YAML config document, returning Default()
// merged under nothing — a document that omits a field leaves it at YAML's
// own zero value, so callers that care about "unset" should start from
// Default() and overlay only the fields present via LoadInto.
func Load(doc []byte) (*Config, error) {
	c := &Config{}
	if err := LoadInto(doc, c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadInto validates doc against schemaJSON, then unmarshals it into c.
// Validation happens against the YAML document re-encoded as JSON, since
// jsonschema/v5 operates on decoded Go values, not YAML directly.
func LoadInto(doc []byte, c *Config) error {
	var raw any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return fmt.Errorf("config: parse: %w", err)
	}
	normalized := normalizeForSchema(raw)

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource("config.schema.json", bytes.NewReader([]byte(schemaJSON))); err != nil {
		return fmt.Errorf("config: schema: %w", err)
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		return fmt.Errorf("config: schema compile: %w", err)
	}
	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("config: validation: %w", err)
	}

	if err := yaml.Unmarshal(doc, c); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}
	return nil
}

// normalizeForSchema converts yaml.Unmarshal's map[string]interface{} tree
// (which for maps with non-string keys holds map[interface{}]interface{}
// instead) into the plain JSON-compatible shape jsonschema/v5 expects;
// non-string keys are stringified with fmt.Sprint.
func normalizeForSchema(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeForSchema(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeForSchema(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeForSchema(val)
		}
		return out
	default:
		return t
	}
}
