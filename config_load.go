package searchblocker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/in-session/magento2-search-blocker/search"
)

// configSchema constrains the shape of a stored policy document. Unknown
// keys are rejected so a typo in a hand-edited file surfaces at load time
// instead of silently disabling a stage.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "enabled": {"type": "boolean"},
    "channels": {
      "type": "object",
      "properties": {
        "frontend": {"type": "boolean"},
        "rest": {"type": "boolean"},
        "graphql": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "blacklist": {"type": "string"},
    "redirect_path": {"type": "string"},
    "regex_filter": {"type": "boolean"},
    "logging": {
      "type": "object",
      "properties": {
        "enabled": {"type": "boolean"},
        "channels": {"type": "string"}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

var compiledSchema = jsonschema.MustCompileString("config.schema.json", configSchema)

// LoadConfig reads and parses a policy file from the given path, checking
// the document against the policy schema.
// Supported formats: JSON (.json), YAML (.yaml, .yml).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	var doc interface{}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	if doc != nil {
		if err := compiledSchema.Validate(doc); err != nil {
			return nil, fmt.Errorf("config schema: %w", err)
		}
	}

	return &cfg, nil
}

// ValidateConfig validates a Config for correctness. The admin API runs
// every policy update through it before persisting.
func ValidateConfig(cfg Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	if cfg.RedirectPath != "" && !strings.HasPrefix(cfg.RedirectPath, "/") {
		return fmt.Errorf("redirect_path must be absolute, got %q", cfg.RedirectPath)
	}
	for _, name := range ParseList(cfg.Logging.Channels) {
		if _, err := search.ParseChannel(name); err != nil {
			return fmt.Errorf("logging channels: %w", err)
		}
	}
	return nil
}
