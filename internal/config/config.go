// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// Region identifies one scrape target: the site's URL segment plus the
// administrative area names used to mark listing locations.
type Region struct {
	Name       string   `json:"name" validate:"required"`
	ID         string   `json:"id" validate:"required"` // URL path segment, e.g. "dki-jakarta"
	AdminAreas []string `json:"admins,omitempty"`
}

// Config represents the ETL configuration loaded from a JSON file.
// Missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Extraction
	AdsType      string   `json:"ads_type,omitempty" validate:"omitempty,oneof=sale rent"`
	PropertyType string   `json:"property_type,omitempty" validate:"omitempty,oneof=house apartment boarding-room villa hotel"`
	NumPages     int      `json:"num_pages,omitempty" validate:"omitempty,gt=0"`
	BaseURL      string   `json:"base_url,omitempty" validate:"omitempty,url"`
	Regions      []Region `json:"regions,omitempty" validate:"omitempty,dive"`

	// Loading
	StagingTable string `json:"stg_table,omitempty"`
	MainTable    string `json:"main_table,omitempty"`
	UniqueKey    string `json:"unique_key,omitempty"`
	BatchSize    int    `json:"batch_size,omitempty" validate:"omitempty,gt=0"`
	DatabaseURL  string `json:"database_url,omitempty"`

	// Artifacts
	RawDir       string `json:"raw_dir,omitempty"`
	ProcessedDir string `json:"processed_dir,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
}

// configSchema is the JSON Schema the config file must satisfy before the
// struct-level checks run. It catches shape mistakes (wrong types, unknown
// keys) that the unmarshaler would silently tolerate.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "ads_type": {"type": "string"},
    "property_type": {"type": "string"},
    "num_pages": {"type": "integer"},
    "base_url": {"type": "string"},
    "regions": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string"},
          "id": {"type": "string"},
          "admins": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["name", "id"]
      }
    },
    "stg_table": {"type": "string"},
    "main_table": {"type": "string"},
    "unique_key": {"type": "string"},
    "batch_size": {"type": "integer"},
    "database_url": {"type": "string"},
    "raw_dir": {"type": "string"},
    "processed_dir": {"type": "string"},
    "verbose": {"type": "boolean"}
  }
}`

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		AdsType:      "sale",
		PropertyType: "house",
		NumPages:     10,
		BaseURL:      "https://www.rumah123.com",
		StagingTable: "listings_staging",
		MainTable:    "listings",
		UniqueKey:    "link",
		BatchSize:    500,
		RawDir:       "./data/raw",
		ProcessedDir: "./data/processed",
	}
}

// LoadConfig loads configuration from a JSON file, checking it against the
// embedded schema first. Returns an error if the file cannot be read,
// parsed, or has the wrong shape.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("failed to check config schema: %w", err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return fmt.Errorf("config error: %s: %s", first.Field(), first.Description())
	}
	return nil
}

// Validate checks field values against their constraints. Required fields
// are not checked here; they are enforced after merging with defaults and
// CLI flags.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fe := errs[0]
	switch fe.Field() {
	case "AdsType":
		return fmt.Errorf("config error: 'ads_type' must be one of [sale rent], got %q", fe.Value())
	case "PropertyType":
		return fmt.Errorf("config error: 'property_type' must be one of [house apartment boarding-room villa hotel], got %q", fe.Value())
	case "NumPages":
		return fmt.Errorf("config error: 'num_pages' must be a positive integer")
	case "BatchSize":
		return fmt.Errorf("config error: 'batch_size' must be a positive integer")
	case "BaseURL":
		return fmt.Errorf("config error: 'base_url' must be a valid URL")
	default:
		return fmt.Errorf("config error: %s failed %s validation", fe.Namespace(), fe.Tag())
	}
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. This applies config file values on top of built-ins and
// leaves CLI flags to override the result.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.AdsType == "" {
		result.AdsType = defaults.AdsType
	}
	if result.PropertyType == "" {
		result.PropertyType = defaults.PropertyType
	}
	if result.NumPages == 0 {
		result.NumPages = defaults.NumPages
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if len(result.Regions) == 0 {
		result.Regions = defaults.Regions
	}
	if result.StagingTable == "" {
		result.StagingTable = defaults.StagingTable
	}
	if result.MainTable == "" {
		result.MainTable = defaults.MainTable
	}
	if result.UniqueKey == "" {
		result.UniqueKey = defaults.UniqueKey
	}
	if result.BatchSize == 0 {
		result.BatchSize = defaults.BatchSize
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RawDir == "" {
		result.RawDir = defaults.RawDir
	}
	if result.ProcessedDir == "" {
		result.ProcessedDir = defaults.ProcessedDir
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}
