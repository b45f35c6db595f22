// Package config loads endpoint declarations from YAML, JSON or TOML files.
//
// Values in an endpoint entry are decoded without static types, so a file
// can declare a name or path of the wrong kind. Such entries are rejected
// with endpoint.ErrTypeMismatch when the descriptors are built.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/broady/endpoint"
	"github.com/broady/endpoint/middleware"
)

// DefaultListen is the address used when a file does not set one.
const DefaultListen = ":8080"

// DefaultMetricsPath is where metrics are served when enabled.
const DefaultMetricsPath = "/metrics"

// Format identifies a config file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

var validate = validator.New()

// File is the top-level configuration document.
type File struct {
	// Listen is the host:port the server binds to.
	Listen string `yaml:"listen" toml:"listen" validate:"omitempty,hostname_port"`

	// Endpoints declares the endpoints to route.
	Endpoints []EndpointConfig `yaml:"endpoints" toml:"endpoints" validate:"dive"`

	// CORS configures cross-origin access. Nil uses permissive defaults.
	CORS *middleware.CORSConfig `yaml:"cors" toml:"cors"`

	Metrics Metrics `yaml:"metrics" toml:"metrics"`
}

// EndpointConfig is one endpoint entry. Fields are untyped until
// Descriptors checks them.
type EndpointConfig struct {
	Name       any `yaml:"name" toml:"name"`
	Path       any `yaml:"path" toml:"path"`
	Reflection any `yaml:"reflection" toml:"reflection" validate:"required"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Namespace string `yaml:"namespace" toml:"namespace"`
	Path      string `yaml:"path" toml:"path" validate:"omitempty,startswith=/"`
}

// Load reads and parses the file at path. The format is chosen by file
// extension: .yaml, .yml, .json or .toml.
func Load(path string) (*File, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", path, err)
	}
	return f, nil
}

// Parse decodes data in the given format and applies defaults.
// Unknown keys are rejected.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML, FormatJSON:
		// JSON is a subset of YAML.
		if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
			return nil, err
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, err
		}
		for _, key := range md.Undecoded() {
			if !inReflection(key) {
				return nil, fmt.Errorf("unknown config key %q", key.String())
			}
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	f.applyDefaults()
	return &f, nil
}

// inReflection reports whether key lies inside an endpoint's reflection
// value, which is decoded as-is and may hold any keys.
func inReflection(key toml.Key) bool {
	return len(key) > 2 && key[0] == "endpoints" && key[1] == "reflection"
}

func formatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config extension %q", ext)
	}
}

func (f *File) applyDefaults() {
	if f.Listen == "" {
		f.Listen = DefaultListen
	}
	if f.Metrics.Path == "" {
		f.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks field constraints. It does not check endpoint value
// kinds; Descriptors does that.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return endpoint.DefaultErrorTransformer(err)
	}
	return nil
}

// Descriptors builds an endpoint descriptor for every entry. Failures from
// all entries are joined, each prefixed with its index; errors.Is still
// matches endpoint.ErrTypeMismatch through the result.
func (f *File) Descriptors() ([]*endpoint.Endpoint, error) {
	eps := make([]*endpoint.Endpoint, 0, len(f.Endpoints))
	var errs []error
	for i, ec := range f.Endpoints {
		ep, err := endpoint.NewFromAny(ec.Name, ec.Path, ec.Reflection)
		if err != nil {
			errs = append(errs, fmt.Errorf("endpoints[%d]: %w", i, err))
			continue
		}
		eps = append(eps, ep)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return eps, nil
}
