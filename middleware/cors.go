package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSConfig holds the configuration for CORS middleware.
// Field names follow the config file keys.
type CORSConfig struct {
	// AllowedOrigins is a list of origins a cross-domain request can be executed from.
	// If the list contains "*", all origins are allowed.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`

	// AllowedMethods is a list of methods the client is allowed to use.
	// Default: ["GET", "HEAD", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods" toml:"allowed_methods"`

	// AllowedHeaders is a list of headers the client is allowed to use.
	// Default: ["Content-Type", "Authorization", "X-Request-Id"]
	AllowedHeaders []string `yaml:"allowed_headers" toml:"allowed_headers"`

	// ExposedHeaders indicates which headers are safe to expose.
	// Default: ["X-Request-Id"]
	ExposedHeaders []string `yaml:"exposed_headers" toml:"exposed_headers"`

	// AllowCredentials indicates whether the request can include credentials.
	AllowCredentials bool `yaml:"allow_credentials" toml:"allow_credentials"`

	// MaxAge indicates how long (in seconds) the results of a preflight request can be cached.
	MaxAge int `yaml:"max_age" toml:"max_age" validate:"gte=0"`
}

// DefaultCORSConfig returns a permissive configuration suitable for
// development and for discovery tooling running in a browser.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}
}

// CORS returns an HTTP middleware that answers preflight requests and sets
// CORS headers. A nil cfg uses DefaultCORSConfig; empty fields of cfg fall
// back to the defaults.
func CORS(cfg *CORSConfig) func(http.Handler) http.Handler {
	def := DefaultCORSConfig()
	if cfg == nil {
		cfg = def
	}

	opts := cors.Options{
		AllowedOrigins:   orDefault(cfg.AllowedOrigins, def.AllowedOrigins),
		AllowedMethods:   orDefault(cfg.AllowedMethods, def.AllowedMethods),
		AllowedHeaders:   orDefault(cfg.AllowedHeaders, def.AllowedHeaders),
		ExposedHeaders:   orDefault(cfg.ExposedHeaders, def.ExposedHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	return cors.New(opts).Handler
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
