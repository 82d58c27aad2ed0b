package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config files for
// the available environment variables:
//   - chain.go: RPC endpoint, contract address, and poll settings
//   - database.go: Postgres and Redis configuration
//   - verifier.go: verification workflow knobs
//   - http.go: ops HTTP server configuration
//   - observability.go: metrics and notification configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Chain configuration
	Chain ChainConfig `envPrefix:"CHAIN_"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Verification workflow configuration
	Verifier VerifierConfig `envPrefix:"VERIFIER_"`

	// Ops HTTP server configuration
	HTTP HTTPConfig `envPrefix:"HTTP_"`

	// Observability configuration
	Observability ObservabilityConfig

	// Services is the comma-delimited list of service modes to run.
	Services string `env:"SERVICES" envDefault:"watcher"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// Call after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Chain.Sanitize()
	c.Verifier.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsWatcherEnabled returns true if the chain watcher service is enabled.
func (c *AppConfig) IsWatcherEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeWatcher]
}

// IsHTTPServerEnabled returns true if the ops HTTP server is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}
