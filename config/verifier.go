package config

import (
	"strings"
	"time"
)

// Default allow-list: the approved base-blue deployment image, one entry per
// supported CPU architecture.
const defaultAllowedImages = "https://artifacts.marlin.org/oyster/eifs/base-blue_v3.0.0_linux_amd64.eif," +
	"https://artifacts.marlin.org/oyster/eifs/base-blue_v3.0.0_linux_arm64.eif"

// defaultCrossCheckURL is the operator gateway refresh path; {job} is
// substituted with the job id.
const defaultCrossCheckURL = "https://sk.arb1.marlin.org/operators/jobs/refresh/ArbOne/{job}"

// VerifierConfig contains the verification workflow knobs.
type VerifierConfig struct {
	// AllowedImages is the exact-match image URL allow-list; jobs declaring
	// any other image are out of scope.
	AllowedImages []string `env:"ALLOWED_IMAGES" envSeparator:","`

	// StartupGrace is the unconditional wait before any network probing, to
	// let the enclave boot.
	StartupGrace time.Duration `env:"STARTUP_GRACE" envDefault:"180s"`

	// ResolveInterval is the wait between discovery-endpoint attempts while
	// the instance has not yet published an address.
	ResolveInterval time.Duration `env:"RESOLVE_INTERVAL" envDefault:"10s"`
	// ResolveCeiling bounds the total time spent resolving one job's address.
	ResolveCeiling time.Duration `env:"RESOLVE_CEILING" envDefault:"5m"`
	// HTTPTimeout applies to each individual discovery or cross-check request.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	// AddressExpr is the JMESPath expression extracting the instance address
	// from the operator-defined discovery response.
	AddressExpr string `env:"ADDRESS_EXPR" envDefault:"ip"`

	// ProbePort is the TCP port probed on the resolved address.
	ProbePort int `env:"PROBE_PORT" envDefault:"1300"`
	// ProbeTimeout is the connect timeout of the single reachability probe.
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT" envDefault:"5s"`

	// CrossCheckURL is the gateway URL template for the independent
	// second-source check; {job} is substituted with the job id.
	CrossCheckURL string `env:"CROSSCHECK_URL"`
	// CrossCheckExpr is the JMESPath expression for the address field the
	// cross-check response must contain.
	CrossCheckExpr string `env:"CROSSCHECK_EXPR" envDefault:"ip"`

	// MaxInFlight caps concurrently running verification workers.
	MaxInFlight int64 `env:"MAX_IN_FLIGHT" envDefault:"64"`
}

// Sanitize applies guardrails to verifier configuration values.
func (c *VerifierConfig) Sanitize() {
	if len(c.AllowedImages) == 0 {
		c.AllowedImages = strings.Split(defaultAllowedImages, ",")
	}
	images := make([]string, 0, len(c.AllowedImages))
	for _, img := range c.AllowedImages {
		if trimmed := strings.TrimSpace(img); trimmed != "" {
			images = append(images, trimmed)
		}
	}
	c.AllowedImages = images

	if c.StartupGrace < 0 {
		c.StartupGrace = 0
	}
	if c.ResolveInterval <= 0 {
		c.ResolveInterval = 10 * time.Second
	}
	if c.ResolveCeiling <= 0 {
		c.ResolveCeiling = 5 * time.Minute
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}

	c.AddressExpr = strings.TrimSpace(c.AddressExpr)
	if c.AddressExpr == "" {
		c.AddressExpr = "ip"
	}

	if c.ProbePort <= 0 || c.ProbePort > 65535 {
		c.ProbePort = 1300
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 5 * time.Second
	}

	c.CrossCheckURL = strings.TrimSpace(c.CrossCheckURL)
	if c.CrossCheckURL == "" {
		c.CrossCheckURL = defaultCrossCheckURL
	}
	c.CrossCheckExpr = strings.TrimSpace(c.CrossCheckExpr)
	if c.CrossCheckExpr == "" {
		c.CrossCheckExpr = "ip"
	}

	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 64
	}
}
