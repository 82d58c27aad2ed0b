package config

import (
	"strings"
	"time"
)

// ChainConfig contains the chain RPC endpoint and poller configuration.
type ChainConfig struct {
	// RPCURL is the Ethereum JSON-RPC endpoint to poll.
	RPCURL string `env:"RPC_URL"`
	// ContractAddress is the market contract emitting JobOpened events.
	ContractAddress string `env:"CONTRACT_ADDRESS"`
	// PollInterval is the tick interval of the block watcher.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"10s"`
	// CursorEnabled persists the watermark in Redis so a restart resumes
	// from the last fully-processed block instead of the current head.
	CursorEnabled bool `env:"CURSOR_ENABLED" envDefault:"false"`
	// CursorKey is the Redis key holding the watermark.
	CursorKey string `env:"CURSOR_KEY" envDefault:"oyster-watchdog:watermark"`
}

// Sanitize applies guardrails to chain configuration values.
func (c *ChainConfig) Sanitize() {
	c.RPCURL = strings.TrimSpace(c.RPCURL)
	c.ContractAddress = strings.TrimSpace(c.ContractAddress)
	c.CursorKey = strings.TrimSpace(c.CursorKey)
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Second
	}
	if c.CursorKey == "" {
		c.CursorEnabled = false
	}
}
