package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/marlinprotocol/oyster-watchdog/internal/core"
)

// TCPProbeOptions groups configuration for TCPProbe.
type TCPProbeOptions struct {
	Port    int           // Required: TCP port to probe
	Timeout time.Duration // Required: connect timeout
}

// TCPProbe is a point-in-time connectivity test: one connect attempt with a
// short timeout, no retries. A failed connect is a definitive "not reachable"
// for the current check cycle.
type TCPProbe struct {
	port    int
	timeout time.Duration
}

var _ core.ReachabilityProbe = (*TCPProbe)(nil)

// NewTCPProbe constructs a TCPProbe.
func NewTCPProbe(opts TCPProbeOptions) (*TCPProbe, error) {
	if opts.Port <= 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("probe port %d out of range", opts.Port)
	}
	if opts.Timeout <= 0 {
		return nil, errors.New("probe timeout must be positive")
	}
	return &TCPProbe{port: opts.Port, timeout: opts.Timeout}, nil
}

// Probe attempts a single TCP connection to the address.
func (p *TCPProbe) Probe(ctx context.Context, address string) error {
	if address == "" {
		return errors.New("address is required")
	}

	target := net.JoinHostPort(address, strconv.Itoa(p.port))

	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return fmt.Errorf("connect %s: %w", target, err)
	}
	return conn.Close()
}
