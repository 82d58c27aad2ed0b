package service

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewTCPProbeValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTCPProbe(TCPProbeOptions{Port: 0, Timeout: time.Second})
	require.Error(t, err)

	_, err = NewTCPProbe(TCPProbeOptions{Port: 70000, Timeout: time.Second})
	require.Error(t, err)

	_, err = NewTCPProbe(TCPProbeOptions{Port: 1300, Timeout: 0})
	require.Error(t, err)
}

func TestProbeReachableAddress(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	host, portStr, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	probe, err := NewTCPProbe(TCPProbeOptions{Port: port, Timeout: 2 * time.Second})
	require.NoError(t, err)

	require.NoError(t, probe.Probe(context.Background(), host))
}

func TestProbeUnreachableAddress(t *testing.T) {
	t.Parallel()

	// Grab a port and close it so nothing is listening.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	require.NoError(t, listener.Close())

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	probe, err := NewTCPProbe(TCPProbeOptions{Port: port, Timeout: 500 * time.Millisecond})
	require.NoError(t, err)

	require.Error(t, probe.Probe(context.Background(), host))
}

func TestProbeRequiresAddress(t *testing.T) {
	t.Parallel()

	probe, err := NewTCPProbe(TCPProbeOptions{Port: 1300, Timeout: time.Second})
	require.NoError(t, err)

	require.Error(t, probe.Probe(context.Background(), ""))
}
