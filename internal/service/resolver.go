package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/marlinprotocol/oyster-watchdog/config"
	"github.com/marlinprotocol/oyster-watchdog/internal/core"
	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
	apperrors "github.com/marlinprotocol/oyster-watchdog/internal/errors"
)

const resolverResponseLimit = 1 << 20 // 1 MiB

// AddressResolverOptions groups dependencies for HTTPAddressResolver.
type AddressResolverOptions struct {
	Config config.VerifierConfig // Required: resolver policy knobs
	Logger *slog.Logger          // Optional: structured logger
	Client *http.Client          // Optional: HTTP client override for tests
}

// HTTPAddressResolver polls an operator's discovery endpoint until the job's
// instance publishes a public address or the overall ceiling elapses. The
// instance may still be acquiring network identity after boot, so individual
// attempts that fail or return no address are retried on a fixed interval.
type HTTPAddressResolver struct {
	interval time.Duration
	ceiling  time.Duration
	expr     string
	logger   *slog.Logger
	client   *http.Client
}

var _ core.AddressResolver = (*HTTPAddressResolver)(nil)

// NewHTTPAddressResolver constructs an HTTPAddressResolver.
func NewHTTPAddressResolver(opts AddressResolverOptions) (*HTTPAddressResolver, error) {
	cfg := opts.Config
	if cfg.ResolveInterval <= 0 {
		return nil, errors.New("resolve interval must be positive")
	}
	if cfg.ResolveCeiling <= 0 {
		return nil, errors.New("resolve ceiling must be positive")
	}

	if _, err := jmespath.Compile(cfg.AddressExpr); err != nil {
		return nil, fmt.Errorf("compile address expression %q: %w", cfg.AddressExpr, err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "address_resolver")
	}

	return &HTTPAddressResolver{
		interval: cfg.ResolveInterval,
		ceiling:  cfg.ResolveCeiling,
		expr:     cfg.AddressExpr,
		logger:   logger,
		client:   client,
	}, nil
}

// Resolve polls the discovery endpoint until it reports an address. The
// returned error carries the resolution code once the ceiling elapses.
func (r *HTTPAddressResolver) Resolve(ctx context.Context, task *model.VerificationTask) (string, error) {
	if task == nil {
		return "", apperrors.Validation("verification task is required")
	}

	endpoint, err := r.discoveryURL(task)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.ceiling)
	defer cancel()

	var lastErr error
	for attempt := 1; ; attempt++ {
		address, err := r.fetchAddress(ctx, endpoint)
		if err == nil && address != "" {
			return address, nil
		}

		if err != nil {
			lastErr = err
			if r.logger != nil {
				r.logger.Debug("discovery attempt failed",
					"job", task.JobID,
					"attempt", attempt,
					"error", err,
				)
			}
		}

		timer := time.NewTimer(r.interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			if lastErr == nil {
				lastErr = errors.New("discovery endpoint never reported an address")
			}
			return "", apperrors.Resolution("failed to resolve instance address", lastErr)
		case <-timer.C:
		}
	}
}

func (r *HTTPAddressResolver) discoveryURL(task *model.VerificationTask) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(task.ControlPlaneURL), "/")
	if base == "" {
		return "", apperrors.Validation("control plane url is required")
	}

	endpoint := base + "/job/" + url.PathEscape(task.JobID)
	if task.Region != "" {
		endpoint += "?region=" + url.QueryEscape(task.Region)
	}
	return endpoint, nil
}

// fetchAddress performs one discovery attempt. An empty address with a nil
// error means the instance has not published one yet.
func (r *HTTPAddressResolver) fetchAddress(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create discovery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("discovery request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("discovery endpoint returned %s", resp.Status)
	}

	var payload any
	if err := json.NewDecoder(io.LimitReader(resp.Body, resolverResponseLimit)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode discovery response: %w", err)
	}

	return extractAddress(r.expr, payload), nil
}

// extractAddress applies the operator-defined expression to the response and
// returns the address string, or "" when absent or not a string.
func extractAddress(expr string, payload any) string {
	value, err := jmespath.Search(expr, payload)
	if err != nil {
		return ""
	}
	address, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(address)
}
