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

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/marlinprotocol/oyster-watchdog/config"
	"github.com/marlinprotocol/oyster-watchdog/internal/core"
	apperrors "github.com/marlinprotocol/oyster-watchdog/internal/errors"
)

// jobPlaceholder is substituted with the job id in the gateway URL template.
const jobPlaceholder = "{job}"

// GatewayCrossCheckerOptions groups dependencies for GatewayCrossChecker.
type GatewayCrossCheckerOptions struct {
	Config config.VerifierConfig // Required: cross-check URL template and expression
	Logger *slog.Logger          // Optional: structured logger
	Client *http.Client          // Optional: HTTP client override for tests
}

// GatewayCrossChecker performs the independent second-source check against
// the operator gateway. Transport failure, an undecodable response, and a
// response missing the address field are reported as three distinct reasons
// so the persisted diagnostics attribute blame correctly.
type GatewayCrossChecker struct {
	urlTemplate string
	expr        string
	logger      *slog.Logger
	client      *http.Client
}

var _ core.EndpointChecker = (*GatewayCrossChecker)(nil)

// NewGatewayCrossChecker constructs a GatewayCrossChecker.
func NewGatewayCrossChecker(opts GatewayCrossCheckerOptions) (*GatewayCrossChecker, error) {
	cfg := opts.Config

	template := strings.TrimSpace(cfg.CrossCheckURL)
	if template == "" {
		return nil, errors.New("cross-check url template is required")
	}
	if !strings.Contains(template, jobPlaceholder) {
		return nil, fmt.Errorf("cross-check url template must contain %s", jobPlaceholder)
	}

	if _, err := jmespath.Compile(cfg.CrossCheckExpr); err != nil {
		return nil, fmt.Errorf("compile cross-check expression %q: %w", cfg.CrossCheckExpr, err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "cross_checker")
	}

	return &GatewayCrossChecker{
		urlTemplate: template,
		expr:        cfg.CrossCheckExpr,
		logger:      logger,
		client:      client,
	}, nil
}

// Check calls the gateway refresh endpoint for the job and returns the
// address it reported.
func (c *GatewayCrossChecker) Check(ctx context.Context, jobID string) (string, error) {
	if jobID == "" {
		return "", apperrors.Validation("job id is required")
	}

	endpoint := strings.ReplaceAll(c.urlTemplate, jobPlaceholder, url.PathEscape(jobID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", apperrors.Unavailable("create cross-check request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.Unavailable("cross-check request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", apperrors.Unavailable(
			fmt.Sprintf("cross-check endpoint returned %s", resp.Status), nil)
	}

	var payload any
	if err := json.NewDecoder(io.LimitReader(resp.Body, resolverResponseLimit)).Decode(&payload); err != nil {
		return "", apperrors.Decode("cross-check response not parseable", err)
	}

	address := extractAddress(c.expr, payload)
	if address == "" {
		return "", apperrors.Validation("ip key not found in refresh response")
	}

	return address, nil
}
