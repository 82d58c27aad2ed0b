package service

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
)

// MetadataFilterOptions groups dependencies for MetadataFilter.
type MetadataFilterOptions struct {
	AllowedImages []string     // Required: exact-match deployment image allow-list
	Logger        *slog.Logger // Optional: structured logger
}

// MetadataFilter decides whether a job-open event is in scope for
// verification. A job qualifies only when its declared metadata parses and
// names an allow-listed deployment image. Exclusion is filtering, not an
// error: out-of-scope jobs produce no failure records.
type MetadataFilter struct {
	allowed map[string]struct{}
	logger  *slog.Logger
}

// NewMetadataFilter constructs a MetadataFilter.
func NewMetadataFilter(opts MetadataFilterOptions) (*MetadataFilter, error) {
	allowed := make(map[string]struct{}, len(opts.AllowedImages))
	for _, img := range opts.AllowedImages {
		if trimmed := strings.TrimSpace(img); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return nil, errors.New("image allow-list is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "metadata_filter")
	}

	return &MetadataFilter{allowed: allowed, logger: logger}, nil
}

// Evaluate parses the event's declared metadata and reports whether the job
// is in scope. The parsed metadata is returned only for in-scope jobs.
func (f *MetadataFilter) Evaluate(event model.JobEvent) (*model.JobMetadata, bool) {
	meta, err := model.ParseJobMetadata(event.Metadata)
	if err != nil {
		// Metadata is static chain data, so a parse failure is permanent.
		if f.logger != nil {
			f.logger.Warn("skipping job with unparseable metadata",
				"job", event.JobID,
				"error", err,
			)
		}
		return nil, false
	}

	if meta.URL == nil {
		if f.logger != nil {
			f.logger.Debug("skipping job without image url", "job", event.JobID)
		}
		return nil, false
	}

	if _, ok := f.allowed[strings.TrimSpace(*meta.URL)]; !ok {
		if f.logger != nil {
			f.logger.Debug("skipping job with non-allow-listed image",
				"job", event.JobID,
				"image", *meta.URL,
			)
		}
		return nil, false
	}

	return meta, true
}
