package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// JobEvent is one JobOpened occurrence decoded from the market contract.
// Events are immutable and scoped to a single block-range query.
type JobEvent struct {
	// JobID is the fixed-length job identifier rendered as a 0x-prefixed hex string.
	JobID string
	// Owner is the account that opened the job.
	Owner common.Address
	// Operator is the provider expected to run the instance.
	Operator common.Address
	// Metadata is the raw declared metadata payload, opaque until parsed.
	Metadata string
	// BlockNumber is the block the event was emitted in.
	BlockNumber uint64
}

// JobMetadata is the parsed form of a job's declared metadata.
// All fields are optional; absence of URL excludes the job from verification.
type JobMetadata struct {
	URL      *string `json:"url"`
	Instance *string `json:"instance"`
	Region   *string `json:"region"`
}

// ParseJobMetadata decodes the declared metadata payload.
// A decode failure is a data error on static input and is never retried.
func ParseJobMetadata(raw string) (*JobMetadata, error) {
	var meta JobMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("parse job metadata: %w", err)
	}
	return &meta, nil
}

// RegionOrDefault returns the declared region or the empty string.
func (m *JobMetadata) RegionOrDefault() string {
	if m == nil || m.Region == nil {
		return ""
	}
	return strings.TrimSpace(*m.Region)
}

// VerificationTask is the unit of work handed to a verification worker.
// A task is owned exclusively by one worker for its lifetime.
type VerificationTask struct {
	// AttemptID correlates all log lines and metrics for one verification run.
	AttemptID string
	JobID     string
	Operator  common.Address
	// ControlPlaneURL is the operator's discovery endpoint base URL.
	ControlPlaneURL string
	Region          string
}

// OperatorText renders the operator address for persistence and logs.
func (t *VerificationTask) OperatorText() string {
	return strings.ToLower(t.Operator.Hex())
}
