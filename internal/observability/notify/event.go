// Package notify defines the outbound notification surface for verification
// failures. Concrete transports live in subpackages.
package notify

import "context"

// VerificationFailure describes a failed job verification for humans.
type VerificationFailure struct {
	Job      string
	Operator string
	IP       string
	Kind     string
	Reason   string
}

// Sink delivers failure notifications. Implementations must be best-effort:
// a delivery error never blocks the verification pipeline.
type Sink interface {
	NotifyFailure(ctx context.Context, failure VerificationFailure) error
}
