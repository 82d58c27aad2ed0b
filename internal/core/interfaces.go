// Package core defines the port interfaces that connect the watcher pipeline
// to its collaborators: the chain client, the failure store, the watermark
// cursor, and the per-stage verification checks. Services depend on these
// interfaces, never on concrete adapters.
package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
)

// ChainSource is the read-only view of the market contract used by the
// poller. Implementations must return events in source order: block order,
// then log order within a block.
type ChainSource interface {
	// HeadBlock returns the current chain head height.
	HeadBlock(ctx context.Context) (uint64, error)
	// JobOpenedEvents returns the JobOpened events in the inclusive range
	// [from, to].
	JobOpenedEvents(ctx context.Context, from, to uint64) ([]model.JobEvent, error)
	// ProviderURL resolves an operator address to its control-plane base URL
	// via the contract's provider registry.
	ProviderURL(ctx context.Context, operator common.Address) (string, error)
}

// FailureRepository persists verification failure records. Inserts are
// append-only; rows are never updated.
type FailureRepository interface {
	Insert(ctx context.Context, req *model.CreateFailureRequest) (*model.FailureRecord, error)
	List(ctx context.Context, kind model.FailureKind, opts *model.FailureListOptions) ([]*model.FailureRecord, error)
}

// CursorRepository durably stores the poller watermark so a restart can
// resume from the last fully-processed block instead of the current head.
type CursorRepository interface {
	// Load returns the stored watermark and whether one exists.
	Load(ctx context.Context) (uint64, bool, error)
	// Save stores the watermark after a fully-processed tick.
	Save(ctx context.Context, height uint64) error
}

// AddressResolver waits for a job's instance to publish a public address
// through the operator's discovery endpoint.
type AddressResolver interface {
	Resolve(ctx context.Context, task *model.VerificationTask) (string, error)
}

// ReachabilityProbe is a point-in-time connectivity test for a resolved
// address. A nil return means the instance accepted a connection; a non-nil
// return carries the reason it did not. A single failed probe is definitive
// for the current check cycle.
type ReachabilityProbe interface {
	Probe(ctx context.Context, address string) error
}

// EndpointChecker performs the independent second-source check that a job's
// address is externally visible through the operator gateway. It returns the
// address the gateway reported.
type EndpointChecker interface {
	Check(ctx context.Context, jobID string) (string, error)
}

// Recorder accepts failure records from verification workers. Implementations
// are best-effort: a persistence failure must never propagate back into the
// workflow.
type Recorder interface {
	Record(ctx context.Context, req *model.CreateFailureRequest)
}
