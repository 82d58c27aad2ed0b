package model

import (
	"errors"
	"strings"
	"time"
)

// FailureKind selects which append-only failure table a record belongs to.
type FailureKind string

const (
	// FailureKindReachability covers address-resolution and probe failures.
	FailureKindReachability FailureKind = "reachability"
	// FailureKindEndpoint covers operator cross-check endpoint failures.
	FailureKindEndpoint FailureKind = "endpoint"
)

// IPUnknown is the sentinel address stored when resolution never produced one.
const IPUnknown = "unknown"

// Valid reports whether the kind maps to a known failure table.
func (k FailureKind) Valid() bool {
	return k == FailureKindReachability || k == FailureKindEndpoint
}

// FailureRecord is a persisted verification failure. Records are append-only;
// identity is the database-assigned id and rows are never updated.
type FailureRecord struct {
	ID        int32       `db:"id"`
	Job       string      `db:"job"`
	Operator  string      `db:"operator"`
	IP        string      `db:"ip"`
	Error     string      `db:"error"`
	Timestamp int64       `db:"timestamp"`
	Kind      FailureKind `db:"-"`
}

// OccurredAt returns the record timestamp as a time.Time.
func (r *FailureRecord) OccurredAt() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// CreateFailureRequest carries the fields for one failure insert.
type CreateFailureRequest struct {
	Kind     FailureKind
	Job      string
	Operator string
	IP       string
	Error    string
}

// Normalize trims free-text fields and applies the unknown-address sentinel.
func (req *CreateFailureRequest) Normalize() {
	req.Job = strings.TrimSpace(req.Job)
	req.Operator = strings.TrimSpace(req.Operator)
	req.IP = strings.TrimSpace(req.IP)
	req.Error = strings.TrimSpace(req.Error)
	if req.IP == "" {
		req.IP = IPUnknown
	}
}

// Validate checks the request before it reaches the database.
func (req *CreateFailureRequest) Validate() error {
	if !req.Kind.Valid() {
		return errors.New("failure kind is required")
	}
	if req.Job == "" {
		return errors.New("job id is required")
	}
	if req.Operator == "" {
		return errors.New("operator is required")
	}
	if req.Error == "" {
		return errors.New("error message is required")
	}
	return nil
}

// FailureListOptions controls pagination of failure listings, newest first.
type FailureListOptions struct {
	Limit  int
	Offset int
}

// Normalize clamps pagination values to safe bounds.
func (o *FailureListOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.Limit > 500 {
		o.Limit = 500
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}
