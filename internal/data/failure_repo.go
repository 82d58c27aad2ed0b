package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marlinprotocol/oyster-watchdog/internal/data/pgxutil"
	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
	apperrors "github.com/marlinprotocol/oyster-watchdog/internal/errors"
)

// failureColumns defines the column list for failure SELECT queries to keep
// field mapping consistent across both tables.
const failureColumns = `id, job, operator, ip, error, timestamp`

// tableForKind maps a failure kind to its append-only table. Both tables
// share an identical shape; only the kind differs.
func tableForKind(kind model.FailureKind) (string, error) {
	switch kind {
	case model.FailureKindReachability:
		return "reachability_errors", nil
	case model.FailureKindEndpoint:
		return "operator_endpoint_errors", nil
	default:
		return "", fmt.Errorf("unknown failure kind: %q", kind)
	}
}

// FailureRepo provides database operations for verification failure records.
type FailureRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewFailureRepo creates a new FailureRepo with the given database connection.
func NewFailureRepo(db *sql.DB) *FailureRepo {
	return &FailureRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// Insert appends one failure record and returns the stored row. Rows are
// never updated after insert; identity is the database-assigned id.
func (r *FailureRepo) Insert(
	ctx context.Context,
	req *model.CreateFailureRequest,
) (*model.FailureRecord, error) {
	if req == nil {
		return nil, errors.New("create failure request is required")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	table, err := tableForKind(req.Kind)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // table comes from tableForKind, not user input
	query := `
		INSERT INTO ` + table + ` (job, operator, ip, error, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + failureColumns

	now := r.timeProvider.Now().Unix()

	var record model.FailureRecord
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, req.Job, req.Operator, req.IP, req.Error, now)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		record, queryErr = pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.FailureRecord])
		return queryErr
	})
	if err != nil {
		return nil, fmt.Errorf("insert %s failure: %w", req.Kind, apperrors.MapDBError(err))
	}

	record.Kind = req.Kind
	return &record, nil
}

// List returns failure records of one kind, newest first.
func (r *FailureRepo) List(
	ctx context.Context,
	kind model.FailureKind,
	opts *model.FailureListOptions,
) ([]*model.FailureRecord, error) {
	table, err := tableForKind(kind)
	if err != nil {
		return nil, err
	}

	listOpts := model.FailureListOptions{}
	if opts != nil {
		listOpts = *opts
	}
	listOpts.Normalize()

	//nolint:gosec // table comes from tableForKind, not user input
	query := `
		SELECT ` + failureColumns + `
		FROM ` + table + `
		ORDER BY id DESC
		LIMIT $1 OFFSET $2`

	var records []*model.FailureRecord
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, listOpts.Limit, listOpts.Offset)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		records, queryErr = pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[model.FailureRecord])
		return queryErr
	})
	if err != nil {
		return nil, fmt.Errorf("list %s failures: %w", kind, apperrors.MapDBError(err))
	}

	for _, record := range records {
		record.Kind = kind
	}
	return records, nil
}
