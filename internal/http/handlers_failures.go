package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/marlinprotocol/oyster-watchdog/internal/core"
	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
	apperrors "github.com/marlinprotocol/oyster-watchdog/internal/errors"
)

// FailureHandlers serves the read-only failure listings.
type FailureHandlers struct {
	Repo core.FailureRepository
}

// failureItem is the wire shape of one failure record.
type failureItem struct {
	ID        int32  `json:"id"`
	Job       string `json:"job"`
	Operator  string `json:"operator"`
	IP        string `json:"ip"`
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"`
}

type failureListResponse struct {
	Failures []failureItem `json:"failures"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}

// ListReachability handles GET /api/failures/reachability.
func (h *FailureHandlers) ListReachability(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, model.FailureKindReachability)
}

// ListEndpoint handles GET /api/failures/endpoint.
func (h *FailureHandlers) ListEndpoint(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, model.FailureKindEndpoint)
}

func (h *FailureHandlers) list(w http.ResponseWriter, r *http.Request, kind model.FailureKind) {
	opts, err := parseListOptions(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_pagination", Err: err})
		return
	}

	records, err := h.Repo.List(r.Context(), kind, opts)
	if err != nil {
		code := http.StatusInternalServerError
		if apperrors.CodeOf(err) == apperrors.ErrCodeUnavailable {
			code = http.StatusServiceUnavailable
		}
		WriteError(w, ErrorParams{Code: code, ErrCode: "list_failed", Err: err})
		return
	}

	items := make([]failureItem, 0, len(records))
	for _, record := range records {
		items = append(items, failureItem{
			ID:        record.ID,
			Job:       record.Job,
			Operator:  record.Operator,
			IP:        record.IP,
			Error:     record.Error,
			Timestamp: record.Timestamp,
		})
	}

	WriteJSON(w, http.StatusOK, failureListResponse{
		Failures: items,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	})
}

func parseListOptions(r *http.Request) (*model.FailureListOptions, error) {
	opts := &model.FailureListOptions{}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("limit must be an integer")
		}
		opts.Limit = limit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("offset must be an integer")
		}
		opts.Offset = offset
	}

	opts.Normalize()
	return opts, nil
}
