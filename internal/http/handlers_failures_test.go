package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
	"github.com/marlinprotocol/oyster-watchdog/internal/mocks"
)

func newFailuresRouter(t *testing.T) (http.Handler, *mocks.MockFailureRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockFailureRepository(ctrl)
	return NewRouter(RouterServices{Failures: repo}), repo
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterServices{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListFailures(t *testing.T) {
	t.Parallel()

	records := []*model.FailureRecord{
		{
			ID:        2,
			Job:       "0xdef456",
			Operator:  "0x2222222222222222222222222222222222222222",
			IP:        "3.4.5.6",
			Error:     "instance reachability test failed",
			Timestamp: 1700000100,
		},
		{
			ID:        1,
			Job:       "0xabc123",
			Operator:  "0x2222222222222222222222222222222222222222",
			IP:        model.IPUnknown,
			Error:     "failed to resolve instance address",
			Timestamp: 1700000000,
		},
	}

	router, repo := newFailuresRouter(t)
	repo.EXPECT().
		List(gomock.Any(), model.FailureKindReachability, &model.FailureListOptions{Limit: 10, Offset: 0}).
		Return(records, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/failures/reachability?limit=10&offset=0", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Failures []map[string]any `json:"failures"`
		Limit    int              `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Failures, 2)
	assert.Equal(t, "0xdef456", resp.Failures[0]["job"])
	assert.Equal(t, "unknown", resp.Failures[1]["ip"])
	assert.Equal(t, 10, resp.Limit)
}

func TestListFailuresSelectsEndpointTable(t *testing.T) {
	t.Parallel()

	router, repo := newFailuresRouter(t)
	// Defaults applied when no pagination is supplied.
	repo.EXPECT().
		List(gomock.Any(), model.FailureKindEndpoint, &model.FailureListOptions{Limit: 50, Offset: 0}).
		Return(nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/failures/endpoint", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Failures []map[string]any `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Failures)
}

func TestListFailuresRejectsBadPagination(t *testing.T) {
	t.Parallel()

	router, _ := newFailuresRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/failures/reachability?limit=ten", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFailuresRepoError(t *testing.T) {
	t.Parallel()

	router, repo := newFailuresRouter(t)
	repo.EXPECT().
		List(gomock.Any(), model.FailureKindReachability, gomock.Any()).
		Return(nil, errors.New("db gone"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/failures/reachability", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
