package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/domain/schedule"
	"github.com/riskibarqy/whereismatch/internal/infrastructure/selectionstore/memory"
	"github.com/riskibarqy/whereismatch/internal/platform/cache"
	"github.com/riskibarqy/whereismatch/internal/platform/logging"
	"github.com/riskibarqy/whereismatch/internal/platform/params"
	"github.com/riskibarqy/whereismatch/internal/usecase"
)

type fakeSource struct{}

func (fakeSource) ListSports(context.Context) ([]catalog.Item, error) {
	return []catalog.Item{{ID: 1, Name: "Football"}, {ID: 2, Name: "Tennis"}}, nil
}

func (fakeSource) ListCountries(context.Context) ([]catalog.Item, error) {
	return []catalog.Item{{ID: 10, Name: "England"}, {ID: 11, Name: "Spain"}}, nil
}

func (fakeSource) ListCompetitions(context.Context, params.Params) ([]catalog.Item, error) {
	return []catalog.Item{{ID: 8, Name: "Premier League"}}, nil
}

func (fakeSource) ListBroadcasters(context.Context) ([]catalog.Item, error) {
	return []catalog.Item{{ID: 3, Name: "Sky Sports"}}, nil
}

func (fakeSource) ListMatches(_ context.Context, query params.Params) ([]schedule.Match, error) {
	value, _ := query.Get("start_date")
	date, _ := value.(string)
	return []schedule.Match{{Date: date, HomeTeam: &schedule.Team{Name: "Arsenal"}}}, nil
}

type stateEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       *stateDTO        `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

type filterEnvelope struct {
	Data  *filterDTO       `json:"data"`
	Error *googleErrorBody `json:"error"`
}

type testServer struct {
	router http.Handler
	store  *memory.Store
	orch   *usecase.FilterOrchestrator
}

func newTestServer(t *testing.T, source catalog.Source, configErr error) testServer {
	t.Helper()

	qc, err := cache.NewQueryCache[[]schedule.Match](cache.DefaultQueryCacheCapacity, nil)
	require.NoError(t, err)
	store := memory.NewStore()
	orch, err := usecase.NewFilterOrchestrator(usecase.OrchestratorConfig{
		Source:    source,
		Store:     store,
		Cursor:    schedule.NewDateCursor(time.UTC, "2024-03-10"),
		Matches:   cache.NewCoalescer(qc, nil),
		ConfigErr: configErr,
		Logger:    logging.NewNop(),
	})
	require.NoError(t, err)
	if configErr == nil {
		require.NoError(t, orch.Init(context.Background()))
	}

	handler := NewHandler(orch, logging.NewNop())
	return testServer{
		router: NewRouter(handler, logging.NewNop(), []string{"*"}),
		store:  store,
		orch:   orch,
	}
}

func (s testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateEnvelope {
	t.Helper()

	var out stateEnvelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHandler_Healthz(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	rec := srv.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandler_GetState(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	rec := srv.do(t, http.MethodGet, "/v1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeState(t, rec)
	require.NotNil(t, body.Data)
	assert.Equal(t, "2.0", body.APIVersion)
	assert.Equal(t, "2024-03-10", body.Data.Date)
	assert.Equal(t, "Matches for Sunday, Mar 10, 2024", body.Data.Banner)
	assert.Equal(t, "Showing 1 match(es).", body.Data.Status)
	require.Len(t, body.Data.Matches, 1)
	assert.Equal(t, []int64{1, 2}, body.Data.Selections["sports"])
	assert.Equal(t, []int64{}, body.Data.Selections["countries"])
}

func TestHandler_ToggleFilterPersists(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	rec := srv.do(t, http.MethodPost, "/v1/filters/countries/toggle", `{"id":10}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeState(t, rec)
	assert.Equal(t, []int64{10}, body.Data.Selections["countries"])
	assert.Equal(t, []int64{10}, srv.store.Load(context.Background(), catalog.DimensionCountries))

	rec = srv.do(t, http.MethodPost, "/v1/filters/countries/toggle", `{"id":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeState(t, rec).Data.Selections["countries"])
}

func TestHandler_ToggleFilterRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "unknown dimension", path: "/v1/filters/venues/toggle", body: `{"id":1}`},
		{name: "unknown field", path: "/v1/filters/sports/toggle", body: `{"id":1,"name":"Football"}`},
		{name: "missing id", path: "/v1/filters/sports/toggle", body: `{}`},
		{name: "malformed", path: "/v1/filters/sports/toggle", body: `{"id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decodeState(t, rec)
			require.NotNil(t, body.Error)
			assert.Equal(t, "INVALID_ARGUMENT", body.Error.Status)
		})
	}
}

func TestHandler_CommitSearch(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	rec := srv.do(t, http.MethodPost, "/v1/filters/countries/commit", `{"search":"eng"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []int64{10}, decodeState(t, rec).Data.Selections["countries"])

	// Committing the same option again keeps it selected.
	rec = srv.do(t, http.MethodPost, "/v1/filters/countries/commit", `{"search":"England"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{10}, decodeState(t, rec).Data.Selections["countries"])

	rec = srv.do(t, http.MethodPost, "/v1/filters/countries/commit", `{"search":"n"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ClearFilter(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	rec := srv.do(t, http.MethodDelete, "/v1/filters/sports", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decodeState(t, rec).Data.Selections["sports"])
	assert.Empty(t, srv.store.Load(context.Background(), catalog.DimensionSports))
}

func TestHandler_ListFilterOptions(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/v1/filters/countries/toggle", `{"id":11}`).Code)

	rec := srv.do(t, http.MethodGet, "/v1/filters/Countries?search=SP", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body filterEnvelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, "countries", body.Data.Dimension)
	assert.Equal(t, "Countries", body.Data.Title)
	assert.Equal(t, []filterOptionDTO{{ID: 11, Name: "Spain", Selected: true}}, body.Data.Options)

	rec = srv.do(t, http.MethodGet, "/v1/filters/countries?search=zzz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = filterEnvelope{}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Data.Options)
}

func TestHandler_SetDate(t *testing.T) {
	srv := newTestServer(t, fakeSource{}, nil)

	rec := srv.do(t, http.MethodPost, "/v1/date", `{"shift":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeState(t, rec)
	assert.Equal(t, "2024-03-11", body.Data.Date)
	require.Len(t, body.Data.Matches, 1)
	assert.Equal(t, "2024-03-11", body.Data.Matches[0].Date)

	rec = srv.do(t, http.MethodPost, "/v1/date", `{"date":"2024-04-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-04-01", decodeState(t, rec).Data.Date)

	for _, payload := range []string{`{}`, `{"date":"2024-04-01","shift":1}`, `{"shift":2}`} {
		rec = srv.do(t, http.MethodPost, "/v1/date", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}
}

func TestHandler_ReloadWithoutConfiguration(t *testing.T) {
	srv := newTestServer(t, nil, crerr.Mark(crerr.New("API_URL and API_KEY are required"), usecase.ErrConfiguration))

	rec := srv.do(t, http.MethodPost, "/v1/reload", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeState(t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, usecase.ConfigurationStatus, body.Error.Message)
	assert.Equal(t, usecase.ConfigurationStatus, srv.orch.Snapshot().Status)
}

func TestRouter_RecoversPanic(t *testing.T) {
	router := NewRouter(NewHandler(nil, logging.NewNop()), logging.NewNop(), []string{"*"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/state", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"INTERNAL"`)
}
