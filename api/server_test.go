package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"divnest/adapters/randomizer"
	"divnest/app"
	"divnest/domain/community"
	"divnest/domain/diversity"
	"divnest/domain/randtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *App {
	service := app.NewPermutationService(
		diversity.NewRaoProvider(),
		community.NestingValidator{},
		randomizer.NewSeededRNG(),
		nil,
		2,
	)
	return NewApp(service, nil)
}

func postTest(t *testing.T, a *App, body TestRequestBody) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/tests", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleRunTest_IdenticalSites(t *testing.T) {
	a := newTestApp()
	rec := postTest(t, a, TestRequestBody{
		Sites:       []string{"s1", "s2", "s3", "s4", "s5"},
		Species:     []string{"sp1", "sp2", "sp3"},
		Counts:      [][]float64{{1, 2, 3}, {1, 2, 3}, {1, 2, 3}, {1, 2, 3}, {1, 2, 3}},
		Level:       1,
		Repetitions: 99,
		Alternative: "greater",
		Seed:        42,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result randtest.TestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1.0, result.PValue)
	assert.Len(t, result.Simulated, 99)
}

func TestHandleRunTest_InvalidLevelIsBadRequest(t *testing.T) {
	a := newTestApp()
	structure := &struct {
		Levels      []string   `json:"levels"`
		Assignments [][]string `json:"assignments"`
	}{
		Levels:      []string{"group"},
		Assignments: [][]string{{"A"}, {"B"}},
	}
	rec := postTest(t, a, TestRequestBody{
		Sites:       []string{"s1", "s2"},
		Species:     []string{"sp1"},
		Counts:      [][]float64{{1}, {2}},
		Structure:   structure,
		Level:       5,
		Repetitions: 9,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRunTest_MalformedJSON(t *testing.T) {
	a := newTestApp()
	req := httptest.NewRequest(http.MethodPost, "/api/tests", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetResult_NoStoreConfigured(t *testing.T) {
	a := newTestApp()
	req := httptest.NewRequest(http.MethodGet, "/api/tests/some-id", nil)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	a := newTestApp()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
