package coverage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverageRoutes(t *testing.T) {
	z := &fakeZcta{validation: dallas()}
	db := &fakeDB{info: Info{HasServiceCoverage: true, WorkerCount: 3}}
	rc, _ := newTestReconciler(z, db)
	srv := httptest.NewServer(SetupRoutes(rc, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/75201")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Server-Timing"), "coverage;dur=")

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["hasServiceCoverage"])
	assert.Equal(t, float64(3), body["workerCount"])
	assert.Equal(t, "both", body["coverageSource"])
	assert.Contains(t, body, "_timestamp")
	assert.Contains(t, body, "zctaData")

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/cache/75201", nil)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/cache/bad", nil)
	resp3, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/cache", nil)
	resp4, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp4.Body.Close()
	assert.Equal(t, http.StatusOK, resp4.StatusCode)

	resp5, err := http.Get(srv.URL + "/75201")
	require.NoError(t, err)
	resp5.Body.Close()
	assert.Equal(t, 2, db.Calls())
}

func TestCoverageRoutes_AdminGuard(t *testing.T) {
	rc, _ := newTestReconciler(&fakeZcta{}, &fakeDB{})
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Forbidden: admin access required", http.StatusForbidden)
		})
	}
	h := SetupRoutes(rc, deny)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cache", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/75201", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
