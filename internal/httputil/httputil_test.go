package httputil

import (
	"go/parser"
	"go/token"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotRequest struct {
	Date string `json:"date" validate:"required,isodate"`
	Time string `json:"time" validate:"required,hhmm"`
}

func TestDecodeAndValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"date":"2026-03-02","time":"09:30"}`, false},
		{"bad date", `{"date":"03/02/2026","time":"09:30"}`, true},
		{"bad time", `{"date":"2026-03-02","time":"9:30am"}`, true},
		{"missing", `{"date":"2026-03-02"}`, true},
		{"not json", `date=2026-03-02`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var dst slotRequest
			err := DecodeAndValidate(req, v, &dst)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteJSONStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONStatus(rec, 201, map[string]string{"status": "created"})

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"created"}`, rec.Body.String())
}

func TestAddServerTiming(t *testing.T) {
	rec := httptest.NewRecorder()
	AddServerTiming(rec, map[string]time.Duration{"db": 1500 * time.Microsecond})
	AddServerTiming(rec, nil)

	vals := rec.Header().Values("Server-Timing")
	require.Len(t, vals, 1)
	assert.Equal(t, "db;dur=1.5", vals[0])
}

// httputil sits below every feature package, so it must not import any of
// them.
func TestNoInternalImports(t *testing.T) {
	entries, err := os.ReadDir(".")
	require.NoError(t, err)

	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		require.NoError(t, err)
		for _, imp := range f.Imports {
			assert.NotContains(t, imp.Path.Value, "coverage-backend/internal/", "%s imports %s", name, imp.Path.Value)
		}
	}
}
