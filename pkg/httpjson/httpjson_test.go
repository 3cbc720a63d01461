package httpjson

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndError(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, http.StatusCreated, map[string]int{"n": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Error(rec, http.StatusUnsupportedMediaType, "formato não suportado")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.JSONEq(t, `{"error":"formato não suportado"}`, rec.Body.String())
}

func TestDecode(t *testing.T) {
	type payload struct {
		Categoria string `json:"categoria"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"categoria":"Lazer"}`, ""},
		{"empty", ``, "empty"},
		{"unknown field", `{"categoria":"Lazer","x":1}`, "unknown field"},
		{"trailing data", `{"categoria":"Lazer"}{}`, "trailing"},
		{"malformed", `{"categoria":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tt.body))
			var p payload
			err := Decode(req, &p)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Lazer", p.Categoria)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
