package security

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func echoBody(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		*captured = string(data)
		w.WriteHeader(http.StatusOK)
	})
}

func TestBodyLimitPassesSmallBodies(t *testing.T) {
	var captured string
	rr := httptest.NewRecorder()
	BodyLimit{Max: 64}.Middleware(echoBody(&captured)).ServeHTTP(rr,
		httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{"type":"click"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, `{"type":"click"}`, captured)
}

func TestBodyLimitRejectsOversizedStream(t *testing.T) {
	var captured string
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(strings.Repeat("x", 100)))
	req.ContentLength = -1
	rr := httptest.NewRecorder()
	BodyLimit{Max: 10}.Middleware(echoBody(&captured)).ServeHTTP(rr, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	require.Contains(t, rr.Body.String(), "PAYLOAD_TOO_LARGE")
	require.Empty(t, captured)
}

func TestBodyLimitRejectsDeclaredLength(t *testing.T) {
	var captured string
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader("tiny"))
	req.ContentLength = 1 << 20
	rr := httptest.NewRecorder()
	BodyLimit{Max: 10}.Middleware(echoBody(&captured)).ServeHTTP(rr, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
