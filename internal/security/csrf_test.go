package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func csrfHandler() http.Handler {
	return CSRF{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRFMiddlewareBlocksMissingToken(t *testing.T) {
	rr := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Contains(t, rr.Body.String(), "CSRF_FAILED")
}

func TestCSRFMiddlewareAllowsValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	req.Header.Set(DefaultCSRFHeader, "secure-token")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookie, Value: "secure-token"})
	rr := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestCSRFMiddlewareRejectsMismatch(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	req.Header.Set(DefaultCSRFHeader, "secure-token")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookie, Value: "other-token"})
	rr := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCSRFMiddlewareSkipsSafeMethods(t *testing.T) {
	rr := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/x", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}
