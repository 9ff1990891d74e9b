package common_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storefront-cart/internal/common"
)

func TestWriteAppErrorRendersDetails(t *testing.T) {
	base := common.BadRequest("VALIDATION_ERROR", "bad seed")
	err := base.WithDetails([]string{"tax"})
	require.Nil(t, base.Details)

	rr := httptest.NewRecorder()
	require.True(t, common.WriteAppError(rr, err))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"error":{"code":"VALIDATION_ERROR","message":"bad seed","details":["tax"]}}`, rr.Body.String())
}

func TestWriteAppErrorIgnoresPlainErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	require.False(t, common.WriteAppError(rr, errors.New("boom")))
	require.Zero(t, rr.Body.Len())
}

func TestNotFoundUnwraps(t *testing.T) {
	cause := errors.New("gone")
	err := common.NotFound("missing", cause)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "missing: gone", err.Error())
	require.Equal(t, http.StatusNotFound, err.HTTPStatus)
}
