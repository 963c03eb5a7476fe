package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/apperr"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestMessageMergesPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	Message(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, "User register successfully",
		Fields{"userId": "u1", "message": "ignored"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	body := decode(t, rr)
	assert.Equal(t, "User register successfully", body["message"])
	assert.Equal(t, "u1", body["userId"])
}

func TestErrorUsesKindStatusAndData(t *testing.T) {
	rr := httptest.NewRecorder()
	err := apperr.Validation([]apperr.FieldError{{Field: "email", Message: "Please enter a valid email", Value: "x"}})
	Error(rr, httptest.NewRequest(http.MethodPost, "/auth/register", nil), err)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, apperr.MsgValidationFailed, body["message"])
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 1)
}

func TestErrorHidesUntypedFailures(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, apperr.MsgInternal, body["message"])
	_, hasData := body["data"]
	assert.False(t, hasData)
}
