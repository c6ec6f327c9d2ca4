package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func post(t *testing.T, handler http.Handler, body interface{}) (*httptest.ResponseRecorder, EvaluateResponse) {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/evaluate", bytes.NewReader(encoded))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	var resp EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestEvaluateEndpoint(t *testing.T) {
	h := NewHandler(zap.NewNop(), DefaultLimits())

	rec, resp := post(t, h, EvaluateRequest{
		Expression: "a.b",
		Input:      json.RawMessage(`{"a":{"b":42}}`),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, resp.Error)
	assert.Equal(t, "42", string(resp.Result))
}

func TestEvaluateWithBindings(t *testing.T) {
	h := NewHandler(zap.NewNop(), DefaultLimits())

	rec, resp := post(t, h, EvaluateRequest{
		Expression: "$a + $b",
		Bindings:   map[string]interface{}{"a": 1, "b": 2},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, resp.Error)
	assert.Equal(t, "3", string(resp.Result))
}

func TestEvaluateParseError(t *testing.T) {
	h := NewHandler(zap.NewNop(), DefaultLimits())

	rec, resp := post(t, h, EvaluateRequest{Expression: "a.."})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Regexp(t, "^S", resp.Error.Code)
}

func TestEvaluateRuntimeError(t *testing.T) {
	h := NewHandler(zap.NewNop(), DefaultLimits())

	rec, resp := post(t, h, EvaluateRequest{Expression: `$error("boom")`})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "D3137", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "boom")
}

func TestEvaluateMissingExpression(t *testing.T) {
	h := NewHandler(zap.NewNop(), DefaultLimits())

	rec, resp := post(t, h, EvaluateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
}

func TestEvaluateNoResult(t *testing.T) {
	h := NewHandler(zap.NewNop(), DefaultLimits())

	rec, resp := post(t, h, EvaluateRequest{
		Expression: "missing",
		Input:      json.RawMessage(`{"a":1}`),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", string(resp.Result))
}

func TestHealthEndpoint(t *testing.T) {
	h := NewHandler(zap.NewNop(), DefaultLimits())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
