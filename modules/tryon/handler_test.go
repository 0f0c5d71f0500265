package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	outcome *TryOnOutcome
	calls   int
	lastReq *TryOnRequest
}

func (e *stubEngine) Process(ctx context.Context, req *TryOnRequest) *TryOnOutcome {
	e.calls++
	e.lastReq = req
	return e.outcome
}

func postTryOn(h *Handler, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/try-on", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.HandleTryOn(rec, req)
	return rec
}

func TestHandleTryOnSuccessPayload(t *testing.T) {
	engine := &stubEngine{outcome: &TryOnOutcome{
		Success:          true,
		ResultImageURL:   "https://cdn.example.com/result.png",
		ProcessingTimeMs: 1234,
		ModelUsed:        ModelFast,
		RetryCount:       0,
	}}
	h := &Handler{engine: engine}

	rec := postTryOn(h, map[string]interface{}{
		"subjectImageUrl": "https://example.com/a.jpg",
		"garmentImageUrl": "https://example.com/g.jpg",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "https://cdn.example.com/result.png", resp["resultImageUrl"])
	assert.Equal(t, float64(1234), resp["processingTimeMs"])
	assert.Equal(t, ModelFast, resp["model"])
	assert.Equal(t, float64(0), resp["retryCount"])
}

func TestHandleTryOnMissingInputs(t *testing.T) {
	engine := &stubEngine{}
	h := &Handler{engine: engine}

	rec := postTryOn(h, map[string]interface{}{
		"subjectImageUrl": "https://example.com/a.jpg",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, engine.calls)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Avatar image and garment image are required", resp["error"])
}

func TestHandleTryOnLegacyAvatarAlias(t *testing.T) {
	engine := &stubEngine{outcome: &TryOnOutcome{Success: true}}
	h := &Handler{engine: engine}

	rec := postTryOn(h, map[string]interface{}{
		"avatarImageUrl":  "https://example.com/a.jpg",
		"garmentImageUrl": "https://example.com/g.jpg",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, engine.calls)
	assert.Equal(t, "https://example.com/a.jpg", engine.lastReq.Subject())
}

func TestHandleTryOnRateLimitedStatus(t *testing.T) {
	engine := &stubEngine{outcome: &TryOnOutcome{
		Success:     false,
		UserMessage: MsgRateLimited,
		RateLimited: true,
	}}
	h := &Handler{engine: engine}

	rec := postTryOn(h, map[string]interface{}{
		"subjectImageUrl": "https://example.com/a.jpg",
		"garmentImageUrl": "https://example.com/g.jpg",
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, MsgRateLimited, resp["error"])
}

func TestHandleTryOnGenericFailureStatus(t *testing.T) {
	engine := &stubEngine{outcome: &TryOnOutcome{
		Success:     false,
		UserMessage: MsgGeneric,
	}}
	h := &Handler{engine: engine}

	rec := postTryOn(h, map[string]interface{}{
		"subjectImageUrl": "https://example.com/a.jpg",
		"garmentImageUrl": "https://example.com/g.jpg",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTryOnOptionsPreflight(t *testing.T) {
	h := &Handler{engine: &stubEngine{}}
	req := httptest.NewRequest("OPTIONS", "/api/try-on", nil)
	rec := httptest.NewRecorder()
	h.HandleTryOn(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
