package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/grover/internal/usage"
)

func TestSessionHandler_Get(t *testing.T) {
	t.Parallel()

	state := testState()
	state.RecordUsage(
		usage.Entry{PromptTokens: 100, CompletionTokens: 50, Costs: usage.Costs{TotalCost: 0.5}},
		usage.Entry{PromptTokens: 10, CompletionTokens: 5, Costs: usage.Costs{TotalCost: 0.25}},
	)
	h := NewSessionHandler(&memorySessions{}, testLogger())

	rec := httptest.NewRecorder()
	h.Get(rec, newTestRequest(t, http.MethodGet, "/api/session", nil, nil, state))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[SessionResponse](t, rec)
	assert.Equal(t, 2, resp.Totals.Entries)
	assert.Equal(t, int64(110), resp.Totals.PromptTokens)
	assert.InDelta(t, 0.75, resp.Totals.TotalCost, 1e-9)
	assert.NotEmpty(t, resp.Options.CareAreas)
}

func TestSessionHandler_SetModel(t *testing.T) {
	t.Parallel()

	sessions := &memorySessions{}
	h := NewSessionHandler(sessions, testLogger())

	rec := httptest.NewRecorder()
	h.SetModel(rec, newTestRequest(t, http.MethodPut, "/api/session/model",
		map[string]string{"model": " gpt-4o "}, nil, testState()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gpt-4o", sessions.last(t).Model)
	assert.Equal(t, "gpt-4o", decodeBody[SessionResponse](t, rec).Model)
}

func TestSessionHandler_SetDebug(t *testing.T) {
	t.Parallel()

	t.Run("enables debug", func(t *testing.T) {
		t.Parallel()
		sessions := &memorySessions{}
		h := NewSessionHandler(sessions, testLogger())

		rec := httptest.NewRecorder()
		h.SetDebug(rec, newTestRequest(t, http.MethodPut, "/api/session/debug",
			map[string]bool{"debug": true}, nil, testState()))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, sessions.last(t).Debug)
	})

	t.Run("missing flag", func(t *testing.T) {
		t.Parallel()
		sessions := &memorySessions{}
		h := NewSessionHandler(sessions, testLogger())

		rec := httptest.NewRecorder()
		h.SetDebug(rec, newTestRequest(t, http.MethodPut, "/api/session/debug", `{}`, nil, testState()))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, sessions.saved)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		h := NewSessionHandler(&memorySessions{}, testLogger())

		rec := httptest.NewRecorder()
		h.SetDebug(rec, newTestRequest(t, http.MethodPut, "/api/session/debug", nil, nil, testState()))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Request body is required")
	})
}

func TestSessionHandler_ClearUsage(t *testing.T) {
	t.Parallel()

	state := testState()
	state.RecordUsage(usage.Entry{PromptTokens: 1})
	sessions := &memorySessions{}
	h := NewSessionHandler(sessions, testLogger())

	rec := httptest.NewRecorder()
	h.ClearUsage(rec, newTestRequest(t, http.MethodDelete, "/api/session/usage", nil, nil, state))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, sessions.last(t).Usage)
}

func TestNewSessionHandlerPanicsWithoutLogger(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewSessionHandler(&memorySessions{}, nil) })
}
