package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harambee/internal/jwttoken"
	"harambee/internal/message"
	msgsvc "harambee/internal/message/service"
	"harambee/internal/slot"
)

func newMessageRouter(t *testing.T) (chi.Router, *jwttoken.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwttoken.NewService("test-signing-key", "harambee", "harambee")

	slots := slot.NewMemory(2000)
	now := time.Now()
	require.NoError(t, slots.Create(t.Context(), &slot.Slot{
		ID:           "slot-1",
		OwnerID:      "villager-1",
		Name:         "Wanjiru Kamau",
		TargetAmount: decimal.NewFromInt(65000),
		Status:       slot.StatusAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	svc := msgsvc.New(message.NewMemory(), slots, logger)
	r := chi.NewRouter()
	New(svc, logger, tokens).Register(r)
	return r, tokens
}

func bearer(t *testing.T, tokens *jwttoken.Service, userID string) string {
	t.Helper()
	token, err := tokens.GenerateAccessToken(userID, "sponsor", "", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestMessageFlow(t *testing.T) {
	router, tokens := newMessageRouter(t)

	// Sponsor opens the thread.
	body, _ := json.Marshal(map[string]string{"slotId": "slot-1", "content": "Habari!"})
	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewReader(body))
	req.Header.Set("Authorization", bearer(t, tokens, "sponsor-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
	assert.Equal(t, "villager-1", sent["receiverId"])

	// The thread lists it, oldest first.
	req = httptest.NewRequest(http.MethodGet, "/messages/slot-1", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "villager-1"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var thread []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &thread))
	require.Len(t, thread, 1)
	assert.Equal(t, false, thread[0]["isRead"])

	// The receiver marks it read.
	req = httptest.NewRequest(http.MethodPut, "/messages/"+sent["id"].(string)+"/read", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "villager-1"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var read map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &read))
	assert.Equal(t, true, read["isRead"])
}

func TestMessageEndpointsRequireAuth(t *testing.T) {
	router, _ := newMessageRouter(t)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, "/messages"},
		{http.MethodGet, "/messages/slot-1"},
		{http.MethodPut, "/messages/m1/read"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSendToUnknownSlot(t *testing.T) {
	router, tokens := newMessageRouter(t)

	body, _ := json.Marshal(map[string]string{"slotId": "missing", "content": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewReader(body))
	req.Header.Set("Authorization", bearer(t, tokens, "sponsor-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
