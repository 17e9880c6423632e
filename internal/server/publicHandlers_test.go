package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"countdowntimer/internal/model"
)

func TestTimerActiveRequiresShop(t *testing.T) {
	s := testServer()
	w := httptest.NewRecorder()

	s.timerActive()(w, httptest.NewRequest(http.MethodGet, "/api/public/timers/active", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Shop parameter required", decodeError(t, w).Error)
}

func TestTimerClickSilentlyAcceptsUnknownID(t *testing.T) {
	s := testServer()
	w := httptest.NewRecorder()

	// Malformed IDs never reach the store and still report success, so the
	// endpoint leaks nothing about which timers exist.
	r := httptest.NewRequest(http.MethodPost, "/api/public/timers/not-a-hex-id/click", nil)
	r = mux.SetURLVars(r, map[string]string{"timerID": "not-a-hex-id"})
	s.timerClick()(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
}

func TestPublicTimerOmitsInternalFields(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tm := model.Timer{
		ID:              primitive.NewObjectID(),
		Shop:            "s1.myshopify.com",
		Title:           "Flash sale",
		Description:     "Ends soon",
		StartDate:       now.Add(-time.Hour),
		EndDate:         now.Add(time.Hour),
		IsActive:        true,
		DisplayOptions:  model.DefaultDisplayOptions(),
		UrgencySettings: model.DefaultUrgencySettings(),
		TargetProducts:  model.TargetAll,
		Views:           12,
		Clicks:          3,
		CreatedAt:       now.Add(-2 * time.Hour),
		UpdatedAt:       now.Add(-2 * time.Hour),
	}

	raw, err := json.Marshal(toPublicTimer(tm))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "shop")
	assert.NotContains(t, fields, "views")
	assert.NotContains(t, fields, "clicks")
	assert.Equal(t, tm.ID.Hex(), fields["id"])
	assert.Contains(t, fields, "endDate")
	assert.Contains(t, fields, "displayOptions")
	assert.Contains(t, fields, "urgencySettings")
}

func TestCorsMwAnswersPreflight(t *testing.T) {
	s := testServer()
	called := false
	h := s.corsMw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/public/timers/active", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, called)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/public/timers/active", nil))
	assert.True(t, called)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
