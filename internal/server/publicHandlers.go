package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"countdowntimer/internal/misc"
	"countdowntimer/internal/model"
)

// eligibilityCacheTTL bounds staleness of cached selections to keep the
// widget's one-second countdown cadence honest.
const eligibilityCacheTTL = time.Second

// publicTimer is the widget-facing projection of a Timer: no owning shop and
// no counters.
type publicTimer struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	StartDate       time.Time             `json:"startDate"`
	EndDate         time.Time             `json:"endDate"`
	IsActive        bool                  `json:"isActive"`
	DisplayOptions  model.DisplayOptions  `json:"displayOptions"`
	UrgencySettings model.UrgencySettings `json:"urgencySettings"`
	TargetProducts  string                `json:"targetProducts"`
	ProductIDs      []string              `json:"productIds"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

func toPublicTimer(t model.Timer) *publicTimer {
	return &publicTimer{
		ID:              t.ID.Hex(),
		Title:           t.Title,
		Description:     t.Description,
		StartDate:       t.StartDate,
		EndDate:         t.EndDate,
		IsActive:        t.IsActive,
		DisplayOptions:  t.DisplayOptions,
		UrgencySettings: t.UrgencySettings,
		TargetProducts:  t.TargetProducts,
		ProductIDs:      t.ProductIDs,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (s Server) timerActive() http.HandlerFunc {
	type response struct {
		Timer     *publicTimer `json:"timer"`
		Timestamp string       `json:"timestamp"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			s.Logger.Debug("timerActive: shop query parameter is not supplied")
			s.writeError(w, "Shop parameter required", http.StatusBadRequest)
			return
		}
		productID := r.URL.Query().Get("product_id")
		now := time.Now().UTC()

		cacheKey := "ATS-" + shop + "-" + productID
		if cached, ok := s.eligibilityCacheGet(r.Context(), cacheKey); ok {
			s.writeJsonResponse(w, response{
				Timer:     cached,
				Timestamp: now.Format(time.RFC3339),
			}, http.StatusOK)
			return
		}

		ts, err := s.DB.TimersFindRunning(r.Context(), shop, now)
		if err != nil {
			s.Logger.Errorf("timerActive: Error finding running Timers for shop: %s, err: %v", shop, err)
			s.writeError(w, "Failed to fetch active timers", http.StatusInternalServerError)
			return
		}

		selected := model.SelectActive(ts, productID, now)
		var pt *publicTimer
		if selected != nil {
			s.Logger.Debugf("timerActive: Returning Timer: %s, ID: %s for shop: %s, ends: %s",
				misc.StringLimit(selected.Title, 45), selected.ID.Hex(), shop,
				selected.EndDate.Format(time.RFC3339))
			// Best-effort telemetry: a failed increment must not fail the read.
			if err := s.DB.TimerIncrementViews(r.Context(), selected.ID); err != nil {
				s.Logger.Errorf("timerActive: Error incrementing views for Timer with ID: %s, err: %v",
					selected.ID.Hex(), err)
			}
			pt = toPublicTimer(*selected)
		} else {
			s.Logger.Debugf("timerActive: No matching active Timer for shop: %s, productID: %s", shop, productID)
		}

		s.eligibilityCacheSet(r.Context(), cacheKey, pt)
		s.writeJsonResponse(w, response{
			Timer:     pt,
			Timestamp: now.Format(time.RFC3339),
		}, http.StatusOK)
	}
}

func (s Server) eligibilityCacheGet(ctx context.Context, key string) (*publicTimer, bool) {
	if s.Redis == nil {
		return nil, false
	}
	cached, err := s.Redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.Logger.Errorf("eligibilityCacheGet: Error getting Redis cache with key: %s, err: %v", key, err)
		}
		return nil, false
	}
	if cached == "null" {
		return nil, true
	}
	var pt publicTimer
	if err = json.Unmarshal([]byte(cached), &pt); err != nil {
		s.Logger.Errorf("eligibilityCacheGet: Error unmarshalling cache, key: %s, err: %v", key, err)
		return nil, false
	}
	return &pt, true
}

func (s Server) eligibilityCacheSet(ctx context.Context, key string, pt *publicTimer) {
	if s.Redis == nil {
		return
	}
	cache := []byte("null")
	if pt != nil {
		var err error
		if cache, err = json.Marshal(pt); err != nil {
			s.Logger.Errorf("eligibilityCacheSet: Error marshalling cache, key: %s, err: %v", key, err)
			return
		}
	}
	if err := s.Redis.Set(ctx, key, cache, eligibilityCacheTTL).Err(); err != nil {
		s.Logger.Errorf("eligibilityCacheSet: Error setting Redis cache with key: %s, err: %v", key, err)
	}
}

func (s Server) timerClick() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		timerID := mux.Vars(r)["timerID"]
		// Unknown and malformed IDs are deliberately indistinguishable from
		// hits: the widget gets no signal about which timers exist.
		if err := s.DB.TimerIncrementClicks(r.Context(), timerID); err != nil {
			s.Logger.Debugf("timerClick: Error incrementing clicks for Timer with ID: %s, err: %v", timerID, err)
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}
