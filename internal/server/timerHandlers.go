package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"countdowntimer/internal/misc"
	"countdowntimer/internal/model"
)

func (s Server) timerList() http.HandlerFunc {
	type response struct {
		Timers []model.Timer `json:"timers"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getShopContext(r.Context())
		if err != nil {
			s.Logger.Errorf("timerList: Error getting shopContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		ts, err := s.DB.TimersFindByShop(r.Context(), sc.shop)
		if err != nil {
			s.Logger.Errorf("timerList: Error getting Timers for shop: %s, err: %v", sc.shop, err)
			s.writeError(w, "Failed to fetch timers", http.StatusInternalServerError)
			return
		}
		if ts == nil {
			ts = []model.Timer{}
		}
		s.writeJsonResponse(w, response{Timers: ts}, http.StatusOK)
	}
}

func (s Server) timerGetOne() http.HandlerFunc {
	type response struct {
		Timer model.Timer `json:"timer"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getShopContext(r.Context())
		if err != nil {
			s.Logger.Errorf("timerGetOne: Error getting shopContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		timerID := mux.Vars(r)["timerID"]
		t, err := s.DB.TimerFindOne(r.Context(), sc.shop, timerID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("timerGetOne: No Timer found with ID: %s for shop: %s, err: %v", timerID, sc.shop, err)
				s.writeError(w, "Timer not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("timerGetOne: Error finding Timer with ID: %s, err: %v", timerID, err)
			s.writeError(w, "Failed to fetch timer", http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Timer: t}, http.StatusOK)
	}
}

func (s Server) timerCreate() http.HandlerFunc {
	type request struct {
		Title           string                `json:"title" validate:"required"`
		Description     string                `json:"description" validate:"required"`
		StartDate       time.Time             `json:"startDate" validate:"required"`
		EndDate         time.Time             `json:"endDate" validate:"required"`
		IsActive        *bool                 `json:"isActive"`
		DisplayOptions  model.DisplayOptions  `json:"displayOptions"`
		UrgencySettings model.UrgencySettings `json:"urgencySettings"`
		TargetProducts  string                `json:"targetProducts" validate:"omitempty,oneof=all specific"`
		ProductIDs      []string              `json:"productIds"`
	}
	type response struct {
		Timer model.Timer `json:"timer"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getShopContext(r.Context())
		if err != nil {
			s.Logger.Errorf("timerCreate: Error getting shopContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// Seed schema defaults before decoding: fields absent from the body
		// keep them, fields present override them.
		req := request{
			DisplayOptions:  model.DefaultDisplayOptions(),
			UrgencySettings: model.DefaultUrgencySettings(),
			TargetProducts:  model.TargetAll,
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("timerCreate: Error decoding JSON, err: %v", err)
			s.writeError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		req.DisplayOptions.ApplyDefaults()
		req.UrgencySettings.ApplyDefaults()

		if err := validate.Struct(req); err != nil {
			s.Logger.Debugf("timerCreate: Validation failed, err: %v", err)
			s.writeValidationError(w, err)
			return
		}
		if !req.EndDate.After(req.StartDate) {
			s.Logger.Debugf("timerCreate: End date %s not after start date %s",
				req.EndDate.Format(time.RFC3339), req.StartDate.Format(time.RFC3339))
			s.writeError(w, "End date must be after start date", http.StatusBadRequest)
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}
		t := model.Timer{
			Shop:            sc.shop,
			Title:           req.Title,
			Description:     req.Description,
			StartDate:       req.StartDate.UTC(),
			EndDate:         req.EndDate.UTC(),
			IsActive:        isActive,
			DisplayOptions:  req.DisplayOptions,
			UrgencySettings: req.UrgencySettings,
			TargetProducts:  req.TargetProducts,
			ProductIDs:      req.ProductIDs,
		}
		t, err = s.DB.TimerInsert(r.Context(), t)
		if err != nil {
			s.Logger.Errorf("timerCreate: Error inserting Timer for shop: %s, err: %v", sc.shop, err)
			s.writeError(w, "Failed to create timer", http.StatusInternalServerError)
			return
		}
		s.Logger.Infof("timerCreate: Created Timer: %s, ID: %s for shop: %s",
			misc.StringLimit(t.Title, 45), t.ID.Hex(), sc.shop)
		s.writeJsonResponse(w, response{Timer: t}, http.StatusCreated)
	}
}

func (s Server) timerUpdate() http.HandlerFunc {
	type request struct {
		Title           *string                `json:"title" validate:"omitempty,min=1"`
		Description     *string                `json:"description" validate:"omitempty,min=1"`
		StartDate       *time.Time             `json:"startDate"`
		EndDate         *time.Time             `json:"endDate"`
		IsActive        *bool                  `json:"isActive"`
		DisplayOptions  *model.DisplayOptions  `json:"displayOptions"`
		UrgencySettings *model.UrgencySettings `json:"urgencySettings"`
		TargetProducts  *string                `json:"targetProducts" validate:"omitempty,oneof=all specific"`
		ProductIDs      *[]string              `json:"productIds"`
	}
	type response struct {
		Timer model.Timer `json:"timer"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getShopContext(r.Context())
		if err != nil {
			s.Logger.Errorf("timerUpdate: Error getting shopContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("timerUpdate: Error decoding JSON, err: %v", err)
			s.writeError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		// A patched sub-document replaces the stored one whole, so absent
		// sub-fields get the schema defaults, same as on create.
		if req.DisplayOptions != nil {
			req.DisplayOptions.ApplyDefaults()
		}
		if req.UrgencySettings != nil {
			req.UrgencySettings.ApplyDefaults()
		}

		if err := validate.Struct(req); err != nil {
			s.Logger.Debugf("timerUpdate: Validation failed, err: %v", err)
			s.writeValidationError(w, err)
			return
		}
		if req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate) {
			s.Logger.Debugf("timerUpdate: End date %s not after start date %s",
				req.EndDate.Format(time.RFC3339), req.StartDate.Format(time.RFC3339))
			s.writeError(w, "End date must be after start date", http.StatusBadRequest)
			return
		}

		fields := bson.M{}
		if req.Title != nil {
			fields["title"] = *req.Title
		}
		if req.Description != nil {
			fields["description"] = *req.Description
		}
		if req.StartDate != nil {
			fields["startDate"] = req.StartDate.UTC()
		}
		if req.EndDate != nil {
			fields["endDate"] = req.EndDate.UTC()
		}
		if req.IsActive != nil {
			fields["isActive"] = *req.IsActive
		}
		if req.DisplayOptions != nil {
			fields["displayOptions"] = *req.DisplayOptions
		}
		if req.UrgencySettings != nil {
			fields["urgencySettings"] = *req.UrgencySettings
		}
		if req.TargetProducts != nil {
			fields["targetProducts"] = *req.TargetProducts
		}
		if req.ProductIDs != nil {
			fields["productIds"] = *req.ProductIDs
		}

		timerID := mux.Vars(r)["timerID"]
		t, err := s.DB.TimerUpdate(r.Context(), sc.shop, timerID, fields)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("timerUpdate: No Timer found with ID: %s for shop: %s, err: %v", timerID, sc.shop, err)
				s.writeError(w, "Timer not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("timerUpdate: Error updating Timer with ID: %s, err: %v", timerID, err)
			s.writeError(w, "Failed to update timer", http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Timer: t}, http.StatusOK)
	}
}

func (s Server) timerDelete() http.HandlerFunc {
	type response struct {
		Message string `json:"message"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getShopContext(r.Context())
		if err != nil {
			s.Logger.Errorf("timerDelete: Error getting shopContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		timerID := mux.Vars(r)["timerID"]
		if err := s.DB.TimerDelete(r.Context(), sc.shop, timerID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("timerDelete: No Timer found with ID: %s for shop: %s, err: %v", timerID, sc.shop, err)
				s.writeError(w, "Timer not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("timerDelete: Error deleting Timer with ID: %s, err: %v", timerID, err)
			s.writeError(w, "Failed to delete timer", http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Message: "Timer deleted successfully"}, http.StatusOK)
	}
}

func (s Server) timerToggle() http.HandlerFunc {
	type response struct {
		Timer model.Timer `json:"timer"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getShopContext(r.Context())
		if err != nil {
			s.Logger.Errorf("timerToggle: Error getting shopContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		timerID := mux.Vars(r)["timerID"]
		t, err := s.DB.TimerFindOne(r.Context(), sc.shop, timerID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("timerToggle: No Timer found with ID: %s for shop: %s, err: %v", timerID, sc.shop, err)
				s.writeError(w, "Timer not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("timerToggle: Error finding Timer with ID: %s, err: %v", timerID, err)
			s.writeError(w, "Failed to toggle timer", http.StatusInternalServerError)
			return
		}

		t, err = s.DB.TimerUpdate(r.Context(), sc.shop, timerID, bson.M{"isActive": !t.IsActive})
		if err != nil {
			s.Logger.Errorf("timerToggle: Error updating Timer with ID: %s, err: %v", timerID, err)
			s.writeError(w, "Failed to toggle timer", http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Timer: t}, http.StatusOK)
	}
}

func (s Server) productList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getShopContext(r.Context())
		if err != nil {
			s.Logger.Errorf("productList: Error getting shopContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		ps, err := s.Client.ShopifyListProducts(r.Context(), sc.shop, sc.store.AccessToken)
		if err != nil {
			s.Logger.Errorf("productList: Error listing products for shop: %s, err: %v", sc.shop, err)
			s.writeError(w, "Failed to fetch products", http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, map[string]any{"products": ps}, http.StatusOK)
	}
}
