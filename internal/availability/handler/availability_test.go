package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"groundbook/pkg/logger"
	"groundbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockAvailabilityService struct {
	resolve func(ctx context.Context, ground model.GroundType, date time.Time) (map[string]model.SlotState, error)
}

func (m *mockAvailabilityService) ResolveSlotStates(ctx context.Context, ground model.GroundType, date time.Time) (map[string]model.SlotState, error) {
	return m.resolve(ctx, ground, date)
}

func newTestRouter(svc *mockAvailabilityService) *httprouter.Router {
	router := httprouter.New()
	NewAvailabilityHandler(svc, logger.NewNop()).RegisterRoutes(router)
	return router
}

func TestGetAvailability(t *testing.T) {
	svc := &mockAvailabilityService{
		resolve: func(_ context.Context, ground model.GroundType, date time.Time) (map[string]model.SlotState, error) {
			if ground != model.GroundFootball {
				t.Errorf("ground = %q", ground)
			}
			if model.CivilDate(date) != "2024-06-10" {
				t.Errorf("date = %q", model.CivilDate(date))
			}
			return map[string]model.SlotState{
				"07:00 AM - 10:00 AM": model.SlotBooked,
				"10:00 AM - 01:00 PM": model.SlotPending,
				"02:00 PM - 05:00 PM": model.SlotAvailable,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?ground=football&date=2024-06-10", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data AvailabilityResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Data.GroundType != model.GroundFootball || resp.Data.Date != "2024-06-10" {
		t.Errorf("unexpected envelope: %+v", resp.Data)
	}
	if resp.Data.Slots["07:00 AM - 10:00 AM"] != model.SlotBooked {
		t.Errorf("unexpected slots: %v", resp.Data.Slots)
	}
}

func TestGetAvailabilityRejectsBadGround(t *testing.T) {
	svc := &mockAvailabilityService{
		resolve: func(context.Context, model.GroundType, time.Time) (map[string]model.SlotState, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	for _, target := range []string{
		"/api/v1/availability?ground=tennis&date=2024-06-10",
		"/api/v1/availability?date=2024-06-10",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestGetAvailabilityRejectsBadDate(t *testing.T) {
	svc := &mockAvailabilityService{
		resolve: func(context.Context, model.GroundType, time.Time) (map[string]model.SlotState, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	for _, target := range []string{
		"/api/v1/availability?ground=cricket",
		"/api/v1/availability?ground=cricket&date=10-06-2024",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}
