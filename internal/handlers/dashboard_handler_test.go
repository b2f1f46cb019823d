package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/engine"
	"fintrack/internal/services"
)

// --- mock dashboard service ---

type mockDashboardService struct {
	getDashboardFn    func(userID string, now time.Time) (*engine.Dashboard, error)
	getPNLFn          func(userID string, key engine.PNLSortKey, dir engine.SortDirection) (*engine.PNLReport, error)
	getGoalProgressFn func(userID string, now time.Time) ([]engine.GoalProgress, error)
}

func (m *mockDashboardService) GetDashboard(userID string, now time.Time) (*engine.Dashboard, error) {
	if m.getDashboardFn != nil {
		return m.getDashboardFn(userID, now)
	}
	return &engine.Dashboard{}, nil
}

func (m *mockDashboardService) GetSummary(string) (*services.SummaryView, error) {
	return &services.SummaryView{Rate: 32, Summary: engine.Summary{}}, nil
}

func (m *mockDashboardService) GetHealth(string) (*engine.HealthScore, error) {
	return &engine.HealthScore{Score: 85, Level: engine.LevelGood, Feedback: []string{"ok"}}, nil
}

func (m *mockDashboardService) GetPNL(userID string, key engine.PNLSortKey, dir engine.SortDirection) (*engine.PNLReport, error) {
	if m.getPNLFn != nil {
		return m.getPNLFn(userID, key, dir)
	}
	return &engine.PNLReport{}, nil
}

func (m *mockDashboardService) GetGoalProgress(userID string, now time.Time) ([]engine.GoalProgress, error) {
	if m.getGoalProgressFn != nil {
		return m.getGoalProgressFn(userID, now)
	}
	return []engine.GoalProgress{}, nil
}

var _ services.DashboardServicer = (*mockDashboardService)(nil)

var dashboardNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func setupDashboardRouter(handler *DashboardHandler) *gin.Engine {
	handler.now = func() time.Time { return dashboardNow }
	r := gin.New()
	r.Use(injectUserID(testUserID))
	r.GET("/dashboard", handler.GetDashboard)
	r.GET("/dashboard/summary", handler.GetSummary)
	r.GET("/dashboard/health", handler.GetHealth)
	r.GET("/dashboard/pnl", handler.GetPNL)
	r.GET("/dashboard/goals", handler.GetGoalProgress)
	return r
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	svc := &mockDashboardService{
		getDashboardFn: func(_ string, now time.Time) (*engine.Dashboard, error) {
			if !now.Equal(dashboardNow) {
				t.Errorf("expected injected clock, got %v", now)
			}
			return &engine.Dashboard{Rate: 31, Month: engine.MonthSummary{Month: "2025-06"}}, nil
		},
	}
	r := setupDashboardRouter(NewDashboardHandler(svc))

	rec := doRequest(r, "GET", "/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	if result["usd_twd_rate"] != float64(31) {
		t.Errorf("expected rate 31, got %v", result["usd_twd_rate"])
	}
}

func TestDashboardHandler_SummaryAndHealth(t *testing.T) {
	r := setupDashboardRouter(NewDashboardHandler(&mockDashboardService{}))

	rec := doRequest(r, "GET", "/dashboard/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(r, "GET", "/dashboard/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if parseJSON(t, rec)["score"] != float64(85) {
		t.Error("expected score 85")
	}
}

func TestDashboardHandler_GetPNL(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantKey    engine.PNLSortKey
		wantDir    engine.SortDirection
	}{
		{"defaults to pnl desc", "", http.StatusOK, engine.SortByProfitLoss, engine.SortDesc},
		{"by percentage asc", "?sort=pnl_percentage&dir=asc", http.StatusOK, engine.SortByPNLPercentage, engine.SortAsc},
		{"by code default dir", "?sort=code", http.StatusOK, engine.SortByCode, engine.SortDesc},
		{"unknown column", "?sort=volume", http.StatusBadRequest, "", ""},
		{"bad direction", "?sort=code&dir=up", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotKey engine.PNLSortKey
			var gotDir engine.SortDirection
			svc := &mockDashboardService{
				getPNLFn: func(_ string, key engine.PNLSortKey, dir engine.SortDirection) (*engine.PNLReport, error) {
					gotKey, gotDir = key, dir
					return &engine.PNLReport{}, nil
				},
			}
			r := setupDashboardRouter(NewDashboardHandler(svc))

			rec := doRequest(r, "GET", "/dashboard/pnl"+tt.query, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus != http.StatusOK {
				assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
				return
			}
			if gotKey != tt.wantKey || gotDir != tt.wantDir {
				t.Errorf("expected %s/%s, got %s/%s", tt.wantKey, tt.wantDir, gotKey, gotDir)
			}
		})
	}
}

func TestDashboardHandler_GetGoalProgress(t *testing.T) {
	svc := &mockDashboardService{
		getGoalProgressFn: func(string, time.Time) ([]engine.GoalProgress, error) {
			return []engine.GoalProgress{{GoalID: testGoalID, Name: "House", Progress: 42}}, nil
		},
	}
	r := setupDashboardRouter(NewDashboardHandler(svc))

	rec := doRequest(r, "GET", "/dashboard/goals", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	goals := parseJSON(t, rec)["goals"].([]interface{})
	if len(goals) != 1 || goals[0].(map[string]interface{})["progress"] != float64(42) {
		t.Errorf("unexpected goals %v", goals)
	}
}
