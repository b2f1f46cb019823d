package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/config"
	"fintrack/internal/engine"
	"fintrack/internal/logger"
	"fintrack/internal/testutil"
	"fintrack/internal/validator"
)

const pipelineKey = "test-pipeline-key"

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

type testApp struct {
	*App
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := &config.Config{PipelineAPIKey: pipelineKey, DefaultUSDRate: engine.DefaultUSDRate}
	return &testApp{New(cfg, db, engine.DefaultHealthConfig(), nil)}
}

func (app *testApp) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	h := map[string]string{}
	if token != "" {
		h["Authorization"] = "Bearer " + token
	}
	return app.do(method, path, body, h)
}

func (app *testApp) pipelineRequest(method, path, body string) *httptest.ResponseRecorder {
	return app.do(method, path, body, map[string]string{"X-API-Key": pipelineKey})
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// registerUser registers a user and returns the access and refresh tokens.
func (app *testApp) registerUser(t *testing.T, email string) (string, string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123","first_name":"Test","last_name":"User"}`, email)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	expectStatus(t, rec, http.StatusCreated)
	result := parseJSON(t, rec)
	return result["token"].(string), result["refresh_token"].(string)
}

// seedPortfolio creates a bank account and a brokerage account and pins the
// USD rate to 30. Total net worth is 100000 + 100*150 + 10*200*30 = 175000.
func (app *testApp) seedPortfolio(t *testing.T, token string) {
	t.Helper()
	rec := app.request("POST", "/api/v1/accounts",
		`{"name":"Bank","assets":[{"code":"TWD","account_type":"cash","current_value":100000}]}`, token)
	expectStatus(t, rec, http.StatusCreated)

	rec = app.request("POST", "/api/v1/accounts", `{"name":"Broker","assets":[
		{"code":"0050","account_type":"etf","units":100,"cost":100,"current_value":150},
		{"code":"AAPL","account_type":"stock","units":10,"cost":150,"current_value":200,"currency":"USD"}
	]}`, token)
	expectStatus(t, rec, http.StatusCreated)

	rec = app.request("PUT", "/api/v1/settings/rate", `{"rate":30}`, token)
	expectStatus(t, rec, http.StatusOK)
}

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)
	access, _ := app.registerUser(t, "flow@test.com")

	rec := app.request("POST", "/api/v1/auth/login", `{"email":"flow@test.com","password":"password123"}`, "")
	expectStatus(t, rec, http.StatusOK)

	rec = app.request("GET", "/api/v1/profile", "", access)
	expectStatus(t, rec, http.StatusOK)
	if parseJSON(t, rec)["user"].(map[string]any)["email"] != "flow@test.com" {
		t.Errorf("unexpected profile: %s", rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/auth/refresh", "", "")
	expectStatus(t, rec, http.StatusBadRequest)

	rec = app.request("GET", "/api/v1/profile", "", "")
	expectStatus(t, rec, http.StatusUnauthorized)

	// Login rotated the refresh token issued at registration.
	rec = app.request("POST", "/api/v1/auth/login", `{"email":"flow@test.com","password":"password123"}`, "")
	expectStatus(t, rec, http.StatusOK)
	latest := parseJSON(t, rec)["refresh_token"].(string)
	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, latest), "")
	expectStatus(t, rec, http.StatusOK)
}

func TestPortfolioFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "portfolio@test.com")
	app.seedPortfolio(t, token)

	rec := app.request("GET", "/api/v1/dashboard/summary", "", token)
	expectStatus(t, rec, http.StatusOK)
	view := parseJSON(t, rec)
	if view["usd_twd_rate"].(float64) != 30 {
		t.Errorf("expected rate 30, got %v", view["usd_twd_rate"])
	}
	summary := view["summary"].(map[string]any)
	if summary["total"].(float64) != 175000 {
		t.Errorf("expected total 175000, got %v", summary["total"])
	}
	if summary["total_foreign_in_local"].(float64) != 60000 {
		t.Errorf("expected foreign 60000, got %v", summary["total_foreign_in_local"])
	}

	rec = app.request("GET", "/api/v1/dashboard/pnl?sort=code&dir=asc", "", token)
	expectStatus(t, rec, http.StatusOK)
	pnl := parseJSON(t, rec)
	rows := pnl["rows"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(rows))
	}
	if rows[0].(map[string]any)["code"] != "0050" {
		t.Errorf("expected 0050 first, got %v", rows[0].(map[string]any)["code"])
	}
	if pnl["total_pnl"].(float64) != 20000 {
		t.Errorf("expected total_pnl 20000, got %v", pnl["total_pnl"])
	}
	if best := pnl["best_absolute"].(map[string]any); best["code"] != "AAPL" {
		t.Errorf("expected AAPL best performer, got %v", best["code"])
	}

	rec = app.request("GET", "/api/v1/dashboard/pnl", "", token)
	expectStatus(t, rec, http.StatusOK)
	rows = parseJSON(t, rec)["rows"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(rows))
	}
	first, second := rows[0].(map[string]any), rows[1].(map[string]any)
	if first["code"] != "AAPL" || second["code"] != "0050" {
		t.Errorf("default order: expected AAPL then 0050, got %v then %v", first["code"], second["code"])
	}
	if first["profit_loss_twd"].(float64) < second["profit_loss_twd"].(float64) {
		t.Errorf("default order is not pnl descending: %v < %v", first["profit_loss_twd"], second["profit_loss_twd"])
	}

	rec = app.request("GET", "/api/v1/dashboard/health", "", token)
	expectStatus(t, rec, http.StatusOK)
	score := parseJSON(t, rec)["score"].(float64)
	if score < 0 || score > 100 {
		t.Errorf("score out of range: %v", score)
	}

	rec = app.request("GET", "/api/v1/reports/dashboard?format=html", "", token)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "<table>") {
		t.Errorf("expected HTML table in report")
	}
}

func TestCashflowBudgetFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "cash@test.com")
	month := time.Now().Format("2006-01")
	day := month + "-01"

	for _, body := range []string{
		fmt.Sprintf(`{"date":%q,"type":"income","category":"Salary","amount":80000}`, day),
		fmt.Sprintf(`{"date":%q,"type":"expense","category":"Food","amount":12000}`, day),
	} {
		rec := app.request("POST", "/api/v1/cashflow", body, token)
		expectStatus(t, rec, http.StatusCreated)
	}

	rec := app.request("GET", "/api/v1/cashflow/summary?month="+month, "", token)
	expectStatus(t, rec, http.StatusOK)
	summary := parseJSON(t, rec)
	if summary["net"].(float64) != 68000 {
		t.Errorf("expected net 68000, got %v", summary["net"])
	}
	if summary["savings_rate"].(float64) != 85 {
		t.Errorf("expected savings rate 85, got %v", summary["savings_rate"])
	}

	rec = app.request("PUT", "/api/v1/budgets", fmt.Sprintf(`{"month":%q,"category":"Food","amount":10000}`, month), token)
	expectStatus(t, rec, http.StatusOK)

	rec = app.request("GET", "/api/v1/budgets/report?month="+month, "", token)
	expectStatus(t, rec, http.StatusOK)
	var food map[string]any
	for _, l := range parseJSON(t, rec)["lines"].([]any) {
		if line := l.(map[string]any); line["category"] == "Food" {
			food = line
		}
	}
	if food == nil {
		t.Fatal("Food line missing from budget report")
	}
	if food["overspent"] != true || food["spent"].(float64) != 12000 {
		t.Errorf("unexpected Food line: %v", food)
	}

	rec = app.request("GET", "/api/v1/cashflow?type=expense", "", token)
	expectStatus(t, rec, http.StatusOK)
	if parseJSON(t, rec)["total_items"].(float64) != 1 {
		t.Errorf("expected 1 expense record")
	}
}

func TestBackupRoundTrip(t *testing.T) {
	app := setupApp(t)
	source, _ := app.registerUser(t, "source@test.com")
	app.seedPortfolio(t, source)

	rec := app.request("GET", "/api/v1/export/backup", "", source)
	expectStatus(t, rec, http.StatusOK)
	backup := rec.Body.String()

	target, _ := app.registerUser(t, "target@test.com")
	rec = app.request("POST", "/api/v1/import/backup", backup, target)
	expectStatus(t, rec, http.StatusOK)
	if parseJSON(t, rec)["assets"].(float64) != 3 {
		t.Errorf("expected 3 assets imported: %s", rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/dashboard/summary", "", target)
	expectStatus(t, rec, http.StatusOK)
	if total := parseJSON(t, rec)["summary"].(map[string]any)["total"].(float64); total != 175000 {
		t.Errorf("expected imported total 175000, got %v", total)
	}

	rec = app.request("POST", "/api/v1/import/backup", `{"asset_accounts":"nope"}`, target)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestPipelineFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "pipeline@test.com")

	rec := app.request("POST", "/api/v1/pipeline/fx-rate", `{"rate":31,"source":"cron"}`, "")
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = app.pipelineRequest("POST", "/api/v1/pipeline/fx-rate", `{"rate":31,"source":"cron"}`)
	expectStatus(t, rec, http.StatusCreated)

	rec = app.request("GET", "/api/v1/fx/rate", "", token)
	expectStatus(t, rec, http.StatusOK)
	info := parseJSON(t, rec)
	if info["effective"].(float64) != 31 || info["source"] != "fetched" {
		t.Errorf("expected fetched rate 31, got %v", info)
	}

	rec = app.pipelineRequest("POST", "/api/v1/pipeline/fx-refresh", "")
	expectStatus(t, rec, http.StatusBadGateway)

	rec = app.request("POST", "/api/v1/accounts",
		`{"name":"Bank","assets":[{"code":"TWD","account_type":"cash","current_value":50000}]}`, token)
	expectStatus(t, rec, http.StatusCreated)

	now := time.Now().UTC()
	rec = app.pipelineRequest("POST", "/api/v1/pipeline/snapshots", fmt.Sprintf(`{"recorded_at":%q}`, now.Format(time.RFC3339)))
	expectStatus(t, rec, http.StatusOK)
	if parseJSON(t, rec)["snapshots_recorded"].(float64) != 1 {
		t.Errorf("expected 1 snapshot recorded")
	}

	from := now.AddDate(0, 0, -1).Format("2006-01-02")
	to := now.AddDate(0, 0, 1).Format("2006-01-02")
	rec = app.request("GET", "/api/v1/snapshots?from_date="+from+"&to_date="+to, "", token)
	expectStatus(t, rec, http.StatusOK)
	data := parseJSON(t, rec)["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(data))
	}
	if data[0].(map[string]any)["total_net_worth"].(float64) != 50000 {
		t.Errorf("unexpected snapshot: %v", data[0])
	}

	rec = app.request("GET", "/api/v1/snapshots/latest", "", token)
	expectStatus(t, rec, http.StatusOK)
}
