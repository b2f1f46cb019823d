package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func TestPipelineAuthMiddleware(t *testing.T) {
	const key = "pipeline-key"

	tests := []struct {
		name       string
		configured string
		sent       string
		wantStatus int
		wantCode   string
	}{
		{"matching key", key, key, http.StatusOK, ""},
		{"wrong key", key, "nope", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"no header", key, "", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"prefix only", key, "pipeline", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"endpoints disabled", "", "pipeline-key", http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED"},
		{"disabled and no header", "", "", http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			r := gin.New()
			r.Use(PipelineAuthMiddleware(tt.configured))
			r.POST("/pipeline/fx-rate", func(c *gin.Context) {
				reached = true
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/pipeline/fx-rate", http.NoBody)
			if tt.sent != "" {
				req.Header.Set("X-API-Key", tt.sent)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if reached != (tt.wantCode == "") {
				t.Errorf("handler reached = %v", reached)
			}
			if tt.wantCode == "" {
				return
			}
			errObj, _ := parseBody(t, rec)["error"].(map[string]interface{})
			if errObj["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", errObj["code"], tt.wantCode)
			}
		})
	}
}
