package endpoint

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestInfoReportsIdentityAndEnvironment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/info", Info("iam", "staging"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["service"] != "iam" {
		t.Errorf("service = %v, want iam", body["service"])
	}
	if body["environment"] != "staging" {
		t.Errorf("environment = %v, want staging", body["environment"])
	}
	if body["uptime"] == "" {
		t.Error("expected non-empty uptime")
	}
}
