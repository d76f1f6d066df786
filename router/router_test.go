package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vanta-agent-backend/config"

	"github.com/gin-gonic/gin"
)

func TestRegister_HealthAndProviders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.Cfg = &config.Config{}
	t.Cleanup(func() { config.Cfg = nil })

	r := Register()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("healthz: code = %d, body = %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/providers", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("providers: code = %d", w.Code)
	}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Providers map[string][]string `json:"providers"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	for _, p := range []string{"OPENAI", "GEMINI", "GROQ", "OPENROUTER"} {
		if len(resp.Data.Providers[p]) == 0 {
			t.Errorf("provider %s has no models", p)
		}
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route: code = %d", w.Code)
	}
}

func TestChatRoute_RejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.Cfg = &config.Config{}
	t.Cleanup(func() { config.Cfg = nil })

	r := Register()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", w.Code)
	}
}
