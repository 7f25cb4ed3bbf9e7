package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/iam/authn"
	"github.com/skillsenselab/iam/logger"
	"github.com/skillsenselab/iam/service"
	"github.com/skillsenselab/iam/snowflake"
	"github.com/skillsenselab/iam/store"
	"github.com/skillsenselab/iam/vault"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewDefault("test")

	s, err := store.Open(store.Config{
		DSN:         fmt.Sprintf("file:api_%s?mode=memory&cache=shared", t.Name()),
		AutoMigrate: true,
		LogLevel:    "silent",
	}, log)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ids, err := snowflake.New(snowflake.Config{NodeID: 1})
	if err != nil {
		t.Fatalf("snowflake.New: %v", err)
	}
	v, err := vault.New(vault.Config{BcryptCost: 4}, log)
	if err != nil {
		t.Fatalf("vault.New: %v", err)
	}
	provider, err := authn.New(authn.Config{Provider: authn.ProviderInternal}, log)
	if err != nil {
		t.Fatalf("authn.New: %v", err)
	}

	h := NewHandler(
		provider,
		service.NewUsers(s, ids, v, log),
		service.NewClients(s, ids, v, log),
		service.NewNotifications(s, ids, log),
		log,
	)

	engine := gin.New()
	h.RegisterRoutes(engine)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return envelope.Data
}

func TestLoginWithInternalProvider(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/auth/login", gin.H{
		"username": "alice",
		"password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["access_token"] == "" {
		t.Error("expected access token in response")
	}
	if data["refresh_token"] == "" {
		t.Error("expected refresh token in response")
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/auth/login", gin.H{"username": "alice"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "INVALID_INPUT" {
		t.Errorf("error code = %q, want INVALID_INPUT", envelope.Error.Code)
	}
}

func TestRegisterWithProvider(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct-horse-battery",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestUserLifecycle(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/users", gin.H{
		"username":   "alice",
		"email":      "alice@example.com",
		"password":   "correct-horse-battery",
		"first_name": "Alice",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decodeData(t, w)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("expected string id, got %v", created["id"])
	}
	if _, leaked := created["password_hash"]; leaked {
		t.Fatal("password hash leaked in response")
	}

	t.Run("get by id", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/users/"+id, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if decodeData(t, w)["username"] != "alice" {
			t.Error("unexpected user payload")
		}
	})

	t.Run("find by email", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/users?email=alice@example.com", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("find without query is rejected", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/users", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/users", gin.H{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "correct-horse-battery",
		})
		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})

	t.Run("disable", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPut, "/api/users/"+id+"/status", gin.H{"disabled": true})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if decodeData(t, w)["disabled"] != true {
			t.Error("expected disabled user")
		}
	})

	t.Run("change password", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPut, "/api/users/"+id+"/password", gin.H{
			"old_password":         "correct-horse-battery",
			"new_password":         "new-password-123",
			"reenter_new_password": "new-password-123",
		})
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204, body = %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/users/999999", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/users/abc", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestClientLifecycle(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/clients", gin.H{"name": "billing-service"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decodeData(t, w)
	clientID, _ := created["client_id"].(string)
	secret, _ := created["secret"].(string)
	if clientID == "" || secret == "" {
		t.Fatalf("expected client_id and secret, got %v", created)
	}

	t.Run("validate good credentials", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/clients/validate", gin.H{
			"client_id": clientID,
			"secret":    secret,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if decodeData(t, w)["valid"] != true {
			t.Error("expected valid credentials")
		}
	})

	t.Run("validate unknown client", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/clients/validate", gin.H{
			"client_id": "no-such-client",
			"secret":    secret,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if decodeData(t, w)["valid"] != false {
			t.Error("expected invalid credentials")
		}
	})

	t.Run("get returns no secret material", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/clients/"+clientID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		data := decodeData(t, w)
		if _, leaked := data["secret"]; leaked {
			t.Error("secret leaked from get")
		}
		if _, leaked := data["secret_hash"]; leaked {
			t.Error("secret hash leaked from get")
		}
	})

	t.Run("rotate secret invalidates old one", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/clients/"+clientID+"/secret", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		rotated, _ := decodeData(t, w)["secret"].(string)
		if rotated == "" || rotated == secret {
			t.Fatal("expected a fresh secret")
		}

		w = doJSON(t, engine, http.MethodPost, "/api/clients/validate", gin.H{
			"client_id": clientID,
			"secret":    secret,
		})
		if decodeData(t, w)["valid"] != false {
			t.Error("old secret still validates")
		}
	})

	t.Run("unknown client get is 404", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/clients/no-such-client", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestNotificationRoutes(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/users", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct-horse-battery",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create user: %d", w.Code)
	}
	id, _ := decodeData(t, w)["id"].(string)

	w = doJSON(t, engine, http.MethodPut, "/api/users/"+id+"/notifications", gin.H{
		"channel": "email",
		"enabled": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update notifications: %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, engine, http.MethodGet, "/api/users/"+id+"/notifications", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get notifications: %d", w.Code)
	}

	w = doJSON(t, engine, http.MethodPut, "/api/users/"+id+"/notifications", gin.H{
		"channel": "fax",
		"enabled": true,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown channel status = %d, want 400", w.Code)
	}
}
