package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/e-motion/backend/internal/auth"
	"github.com/e-motion/backend/internal/config"
	"github.com/e-motion/backend/internal/emotions"
	"github.com/e-motion/backend/internal/users"
)

const testAPIKey = "device-shared-key"

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T

	usersStore *users.MemoryStore
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	cfg := config.Config{
		Env:          "test",
		JWTSecret:    "test-secret",
		APIKeySecret: testAPIKey,
		TokenTTL:     time.Hour,
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, auth.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	usersStore := users.NewMemoryStore()
	usersSvc, err := users.NewService(usersStore)
	if err != nil {
		t.Fatalf("users.NewService: %v", err)
	}
	emotionsSvc, err := emotions.NewService(emotions.NewMemoryStore())
	if err != nil {
		t.Fatalf("emotions.NewService: %v", err)
	}

	api := New(cfg, ReadyProbe{}, "test", tokens, usersSvc, emotionsSvc)
	api.rateBurst = 1000
	api.ratePerSec = 1000

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL:    srv.URL,
		client:     srv.Client(),
		t:          t,
		usersStore: usersStore,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	if params != nil {
		path += "?" + params.Encode()
	}
	return c.do(http.MethodGet, path, nil, headers)
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// register creates an account through the API and returns (userID, token).
func (c *apiClient) register(name, email, password string) (string, string) {
	c.t.Helper()
	resp := c.post("/auth/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register status: %d", resp.StatusCode)
	}
	payload := decode[map[string]any](c.t, resp)
	data := payload["data"].(map[string]any)
	token, _ := payload["token"].(string)
	if token == "" {
		c.t.Fatalf("no token in register response")
	}
	return data["id"].(string), token
}

// promoteToAdmin flips the stored role and logs in again so the new token
// carries the admin claim.
func (c *apiClient) promoteToAdmin(userID, email, password string) string {
	c.t.Helper()
	user, err := c.usersStore.Find(context.Background(), userID)
	if err != nil {
		c.t.Fatalf("find user: %v", err)
	}
	user.Role = auth.RoleAdmin
	if err := c.usersStore.Update(context.Background(), user); err != nil {
		c.t.Fatalf("update user: %v", err)
	}

	resp := c.post("/auth/login", map[string]any{"email": email, "password": password}, nil)
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login status: %d", resp.StatusCode)
	}
	payload := decode[map[string]any](c.t, resp)
	return payload["token"].(string)
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestRegisterLoginMeFlow(t *testing.T) {
	c := newTestAPI(t)

	resp := c.post("/auth/register", map[string]any{
		"name":     "Alice",
		"email":    "Alice@Example.com",
		"password": "secret1",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	data := payload["data"].(map[string]any)
	if data["email"] != "alice@example.com" {
		t.Fatalf("email not normalized: %v", data["email"])
	}
	if _, leaked := data["passwordHash"]; leaked {
		t.Fatalf("password hash leaked in response")
	}

	resp = c.post("/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "secret1",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}
	login := decode[map[string]any](t, resp)
	token := login["token"].(string)

	resp = c.get("/auth/me", nil, bearerHeader(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status: %d", resp.StatusCode)
	}
	me := decode[map[string]any](t, resp)
	if me["data"].(map[string]any)["id"] != data["id"] {
		t.Fatalf("me returned wrong user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	c := newTestAPI(t)
	c.register("Alice", "a@x.com", "secret1")

	resp := c.post("/auth/register", map[string]any{
		"name":     "Mallory",
		"email":    "A@X.com",
		"password": "secret2",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLoginUniformFailure(t *testing.T) {
	c := newTestAPI(t)
	c.register("Alice", "a@x.com", "secret1")

	wrongPassword := c.post("/auth/login", map[string]any{"email": "a@x.com", "password": "bad-bad"}, nil)
	unknownEmail := c.post("/auth/login", map[string]any{"email": "ghost@x.com", "password": "secret1"}, nil)
	if wrongPassword.StatusCode != http.StatusUnauthorized || unknownEmail.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.StatusCode, unknownEmail.StatusCode)
	}
	b1 := decode[map[string]any](t, wrongPassword)
	b2 := decode[map[string]any](t, unknownEmail)
	if b1["message"] != b2["message"] {
		t.Fatalf("login failures must be indistinguishable: %v vs %v", b1["message"], b2["message"])
	}
}

func TestMeRequiresToken(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/auth/me", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = c.get("/auth/me", nil, bearerHeader("not-a-token"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
}

func TestOwnProfileUpdate(t *testing.T) {
	c := newTestAPI(t)
	_, token := c.register("Alice", "a@x.com", "secret1")

	resp := c.do(http.MethodPut, "/users/profile/me", map[string]any{"name": "Alice B"}, bearerHeader(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status: %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["data"].(map[string]any)["name"] != "Alice B" {
		t.Fatalf("name not updated: %v", payload["data"])
	}

	resp = c.get("/users/profile/me", nil, bearerHeader(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile status: %d", resp.StatusCode)
	}
	profile := decode[map[string]any](t, resp)
	if profile["data"].(map[string]any)["name"] != "Alice B" {
		t.Fatalf("update not persisted")
	}
}

func TestUserResourceAccess(t *testing.T) {
	c := newTestAPI(t)
	aliceID, aliceToken := c.register("Alice", "a@x.com", "secret1")
	_, bobToken := c.register("Bob", "b@x.com", "secret1")
	rootID, _ := c.register("Root", "root@x.com", "secret1")
	rootToken := c.promoteToAdmin(rootID, "root@x.com", "secret1")

	// Owner reads own record.
	resp := c.get("/users/"+aliceID, nil, bearerHeader(aliceToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner read status: %d", resp.StatusCode)
	}

	// Another non-admin is forbidden.
	resp = c.get("/users/"+aliceID, nil, bearerHeader(bobToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	// Admin can read anyone.
	resp = c.get("/users/"+aliceID, nil, bearerHeader(rootToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin read status: %d", resp.StatusCode)
	}

	// Admin listing; non-admin listing forbidden.
	resp = c.get("/users", nil, bearerHeader(rootToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin list status: %d", resp.StatusCode)
	}
	listing := decode[map[string]any](t, resp)
	pag := listing["pagination"].(map[string]any)
	if pag["totalUsers"].(float64) != 3 {
		t.Fatalf("unexpected totalUsers: %v", pag["totalUsers"])
	}

	resp = c.get("/users", nil, bearerHeader(aliceToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin list, got %d", resp.StatusCode)
	}

	// Delete is admin-only.
	resp = c.do(http.MethodDelete, "/users/"+aliceID, nil, bearerHeader(bobToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin delete, got %d", resp.StatusCode)
	}
	resp = c.do(http.MethodDelete, "/users/"+aliceID, nil, bearerHeader(rootToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin delete status: %d", resp.StatusCode)
	}
	resp = c.get("/users/"+aliceID, nil, bearerHeader(rootToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestEmotionLogOwnership(t *testing.T) {
	c := newTestAPI(t)
	_, aliceToken := c.register("Alice", "a@x.com", "secret1")
	_, bobToken := c.register("Bob", "b@x.com", "secret1")
	rootID, _ := c.register("Root", "root@x.com", "secret1")
	rootToken := c.promoteToAdmin(rootID, "root@x.com", "secret1")

	resp := c.post("/emotions/log", map[string]any{
		"detectedEmotion": "happy",
		"confidence":      0.91,
		"notes":           "morning sample",
	}, bearerHeader(aliceToken))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("log status: %d", resp.StatusCode)
	}
	created := decode[map[string]any](t, resp)
	logID := created["data"].(map[string]any)["id"].(string)

	// Owner and admin can read it; another user cannot.
	resp = c.get("/emotions/logs/"+logID, nil, bearerHeader(aliceToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner read status: %d", resp.StatusCode)
	}
	resp = c.get("/emotions/logs/"+logID, nil, bearerHeader(bobToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	resp = c.get("/emotions/logs/"+logID, nil, bearerHeader(rootToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin read status: %d", resp.StatusCode)
	}

	// Feedback patch by the owner keeps notes when omitted.
	resp = c.do(http.MethodPatch, "/emotions/logs/"+logID+"/feedback", map[string]any{
		"feedback": "accurate",
	}, bearerHeader(aliceToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("feedback status: %d", resp.StatusCode)
	}
	patched := decode[map[string]any](t, resp)
	data := patched["data"].(map[string]any)
	if data["feedback"] != "accurate" {
		t.Fatalf("feedback not applied: %v", data["feedback"])
	}
	if data["notes"] != "morning sample" {
		t.Fatalf("notes must survive a feedback-only patch: %v", data["notes"])
	}

	// Non-owner patch denied.
	resp = c.do(http.MethodPatch, "/emotions/logs/"+logID+"/feedback", map[string]any{
		"feedback": "inaccurate",
	}, bearerHeader(bobToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestEmotionLogListIsolation(t *testing.T) {
	c := newTestAPI(t)
	aliceID, aliceToken := c.register("Alice", "a@x.com", "secret1")
	_, bobToken := c.register("Bob", "b@x.com", "secret1")
	rootID, _ := c.register("Root", "root@x.com", "secret1")
	rootToken := c.promoteToAdmin(rootID, "root@x.com", "secret1")

	for i := 0; i < 2; i++ {
		resp := c.post("/emotions/log", map[string]any{"detectedEmotion": "happy"}, bearerHeader(aliceToken))
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("log status: %d", resp.StatusCode)
		}
	}
	resp := c.post("/emotions/log", map[string]any{"detectedEmotion": "sad"}, bearerHeader(bobToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("log status: %d", resp.StatusCode)
	}

	// Bob only sees his own row even when filtering by Alice's id.
	resp = c.get("/emotions/logs", url.Values{"userId": {aliceID}}, bearerHeader(bobToken))
	listing := decode[map[string]any](t, resp)
	pag := listing["pagination"].(map[string]any)
	if pag["totalLogs"].(float64) != 1 {
		t.Fatalf("isolation broken: %v", pag["totalLogs"])
	}

	// Admin unfiltered sees all three, filtered sees Alice's two.
	resp = c.get("/emotions/logs", nil, bearerHeader(rootToken))
	listing = decode[map[string]any](t, resp)
	if listing["pagination"].(map[string]any)["totalLogs"].(float64) != 3 {
		t.Fatalf("admin should see all rows")
	}
	resp = c.get("/emotions/logs", url.Values{"userId": {aliceID}}, bearerHeader(rootToken))
	listing = decode[map[string]any](t, resp)
	if listing["pagination"].(map[string]any)["totalLogs"].(float64) != 2 {
		t.Fatalf("admin filter broken")
	}
}

func TestEmotionLogAPIKey(t *testing.T) {
	c := newTestAPI(t)

	// No credentials at all.
	resp := c.post("/emotions/log", map[string]any{"detectedEmotion": "happy"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	// Wrong key.
	resp = c.post("/emotions/log", map[string]any{"detectedEmotion": "happy"},
		map[string]string{"X-Api-Key": "wrong"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	// Valid key logs under the anonymous owner.
	resp = c.post("/emotions/log", map[string]any{"detectedEmotion": "happy"},
		map[string]string{"X-Api-Key": testAPIKey})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decode[map[string]any](t, resp)
	if created["data"].(map[string]any)["userId"] != emotions.AnonymousUserID {
		t.Fatalf("expected anonymous owner, got %v", created["data"])
	}
}

func TestExpiredToken(t *testing.T) {
	c := newTestAPI(t)

	past := time.Now().Add(-2 * time.Hour)
	tokens, err := auth.NewTokenService("test-secret",
		auth.WithTokenTTL(time.Hour),
		auth.WithClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	stale, _, err := tokens.Issue("u1", auth.RoleUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	resp := c.get("/auth/me", nil, bearerHeader(stale))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.StatusCode)
	}
}

func TestHealthAndReady(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/healthz", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status: %d", resp.StatusCode)
	}
	resp = c.get("/readyz", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status: %d", resp.StatusCode)
	}
}

func TestErrorEnvelope(t *testing.T) {
	c := newTestAPI(t)

	resp := c.post("/auth/register", map[string]any{
		"name":     "Alice",
		"email":    "a@x.com",
		"password": "123",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "error" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if body["statusCode"].(float64) != http.StatusBadRequest {
		t.Fatalf("statusCode mismatch: %v", body["statusCode"])
	}
	if _, present := body["stack"]; present {
		t.Fatalf("stack traces must not leak outside development")
	}
}
