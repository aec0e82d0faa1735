package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/device"
	"github.com/rallypoint-io/rallypoint-core/internal/graph"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/config"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/database"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/logging"
	"github.com/rallypoint-io/rallypoint-core/internal/org"
	_ "github.com/rallypoint-io/rallypoint-core/migrations"
)

const testSecret = "test-secret-that-is-long-enough!"

type fixture struct {
	ts     *httptest.Server
	server *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "api-test.db"),
		WALMode:     true,
		BusyTimeout: 5000,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := &logging.Logger{Logger: discard}

	orgRepo := org.NewOrganisationRepository(db.DB)
	defaultOrgID, err := org.SeedDefaultOrganisation(context.Background(), orgRepo, discard)
	if err != nil {
		t.Fatalf("seeding default organisation: %v", err)
	}

	users := auth.NewUserRepository(db.DB)
	deviceRepo := device.NewRepository(db.DB)
	devices := device.NewService(deviceRepo, discard)
	signer := auth.NewTokenSigner(testSecret)

	sessions := auth.NewSessionService(users, devices, signer, auth.SessionConfig{
		OperationTimeout:      5 * time.Second,
		DefaultOrganisationID: defaultOrgID,
	}, discard)

	verifier := auth.NewVerifier(signer, users, deviceRepo)

	g := graph.New(graph.Repositories{
		Users:         users,
		Devices:       deviceRepo,
		Organisations: orgRepo,
		Groups:        org.NewGroupRepository(db.DB),
		Schedules:     org.NewScheduleRepository(db.DB),
		Events:        org.NewEventRepository(db.DB),
		Tags:          org.NewTagRepository(db.DB),
		Capabilities:  org.NewCapabilityRepository(db.DB),
	}, 5*time.Second, discard)

	server, err := New(Deps{
		Config:   config.APIConfig{Host: "127.0.0.1", Port: 0},
		WS:       config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10},
		Logger:   logger,
		Sessions: sessions,
		Verifier: verifier,
		Graph:    g,
		Devices:  devices,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	server.hub = NewHub(server.wsCfg, logger)

	ts := httptest.NewServer(server.buildRouter())
	t.Cleanup(ts.Close)

	return &fixture{ts: ts, server: server}
}

// do runs one request against the test server and returns the status
// code and decoded JSON body.
func (f *fixture) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, f.ts.URL+"/api/v1"+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body) //nolint:errcheck // test body read
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, raw, err)
		}
	}

	return resp.StatusCode, decoded
}

// signup registers an account and returns its bearer token.
func (f *fixture) signup(t *testing.T, username string) string {
	t.Helper()

	status, body := f.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"username":    username,
		"email":       username + "@example.com",
		"password":    "test-password",
		"device_uuid": "uuid-" + username,
	})
	if status != http.StatusCreated {
		t.Fatalf("signup %s: status %d, body %v", username, status, body)
	}

	token, _ := body["token"].(string) //nolint:errcheck // checked below
	if token == "" {
		t.Fatalf("signup %s: no token in %v", username, body)
	}
	return token
}

func TestHealthIsPublic(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestSignupThenMe(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "jack")

	status, body := f.do(t, http.MethodGet, "/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("GET /me: status %d, body %v", status, body)
	}
	if body["username"] != "jack" {
		t.Errorf("username = %v, want jack", body["username"])
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password hash serialised in /me response")
	}
}

func TestMeWithoutTokenIsUnauthorized(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, http.MethodGet, "/me", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
}

func TestSignupConflict(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "jack")

	status, _ := f.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"username":    "jack",
		"email":       "other@example.com",
		"password":    "test-password",
		"device_uuid": "uuid-other",
	})
	if status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", status)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "jack")

	status, _ := f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"username":    "jack",
		"password":    "wrong-password",
		"device_uuid": "uuid-jack",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
}

// A login naming an account that does not exist is a 404, not a 401;
// only a password mismatch on a real account is a credential failure.
func TestLoginUnknownUsernameIsNotFound(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"username":    "nobody",
		"password":    "whatever-password",
		"device_uuid": "uuid-nobody",
	})
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
}

// Once signup completes, the same request's identity context already
// holds the new user and device; resolution must not fall back to the
// (absent) bearer token.
func TestSignupEstablishesRequestIdentity(t *testing.T) {
	f := newFixture(t)

	payload, err := json.Marshal(map[string]any{
		"username":    "jack",
		"email":       "jack@example.com",
		"password":    "test-password",
		"device_uuid": "uuid-jack",
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	rc := auth.NewRequestContext()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(payload))
	req = req.WithContext(context.WithValue(req.Context(), ctxKeyRequestCtx, rc))
	rec := httptest.NewRecorder()

	f.server.handleSignup(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}

	user, err := rc.User(req.Context())
	if err != nil {
		t.Fatalf("post-signup User: %v", err)
	}
	if user.Username != "jack" {
		t.Errorf("post-signup identity = %q, want jack", user.Username)
	}

	dev, err := rc.Device(req.Context())
	if err != nil {
		t.Fatalf("post-signup Device: %v", err)
	}
	if dev.UUID != "uuid-jack" {
		t.Errorf("post-signup device = %q, want uuid-jack", dev.UUID)
	}
}

func TestUpdateLocationAndReadBack(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "jack")

	status, body := f.do(t, http.MethodPut, "/devices/location", token, map[string]any{
		"lat": 51.5,
		"lon": -0.12,
	})
	if status != http.StatusOK {
		t.Fatalf("PUT /devices/location: status %d, body %v", status, body)
	}

	status, body = f.do(t, http.MethodGet, "/me/device", token, nil)
	if status != http.StatusOK {
		t.Fatalf("GET /me/device: status %d", status)
	}
	if body["latitude"] != 51.5 || body["longitude"] != -0.12 {
		t.Errorf("device location = (%v, %v), want (51.5, -0.12)", body["latitude"], body["longitude"])
	}
}

func TestUpdateLocationValidation(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "jack")

	tests := []struct {
		name string
		lat  float64
		lon  float64
	}{
		{"latitude too high", 95, 0},
		{"longitude too low", 0, -181},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := f.do(t, http.MethodPut, "/devices/location", token, map[string]any{
				"lat": tt.lat,
				"lon": tt.lon,
			})
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", status)
			}
		})
	}
}

func TestGroupLifecycle(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "jack")

	status, body := f.do(t, http.MethodPost, "/groups", token, map[string]any{"name": "Night shift"})
	if status != http.StatusCreated {
		t.Fatalf("POST /groups: status %d, body %v", status, body)
	}
	groupID, _ := body["id"].(string) //nolint:errcheck // checked below
	if groupID == "" {
		t.Fatalf("no group id in %v", body)
	}

	// Creator is the first member
	status, body = f.do(t, http.MethodGet, "/groups/"+groupID+"/users", token, nil)
	if status != http.StatusOK {
		t.Fatalf("GET group users: status %d", status)
	}
	if body["count"] != float64(1) {
		t.Errorf("member count = %v, want 1", body["count"])
	}

	// Second account in the same default organisation can be added
	emmaToken := f.signup(t, "emma")
	status, meBody := f.do(t, http.MethodGet, "/me", emmaToken, nil)
	if status != http.StatusOK {
		t.Fatalf("GET /me for emma: status %d", status)
	}
	status, _ = f.do(t, http.MethodPost, "/groups/"+groupID+"/members", token, map[string]any{
		"user_id": meBody["id"],
	})
	if status != http.StatusOK {
		t.Fatalf("POST members: status %d", status)
	}

	status, body = f.do(t, http.MethodGet, "/groups/"+groupID+"/users", token, nil)
	if status != http.StatusOK {
		t.Fatalf("GET group users: status %d", status)
	}
	if body["count"] != float64(2) {
		t.Errorf("member count = %v, want 2", body["count"])
	}
}

func TestScheduleAndSegments(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "jack")

	_, groupBody := f.do(t, http.MethodPost, "/groups", token, map[string]any{"name": "Rescue"})
	groupID := groupBody["id"].(string) //nolint:errcheck // created above

	status, schedBody := f.do(t, http.MethodPost, "/schedules", token, map[string]any{
		"name":     "On call",
		"group_id": groupID,
	})
	if status != http.StatusCreated {
		t.Fatalf("POST /schedules: status %d, body %v", status, schedBody)
	}
	scheduleID := schedBody["id"].(string) //nolint:errcheck // created above

	start := time.Now().UTC().Truncate(time.Second)
	status, segBody := f.do(t, http.MethodPost, "/schedules/"+scheduleID+"/segments", token, map[string]any{
		"status":    "available",
		"starts_at": start.Format(time.RFC3339),
		"ends_at":   start.Add(2 * time.Hour).Format(time.RFC3339),
	})
	if status != http.StatusCreated {
		t.Fatalf("POST segments: status %d, body %v", status, segBody)
	}

	status, body := f.do(t, http.MethodGet, "/schedules/"+scheduleID+"/segments", token, nil)
	if status != http.StatusOK {
		t.Fatalf("GET segments: status %d", status)
	}
	if body["count"] != float64(1) {
		t.Errorf("segment count = %v, want 1", body["count"])
	}
}

func TestOrganisationListingsAreMemberOnly(t *testing.T) {
	f := newFixture(t)
	insider := f.signup(t, "insider")
	outsider := f.signup(t, "outsider")

	// The outsider moves to a fresh organisation by creating one; both
	// start in the default organisation, so instead create the rival
	// organisation and check the insider cannot list it.
	status, rival := f.do(t, http.MethodPost, "/organisations", outsider, map[string]any{
		"name": "Rival",
	})
	if status != http.StatusCreated {
		t.Fatalf("POST /organisations: status %d, body %v", status, rival)
	}
	rivalID := rival["id"].(string) //nolint:errcheck // created above

	status, _ = f.do(t, http.MethodGet, "/organisations/"+rivalID+"/groups", insider, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("non-member listing: status = %d, want 401", status)
	}
}

func TestEventCreationAndMyEvents(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "jack")

	_, groupBody := f.do(t, http.MethodPost, "/groups", token, map[string]any{"name": "Rescue"})
	groupID := groupBody["id"].(string) //nolint:errcheck // created above

	start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	status, eventBody := f.do(t, http.MethodPost, "/groups/"+groupID+"/events", token, map[string]any{
		"name":      "Drill",
		"starts_at": start.Format(time.RFC3339),
	})
	if status != http.StatusCreated {
		t.Fatalf("POST events: status %d, body %v", status, eventBody)
	}

	status, body := f.do(t, http.MethodGet, "/me/events", token, nil)
	if status != http.StatusOK {
		t.Fatalf("GET /me/events: status %d", status)
	}
	if body["count"] != float64(1) {
		t.Errorf("event count = %v, want 1", body["count"])
	}
}

func TestRevokeKillsToken(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "jack")

	status, _ := f.do(t, http.MethodPost, "/auth/revoke", token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("POST /auth/revoke: status %d, want 204", status)
	}

	status, _ = f.do(t, http.MethodGet, "/me", token, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("GET /me after revoke: status %d, want 401", status)
	}

	// A fresh login works and issues a usable token
	status, body := f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"username":    "jack",
		"password":    "test-password",
		"device_uuid": "uuid-jack",
	})
	if status != http.StatusOK {
		t.Fatalf("login after revoke: status %d", status)
	}
	fresh := body["token"].(string) //nolint:errcheck // issued above
	if status, _ := f.do(t, http.MethodGet, "/me", fresh, nil); status != http.StatusOK {
		t.Fatalf("GET /me with fresh token: status %d", status)
	}
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, f.ts.URL+"/api/v1/health", nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("X-Request-ID", "req-1234")

	resp, err := f.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "req-1234" {
		t.Errorf("X-Request-ID = %q, want req-1234", got)
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	f := newFixture(t)

	big := bytes.Repeat([]byte("a"), maxRequestBodySize+1)
	payload := fmt.Sprintf(`{"username": %q}`, big)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
		f.ts.URL+"/api/v1/auth/signup", bytes.NewReader([]byte(payload)))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("POST signup: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
