package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/db"
	"github.com/uttaradit-pharmacy/edextemp/internal/i18n"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/printing"
	"github.com/uttaradit-pharmacy/edextemp/internal/security"
	"github.com/uttaradit-pharmacy/edextemp/internal/session"
	"gorm.io/gorm"
)

var testZone = time.FixedZone("ICT", 7*60*60)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) advance(duration time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(duration)
}

type testEnv struct {
	app      *fiber.App
	handler  *Handler
	database *gorm.DB
	clock    *testClock
	metrics  *Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "edextemp-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewManager(i18n.LangTH)
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	renderer, err := printing.NewRenderer(i18nManager, printing.NewRemoteImages(false, time.Second), printing.Options{
		Language:       i18n.LangTH,
		Location:       testZone,
		QRBaseURL:      "https://qr.example.test/",
		BarcodeBaseURL: "https://barcode.example.test/",
	})
	if err != nil {
		t.Fatalf("init renderer: %v", err)
	}

	clock := &testClock{now: time.Date(2026, time.March, 10, 10, 0, 0, 0, testZone)}
	metrics := NewMetrics()
	handler, err := NewHandler(Dependencies{
		Database:  database,
		SecretKey: "test-secret-key-with-at-least-32-bytes",
		Location:  testZone,
		TokenTTL:  12 * time.Hour,
		I18n:      i18nManager,
		Sessions:  session.NewManager(session.NewMemoryStore(), time.Hour, session.WithClock(clock.Now)),
		Renderer:  renderer,
		Metrics:   metrics,
		Now:       clock.Now,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New(fiber.Config{BodyLimit: 8 * 1024 * 1024})
	app.Use(metrics.Middleware)
	RegisterRoutes(app, handler)

	return &testEnv{app: app, handler: handler, database: database, clock: clock, metrics: metrics}
}

func (env *testEnv) createUser(t *testing.T, name string, phaID string, password string, role string) models.User {
	t.Helper()

	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Name:         name,
		PhaID:        phaID,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		ProfileImage: models.DefaultProfileImage,
	}
	if err := env.database.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", phaID, err)
	}
	return user
}

func (env *testEnv) createFormula(t *testing.T, name string, expiryDays int) models.Formula {
	t.Helper()

	formula := models.Formula{
		Code:          "F" + name,
		Name:          name,
		Concentration: "50 mg/mL",
		ExpiryDays:    expiryDays,
		Category:      models.CategoryAntibiotic,
		Storage:       "2-8 °C",
	}
	if err := env.database.Create(&formula).Error; err != nil {
		t.Fatalf("create formula %s: %v", name, err)
	}
	return formula
}

// request sends body as JSON when it is not nil and attaches the auth cookie.
func (env *testEnv) request(t *testing.T, method string, path string, cookie string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func (env *testEnv) login(t *testing.T, phaID string, password string) string {
	t.Helper()
	return loginAndExtractAuthCookie(t, env, phaID, password)
}

func (env *testEnv) loginWithStation(t *testing.T, phaID string, password string, station string) string {
	t.Helper()

	cookie := env.login(t, phaID, password)
	response := env.request(t, http.MethodPost, "/api/session/station", cookie, map[string]string{"station": station})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected station selection status 200, got %d", response.StatusCode)
	}
	return cookie
}

func loginAndExtractAuthCookie(t *testing.T, env *testEnv, phaID string, password string) string {
	t.Helper()

	response := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"pha_id":   phaID,
		"password": password,
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login status 200, got %d", response.StatusCode)
	}

	cookie := responseCookie(response.Cookies(), authCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("auth cookie is missing in login response")
	}
	return cookie.Name + "=" + cookie.Value
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]string{}
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode response body %q: %v", raw, err)
	}
	return payload["error"]
}

func decodeJSON(t *testing.T, body io.Reader, target any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readBody(t *testing.T, body io.Reader) string {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(raw)
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
