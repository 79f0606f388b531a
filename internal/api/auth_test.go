package api

import (
	"net/http"
	"testing"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
)

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Somchai", "pha001", "1234", models.RoleUser)

	response := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"pha_id":   "pha001",
		"password": "1234",
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}

	cookie := responseCookie(response.Cookies(), authCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected auth cookie")
	}
	if !cookie.HttpOnly {
		t.Fatal("expected auth cookie to be HttpOnly")
	}

	var payload struct {
		User    models.User    `json:"user"`
		Session sessionPayload `json:"session"`
	}
	decodeJSON(t, response.Body, &payload)
	if payload.User.PhaID != "pha001" {
		t.Fatalf("expected pha001 in response, got %q", payload.User.PhaID)
	}
	if payload.Session.Station != "" {
		t.Fatalf("expected no station on a fresh session, got %q", payload.Session.Station)
	}
	if payload.Session.ExpiresInSeconds != 3600 {
		t.Fatalf("expected a full hour on a fresh session, got %d", payload.Session.ExpiresInSeconds)
	}
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Somchai", "pha001", "1234", models.RoleUser)

	tests := []struct {
		name     string
		phaID    string
		password string
	}{
		{name: "wrong password", phaID: "pha001", password: "9999"},
		{name: "unknown account", phaID: "pha404", password: "1234"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			response := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
				"pha_id":   tc.phaID,
				"password": tc.password,
			})
			if response.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", response.StatusCode)
			}
			if got := readAPIError(t, response.Body); got != "invalid credentials" {
				t.Fatalf("expected generic error, got %q", got)
			}
		})
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Somchai", "pha001", "1234", models.RoleUser)

	for attempt := 0; attempt < loginAttemptLimit; attempt++ {
		env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{"pha_id": "pha001", "password": "bad"})
	}

	response := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{"pha_id": "pha001", "password": "1234"})
	if response.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", response.StatusCode)
	}

	env.clock.advance(loginAttemptWindow + 1)
	response = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{"pha_id": "pha001", "password": "1234"})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login to succeed after the window, got %d", response.StatusCode)
	}
}

func TestForcedPasswordChangeBlocksOtherRoutes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "Somchai", "pha001", "1234", models.RoleUser)
	if err := env.database.Model(&models.User{}).Where("id = ?", user.ID).Update("must_change_password", true).Error; err != nil {
		t.Fatalf("flag user: %v", err)
	}
	cookie := env.login(t, "pha001", "1234")

	response := env.request(t, http.MethodGet, "/api/dashboard", cookie, nil)
	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403 before change, got %d", response.StatusCode)
	}
	if got := readAPIError(t, response.Body); got != "password change required" {
		t.Fatalf("unexpected error %q", got)
	}

	response = env.request(t, http.MethodGet, "/api/session", cookie, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected session status to stay reachable, got %d", response.StatusCode)
	}

	response = env.request(t, http.MethodPost, "/api/auth/change-password", cookie, map[string]string{
		"new_password":     "5678",
		"confirm_password": "5679",
	})
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected mismatch to be rejected, got %d", response.StatusCode)
	}

	response = env.request(t, http.MethodPost, "/api/auth/change-password", cookie, map[string]string{
		"new_password":     "5678",
		"confirm_password": "5678",
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected password change to succeed, got %d", response.StatusCode)
	}

	response = env.request(t, http.MethodGet, "/api/dashboard", cookie, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected dashboard after change, got %d", response.StatusCode)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Somchai", "pha001", "1234", models.RoleUser)
	cookie := env.login(t, "pha001", "1234")

	response := env.request(t, http.MethodPost, "/api/auth/logout", cookie, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected logout status 200, got %d", response.StatusCode)
	}
	if cleared := responseCookie(response.Cookies(), authCookieName); cleared == nil || cleared.Value != "" {
		t.Fatal("expected logout to clear the auth cookie")
	}

	response = env.request(t, http.MethodGet, "/api/dashboard", cookie, nil)
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected old cookie to be rejected, got %d", response.StatusCode)
	}
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Admin", "admin", "1234", models.RoleAdmin)
	user := env.createUser(t, "Somchai", "pha001", "1234", models.RoleUser)

	userCookie := env.login(t, "pha001", "1234")
	adminCookie := env.login(t, "admin", "1234")

	response := env.request(t, http.MethodPost, "/api/users/"+idString(user.ID)+"/toggle-active", adminCookie, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected toggle status 200, got %d", response.StatusCode)
	}

	response = env.request(t, http.MethodGet, "/api/dashboard", userCookie, nil)
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected deactivated user to be signed out, got %d", response.StatusCode)
	}

	response = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{"pha_id": "pha001", "password": "1234"})
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected deactivated user login to fail, got %d", response.StatusCode)
	}
}
