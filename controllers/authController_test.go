package controllers_test

import (
	"testing"

	"taskboard-backend/database"
	"taskboard-backend/models"

	"github.com/gofiber/fiber/v2"
)

func TestRegisterLoginRefreshFlow(t *testing.T) {
	app := setupApp(t)

	token, userID := registerAndLogin(t, app, "u1@test.dev")

	// duplicate registration
	resp := doJSON(t, app, "POST", "/api/auth/register", "", "", fiber.Map{
		"email":            "u1@test.dev",
		"password":         "password-123",
		"password_confirm": "password-123",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("duplicate email: status = %d, want 400", resp.StatusCode)
	}

	// wrong password
	resp = doJSON(t, app, "POST", "/api/auth/login", "", "", fiber.Map{
		"email":    "u1@test.dev",
		"password": "wrong-password",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", resp.StatusCode)
	}

	// /me with the access token
	resp = doJSON(t, app, "GET", "/api/auth/me", token, "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("me: status = %d, want 200", resp.StatusCode)
	}
	var me models.User
	decodeInto(t, resp, &me)
	if me.Id != userID || me.Role != models.RoleUser || me.IsPremium {
		t.Errorf("me = %+v, want plain user %s", me, userID)
	}

	// refresh for a new pair
	resp = doJSON(t, app, "POST", "/api/auth/login", "", "", fiber.Map{
		"email":    "u1@test.dev",
		"password": "password-123",
	})
	var login struct {
		RefreshToken string `json:"refresh_token"`
	}
	decodeInto(t, resp, &login)

	resp = doJSON(t, app, "POST", "/api/auth/refresh", "", "", fiber.Map{
		"refresh_token": login.RefreshToken,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("refresh: status = %d, want 200", resp.StatusCode)
	}
	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	decodeInto(t, resp, &refreshed)
	resp = doJSON(t, app, "GET", "/api/auth/me", refreshed.AccessToken, "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("refreshed access token rejected: status = %d", resp.StatusCode)
	}

	// an access token is not a refresh token
	resp = doJSON(t, app, "POST", "/api/auth/refresh", "", "", fiber.Map{
		"refresh_token": token,
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("access-as-refresh: status = %d, want 401", resp.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	app := setupApp(t)

	// malformed email
	resp := doJSON(t, app, "POST", "/api/auth/register", "", "", fiber.Map{
		"email":            "not-an-email",
		"password":         "password-123",
		"password_confirm": "password-123",
	})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("bad email: status = %d, want 422", resp.StatusCode)
	}

	// password mismatch
	resp = doJSON(t, app, "POST", "/api/auth/register", "", "", fiber.Map{
		"email":            "u@test.dev",
		"password":         "password-123",
		"password_confirm": "different-123",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("password mismatch: status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "VALIDATION_FAILED" {
		t.Errorf("password mismatch code = %s, want VALIDATION_FAILED", code)
	}
}

func TestDeleteMeCascadesOwnedTasks(t *testing.T) {
	app := setupApp(t)

	user := seedUser(t, "goner@test.dev", models.RoleUser, false, nil)
	seedTask(t, user, "task one", false, nil)
	seedTask(t, user, "task two", true, nil)

	resp := doJSON(t, app, "DELETE", "/api/v2/users/me", tokenFor(t, user), "", nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete me: status = %d, want 204", resp.StatusCode)
	}

	var users, tasks int64
	database.DB.Model(&models.User{}).Where("id = ?", user.Id).Count(&users)
	database.DB.Model(&models.Task{}).Where("owner_id = ?", user.Id).Count(&tasks)
	if users != 0 {
		t.Error("user record should be gone")
	}
	if tasks != 0 {
		t.Errorf("%d owned tasks survived the cascade", tasks)
	}
}
