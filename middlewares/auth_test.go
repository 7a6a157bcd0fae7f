package middlewares

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard-backend/models"

	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Path    string `json:"path"`
	} `json:"error"`
}

func decodeError(t *testing.T, body io.Reader) errorBody {
	t.Helper()
	var eb errorBody
	if err := json.NewDecoder(body).Decode(&eb); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return eb
}

func TestRequireAuth(t *testing.T) {
	newTestDB(t)
	app := newTestApp()
	app.Get("/private", RequireAuth(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": IdentityFromCtx(c).ID})
	})

	// no header
	req := httptest.NewRequest("GET", "/private", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", resp.StatusCode)
	}
	if eb := decodeError(t, resp.Body); eb.Error.Code != "AUTH_MISSING" {
		t.Errorf("no token: code = %s, want AUTH_MISSING", eb.Error.Code)
	}

	// garbage token
	req = httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", resp.StatusCode)
	}
	if eb := decodeError(t, resp.Body); eb.Error.Code != "AUTH_INVALID" {
		t.Errorf("bad token: code = %s, want AUTH_INVALID", eb.Error.Code)
	}

	// valid token
	user := seedUser(t, "auth@test.dev", models.RoleUser, false, nil)
	req = httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["id"] != user.Id {
		t.Errorf("identity id = %s, want %s", body["id"], user.Id)
	}
}

func TestOptionalAuthDegradesToAnonymous(t *testing.T) {
	newTestDB(t)
	app := newTestApp()
	app.Get("/open", func(c *fiber.Ctx) error {
		if IdentityFromCtx(c) != nil {
			return c.JSON(fiber.Map{"anon": false})
		}
		return c.JSON(fiber.Map{"anon": true})
	})

	for _, header := range []string{"", "Bearer garbage", "Basic Zm9v"} {
		req := httptest.NewRequest("GET", "/open", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("header %q: status = %d, want 200", header, resp.StatusCode)
		}
		var body map[string]bool
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if !body["anon"] {
			t.Errorf("header %q should resolve to anonymous", header)
		}
	}
}

func TestRefreshTokenIsNotABearerCredential(t *testing.T) {
	newTestDB(t)
	user := seedUser(t, "refresh@test.dev", models.RoleUser, false, nil)
	_, refresh, err := GenerateTokenPair(user)
	if err != nil {
		t.Fatal(err)
	}

	app := newTestApp()
	app.Get("/private", RequireAuth(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("refresh-as-access: status = %d, want 401", resp.StatusCode)
	}
}

func TestParseRefreshToken(t *testing.T) {
	newTestDB(t)
	user := seedUser(t, "parse@test.dev", models.RolePremium, true, nil)
	access, refresh, err := GenerateTokenPair(user)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ParseRefreshToken(refresh)
	if err != nil {
		t.Fatalf("valid refresh token rejected: %v", err)
	}
	if got != user.Id {
		t.Errorf("refresh subject = %s, want %s", got, user.Id)
	}
	if _, err := ParseRefreshToken(access); err == nil {
		t.Error("access token must be rejected by the refresh path")
	}
}

func TestAccessTokenCarriesPolicyAttributes(t *testing.T) {
	newTestDB(t)
	expiry := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	user := seedUser(t, "attrs@test.dev", models.RolePremium, true, &expiry)

	app := newTestApp()
	app.Get("/whoami", RequireAuth(), func(c *fiber.Ctx) error {
		ident := IdentityFromCtx(c)
		return c.JSON(fiber.Map{
			"role":    ident.Role,
			"premium": ident.IsPremium,
			"expiry":  ident.SubscriptionExpiry,
		})
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Role    models.Role `json:"role"`
		Premium bool        `json:"premium"`
		Expiry  *time.Time  `json:"expiry"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Role != models.RolePremium || !body.Premium {
		t.Errorf("identity attributes = %+v, want premium role + flag", body)
	}
	if body.Expiry == nil || !body.Expiry.Equal(expiry) {
		t.Errorf("subscription expiry = %v, want %v", body.Expiry, expiry)
	}
}
