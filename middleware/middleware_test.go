package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskhub/config"
	"taskhub/errs"
	"taskhub/models"
	"taskhub/utils"
)

type stubUsers map[uint]*models.User

func (s stubUsers) ByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errs.NotFound("user not found")
}

func tokenFor(t *testing.T, id uint) string {
	t.Helper()
	u := &models.User{}
	u.ID = id
	token, err := utils.GenerateJWTToken(u)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestProtected(t *testing.T) {
	prev := config.AppConfig
	config.AppConfig.JWTSecret = "middleware-secret"
	config.AppConfig.JWTExpire = time.Hour
	t.Cleanup(func() { config.AppConfig = prev })

	known := &models.User{FirstName: "Ira"}
	known.ID = 7
	app := fiber.New()
	app.Get("/me", Protected(stubUsers{7: known}), func(c *fiber.Ctx) error {
		if UserID(c) != 7 {
			t.Errorf("userID local = %d", UserID(c))
		}
		return c.SendStatus(fiber.StatusOK)
	})

	cases := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"missing", "", "", fiber.StatusUnauthorized},
		{"bad scheme", "Token abc", "", fiber.StatusUnauthorized},
		{"garbage token", "Bearer abc", "", fiber.StatusUnauthorized},
		{"unknown user", "Bearer " + tokenFor(t, 99), "", fiber.StatusUnauthorized},
		{"bearer", "Bearer " + tokenFor(t, 7), "", fiber.StatusOK},
		{"cookie", "", tokenFor(t, 7), fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.Header.Set("Cookie", "access_token="+tc.cookie)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	app := fiber.New()
	app.Use(CORS())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Max-Age"); got != "3600" {
		t.Fatalf("max age = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestAuthRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/login", AuthRateLimiter(2, nil), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i, want := range []int{200, 200, 429} {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != want {
			t.Fatalf("request %d: status %d, want %d", i, resp.StatusCode, want)
		}
	}
}

func TestRateLimitStorageDisabled(t *testing.T) {
	if s := RateLimitStorage(config.RedisConfig{}); s != nil {
		t.Fatal("disabled redis should fall back to in-memory storage")
	}
}
