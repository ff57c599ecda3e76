package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskhub/config"
	"taskhub/models"
	"taskhub/services"
)

type AuthController struct {
	Auth *services.AuthService
	Log  *logrus.Entry
}

func NewAuthController(auth *services.AuthService, log *logrus.Entry) *AuthController {
	return &AuthController{Auth: auth, Log: log}
}

func (ac *AuthController) setSessionCookie(c *fiber.Ctx, token string) {
	cookie := new(fiber.Cookie)
	cookie.Name = "access_token"
	cookie.Value = token
	cookie.Expires = time.Now().Add(config.AppConfig.JWTExpire)
	cookie.HTTPOnly = true
	cookie.Secure = config.AppConfig.IsProduction()
	cookie.SameSite = "Lax"
	c.Cookie(cookie)
}

func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ac.Log, err)
	}
	sess, err := ac.Auth.Signup(c.UserContext(), req)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	ac.setSessionCookie(c, sess.Token)
	return c.Status(fiber.StatusCreated).JSON(sess)
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ac.Log, err)
	}
	sess, err := ac.Auth.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	ac.setSessionCookie(c, sess.Token)
	return c.JSON(sess)
}

// GoogleCode handles the SPA flow where the client posts the auth code
func (ac *AuthController) GoogleCode(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ac.Log, err)
	}
	sess, err := ac.Auth.GoogleLogin(c.UserContext(), req.Code)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	ac.setSessionCookie(c, sess.Token)
	return c.JSON(sess)
}

func (ac *AuthController) GoogleOAuth(c *fiber.Ctx) error {
	state := uuid.NewString()
	url, err := ac.Auth.GoogleURL(state)
	if err != nil {
		return respondError(c, ac.Log, err)
	}

	// Short-lived CSRF state
	cookie := new(fiber.Cookie)
	cookie.Name = "oauth_state"
	cookie.Value = state
	cookie.Expires = time.Now().Add(10 * time.Minute)
	cookie.HTTPOnly = true
	cookie.Secure = config.AppConfig.IsProduction()
	cookie.SameSite = "Lax"
	c.Cookie(cookie)

	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

func (ac *AuthController) GoogleOAuthCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	cookieState := c.Cookies("oauth_state")
	if state == "" || cookieState == "" || state != cookieState {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid state parameter",
		})
	}
	c.ClearCookie("oauth_state")

	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Authorization code not provided",
		})
	}
	sess, err := ac.Auth.GoogleLogin(c.UserContext(), code)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	ac.setSessionCookie(c, sess.Token)
	return c.JSON(sess)
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(fiber.Map{"user": user})
}
