package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/services"
	"taskhub/utils"
)

type NotificationController struct {
	Notifier *services.Notifier
	Hub      *services.Hub
	Log      *logrus.Entry
}

func NewNotificationController(notifier *services.Notifier, hub *services.Hub, log *logrus.Entry) *NotificationController {
	return &NotificationController{Notifier: notifier, Hub: hub, Log: log}
}

func (nc *NotificationController) List(c *fiber.Ctx) error {
	items, err := nc.Notifier.ForUser(c.UserContext(), middleware.UserID(c), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	return c.JSON(items)
}

// UpgradeWS authenticates the websocket handshake. Browsers cannot set
// headers on the upgrade request, so a token query parameter is accepted too.
func (nc *NotificationController) UpgradeWS(users middleware.UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		token := c.Query("token")
		if token == "" {
			token, _ = middleware.TokenFrom(c)
		}
		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}
		if _, err := users.ByID(c.UserContext(), claims.UserID); err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found")
		}
		c.Locals("userID", claims.UserID)
		return c.Next()
	}
}

// Stream registers the connection with the hub and holds it open until the
// client goes away. Incoming messages are ignored. The hub closes the
// connection on unregister.
func (nc *NotificationController) Stream(c *websocket.Conn) {
	userID, _ := c.Locals("userID").(uint)
	unregister := nc.Hub.Register(userID, c)
	defer unregister()

	nc.Log.WithField("user_id", userID).Debug("notification stream opened")
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
