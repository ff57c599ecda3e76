package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/utils"
)

// ScanTrigger requests an out-of-band deadline scan
type ScanTrigger interface {
	Trigger() bool
}

type AdminController struct {
	Scanner ScanTrigger
	Log     *logrus.Entry
}

func NewAdminController(scanner ScanTrigger, log *logrus.Entry) *AdminController {
	return &AdminController{Scanner: scanner, Log: log}
}

// TriggerDeadlineScan queues a run. A request made while one is already
// queued is accepted but coalesced into it.
func (ac *AdminController) TriggerDeadlineScan(c *fiber.Ctx) error {
	queued := ac.Scanner.Trigger()
	utils.LogEvent("deadline_scan_triggered", map[string]interface{}{
		"user_id": middleware.UserID(c),
		"queued":  queued,
	})
	return c.Status(fiber.StatusAccepted).JSON(utils.SuccessResponse(fiber.Map{"queued": queued}))
}
