package controller

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/errs"
	"taskhub/middleware"
	"taskhub/utils"
)

// respondError maps service errors to status codes. Anything unrecognised is
// logged and reported as a 500 without leaking the cause.
func respondError(c *fiber.Ctx, log *logrus.Entry, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, errs.Message(err))
	case errors.Is(err, errs.ErrForbidden):
		return utils.ErrorResponse(c, fiber.StatusForbidden, errs.Message(err))
	case errors.Is(err, errs.ErrValidation):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, errs.Message(err))
	case errors.Is(err, errs.ErrConflict):
		return utils.ErrorResponse(c, fiber.StatusConflict, errs.Message(err))
	case errors.Is(err, errs.ErrUnauthorized):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, errs.Message(err))
	}

	utils.LogError("request_failed", err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
		"user":   middleware.UserID(c),
	})
	log.WithError(err).WithField("path", c.Path()).Error("request failed")
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Server error")
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validation("invalid %s", name)
	}
	return uint(id), nil
}

func queryID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, errs.Validation("%s is required", name)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validation("invalid %s", name)
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errs.Validation("Invalid request body")
	}
	return nil
}
