package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/services"
)

type UserController struct {
	Users *services.UserService
	Log   *logrus.Entry
}

func NewUserController(users *services.UserService, log *logrus.Entry) *UserController {
	return &UserController{Users: users, Log: log}
}

func (uc *UserController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	user, err := uc.Users.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return c.JSON(user)
}

func (uc *UserController) UpdateName(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	var req services.UpdateNameInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, uc.Log, err)
	}
	user, err := uc.Users.UpdateName(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return c.JSON(user)
}

func (uc *UserController) SetPassword(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	var req services.SetPasswordInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, uc.Log, err)
	}
	if err := uc.Users.SetPassword(c.UserContext(), middleware.UserID(c), id, req); err != nil {
		return respondError(c, uc.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
