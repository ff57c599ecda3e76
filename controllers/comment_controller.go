package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/services"
)

type CommentController struct {
	Comments *services.CommentService
	Log      *logrus.Entry
}

func NewCommentController(comments *services.CommentService, log *logrus.Entry) *CommentController {
	return &CommentController{Comments: comments, Log: log}
}

func (cc *CommentController) Create(c *fiber.Ctx) error {
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	var req services.CreateCommentInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, cc.Log, err)
	}
	comment, err := cc.Comments.Create(c.UserContext(), middleware.UserID(c), taskID, req)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (cc *CommentController) List(c *fiber.Ctx) error {
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	comments, err := cc.Comments.List(c.UserContext(), middleware.UserID(c), taskID)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(comments)
}

func (cc *CommentController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "commentId")
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	if err := cc.Comments.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}

func (cc *CommentController) ToggleLike(c *fiber.Ctx) error {
	id, err := paramID(c, "commentId")
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	res, err := cc.Comments.ToggleLike(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(res)
}
