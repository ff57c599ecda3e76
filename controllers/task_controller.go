package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/services"
)

type TaskController struct {
	Tasks *services.TaskService
	Log   *logrus.Entry
}

func NewTaskController(tasks *services.TaskService, log *logrus.Entry) *TaskController {
	return &TaskController{Tasks: tasks, Log: log}
}

func (tc *TaskController) List(c *fiber.Ctx) error {
	projectID, err := queryID(c, "project_id")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	tasks, err := tc.Tasks.ListByProject(c.UserContext(), middleware.UserID(c), projectID)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(tasks)
}

func (tc *TaskController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "taskId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	task, err := tc.Tasks.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(task)
}

func (tc *TaskController) Create(c *fiber.Ctx) error {
	var req services.CreateTaskInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Log, err)
	}
	task, err := tc.Tasks.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (tc *TaskController) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "taskId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	var req services.UpdateTaskInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Log, err)
	}
	task, err := tc.Tasks.Update(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(task)
}

func (tc *TaskController) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "taskId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	var req struct {
		Status *int `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Log, err)
	}
	if req.Status == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status is required"})
	}
	task, err := tc.Tasks.UpdateStatus(c.UserContext(), middleware.UserID(c), id, *req.Status)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(task)
}

func (tc *TaskController) ReplaceAssignees(c *fiber.Ctx) error {
	id, err := paramID(c, "taskId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	var req struct {
		AssigneeIDs []uint `json:"assigned_user_ids"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Log, err)
	}
	task, err := tc.Tasks.ReplaceAssignees(c.UserContext(), middleware.UserID(c), id, req.AssigneeIDs)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(task)
}

func (tc *TaskController) AddAssignee(c *fiber.Ctx) error {
	id, err := paramID(c, "taskId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	task, err := tc.Tasks.AddAssignee(c.UserContext(), middleware.UserID(c), id, userID)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(task)
}

func (tc *TaskController) RemoveAssignee(c *fiber.Ctx) error {
	id, err := paramID(c, "taskId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	if err := tc.Tasks.RemoveAssignee(c.UserContext(), middleware.UserID(c), id, userID); err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Assignee removed successfully"})
}

func (tc *TaskController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "taskId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	if err := tc.Tasks.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}
