package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/services"
)

type ProjectController struct {
	Projects *services.ProjectService
	Log      *logrus.Entry
}

func NewProjectController(projects *services.ProjectService, log *logrus.Entry) *ProjectController {
	return &ProjectController{Projects: projects, Log: log}
}

func (pc *ProjectController) List(c *fiber.Ctx) error {
	teamID, err := queryID(c, "team_id")
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	projects, err := pc.Projects.ListByTeam(c.UserContext(), middleware.UserID(c), teamID)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(projects)
}

func (pc *ProjectController) GetByURL(c *fiber.Ctx) error {
	project, err := pc.Projects.GetByURL(c.UserContext(), middleware.UserID(c), c.Params("projectUrl"))
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(project)
}

func (pc *ProjectController) Create(c *fiber.Ctx) error {
	var req services.CreateProjectInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, pc.Log, err)
	}
	project, err := pc.Projects.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (pc *ProjectController) AddParticipant(c *fiber.Ctx) error {
	id, err := paramID(c, "projectId")
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, pc.Log, err)
	}
	if err := pc.Projects.AddParticipant(c.UserContext(), middleware.UserID(c), id, req.UserID); err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Participant added successfully"})
}

func (pc *ProjectController) RemoveParticipant(c *fiber.Ctx) error {
	id, err := paramID(c, "projectId")
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	target, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	if err := pc.Projects.RemoveParticipant(c.UserContext(), middleware.UserID(c), id, target); err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Participant removed successfully"})
}

func (pc *ProjectController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "projectId")
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	if err := pc.Projects.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Project deleted successfully"})
}
