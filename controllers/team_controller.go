package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/services"
)

type TeamController struct {
	Teams   *services.TeamService
	Reports *services.ReportService
	Log     *logrus.Entry
}

func NewTeamController(teams *services.TeamService, reports *services.ReportService, log *logrus.Entry) *TeamController {
	return &TeamController{Teams: teams, Reports: reports, Log: log}
}

func (tc *TeamController) Mine(c *fiber.Ctx) error {
	teams, err := tc.Teams.Mine(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(teams)
}

func (tc *TeamController) GetByURL(c *fiber.Ctx) error {
	team, err := tc.Teams.GetByURL(c.UserContext(), middleware.UserID(c), c.Params("teamUrl"))
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(team)
}

func (tc *TeamController) Report(c *fiber.Ctx) error {
	q := services.ReportQuery{
		PeriodDays: c.QueryInt("period", 30),
		Project:    c.Query("project", "all"),
	}
	report, err := tc.Reports.Build(c.UserContext(), middleware.UserID(c), c.Params("teamUrl"), q)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(report)
}

func (tc *TeamController) Create(c *fiber.Ctx) error {
	var req services.CreateTeamInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Log, err)
	}
	team, err := tc.Teams.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

func (tc *TeamController) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "teamId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	var req services.CreateTeamInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Log, err)
	}
	team, err := tc.Teams.Rename(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(team)
}

func (tc *TeamController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "teamId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	if err := tc.Teams.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Team deleted successfully"})
}

func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	id, err := paramID(c, "teamId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	var req services.AddMemberInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Log, err)
	}
	member, err := tc.Teams.AddMember(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	id, err := paramID(c, "teamId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	target, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	if err := tc.Teams.RemoveMember(c.UserContext(), middleware.UserID(c), id, target); err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Member removed successfully"})
}

func (tc *TeamController) Leave(c *fiber.Ctx) error {
	id, err := paramID(c, "teamId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	if err := tc.Teams.Leave(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(fiber.Map{"message": "You have left the team"})
}

func (tc *TeamController) Members(c *fiber.Ctx) error {
	id, err := paramID(c, "teamId")
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	members, err := tc.Teams.Members(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, tc.Log, err)
	}
	return c.JSON(members)
}
