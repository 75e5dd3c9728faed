package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cockpit-service/internal/api/dto"
	"github.com/spec-kit/cockpit-service/internal/service"
	apperrors "github.com/spec-kit/cockpit-service/pkg/util"
)

// ActionsHandler serves remote action history, recommendations, and
// execution.
type ActionsHandler struct {
	actions     *service.ActionService
	recommender *service.Recommender
	tickets     service.TicketClient
}

// NewActionsHandler constructs handler.
func NewActionsHandler(actions *service.ActionService, recommender *service.Recommender, tickets service.TicketClient) *ActionsHandler {
	return &ActionsHandler{actions: actions, recommender: recommender, tickets: tickets}
}

// History GET /api/v1/actions.
func (h *ActionsHandler) History(c *fiber.Ctx) error {
	device := c.Query("device")
	if device == "" {
		return apperrors.NewValidationError("device query parameter required", nil)
	}
	days, _ := strconv.Atoi(c.Query("days"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	actions, err := h.actions.History(c.UserContext(), device, days, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": actionRecords(actions)})
}

// Recommend POST /api/v1/recommendations.
func (h *ActionsHandler) Recommend(c *fiber.Ctx) error {
	var req dto.RecommendRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IncidentNumber == "" {
		return apperrors.NewValidationError("incident_number required", nil)
	}

	incident, err := h.tickets.FetchIncidentDetails(c.UserContext(), req.IncidentNumber)
	if err != nil {
		return err
	}
	if incident == nil {
		return apperrors.NewNotFound("ticket", fiber.Map{"number": req.IncidentNumber})
	}

	actions, err := h.recommender.Recommend(c.UserContext(), *incident, req.DeviceName, req.Limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": actionRecords(actions)})
}

// Execute POST /api/v1/actions/execute.
func (h *ActionsHandler) Execute(c *fiber.Ctx) error {
	tech, err := technician(c)
	if err != nil {
		return err
	}
	var req dto.ExecuteActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	outcome, err := h.actions.Execute(c.UserContext(), tech, service.ExecuteInput{
		ActionID:   req.ActionID,
		ActionName: req.ActionName,
		DeviceName: req.DeviceName,
		Parameters: req.Parameters,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": dto.ExecuteActionResponse{
		RunID:     outcome.RunID,
		RequestID: outcome.RequestID,
		Status:    string(outcome.Status),
		Message:   outcome.Message,
	}})
}
