package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cockpit-service/internal/service"
	apperrors "github.com/spec-kit/cockpit-service/pkg/util"
)

// TicketsHandler serves canonical incident endpoints outside the cockpit
// view-model: direct passthrough and the solution summary.
type TicketsHandler struct {
	tickets   service.TicketClient
	knowledge *service.KnowledgeService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets service.TicketClient, knowledge *service.KnowledgeService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, knowledge: knowledge}
}

// GetTicket GET /api/v1/tickets/:number.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	incident, err := h.tickets.FetchIncidentDetails(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	if incident == nil {
		return apperrors.NewNotFound("ticket", fiber.Map{"number": c.Params("number")})
	}
	return c.JSON(fiber.Map{"data": ticketDetail(incident)})
}

// SolutionSummary GET /api/v1/tickets/:number/solution-summary.
func (h *TicketsHandler) SolutionSummary(c *fiber.Ctx) error {
	number := c.Params("number")
	incident, err := h.tickets.FetchIncidentDetails(c.UserContext(), number)
	if err != nil {
		return err
	}
	if incident == nil {
		return apperrors.NewNotFound("ticket", fiber.Map{"number": number})
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	summary, err := h.knowledge.Summarize(c.UserContext(), *incident, incident.DeviceName, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": solutionSummary(&summary)})
}
