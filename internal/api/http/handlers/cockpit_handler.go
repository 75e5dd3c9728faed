package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cockpit-service/internal/api/dto"
	"github.com/spec-kit/cockpit-service/internal/auth"
	"github.com/spec-kit/cockpit-service/internal/domain"
	"github.com/spec-kit/cockpit-service/internal/service"
	apperrors "github.com/spec-kit/cockpit-service/pkg/util"
)

// CockpitHandler serves the technician cockpit: paginated list, search,
// and the aggregated ticket detail view.
type CockpitHandler struct {
	cockpit *service.CockpitService
}

// NewCockpitHandler constructs handler.
func NewCockpitHandler(cockpit *service.CockpitService) *CockpitHandler {
	return &CockpitHandler{cockpit: cockpit}
}

func technician(c *fiber.Ctx) (string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Username == "" {
		return "", apperrors.NewUnauthorized("technician required")
	}
	return principal.Username, nil
}

// Tickets GET /api/v1/cockpit/tickets.
func (h *CockpitHandler) Tickets(c *fiber.Ctx) error {
	tech, err := technician(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	reset := c.QueryBool("reset")

	snapshot, err := h.cockpit.Tickets(c.UserContext(), tech, limit, reset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": listResponse(snapshot)})
}

// LoadMore POST /api/v1/cockpit/tickets/more.
func (h *CockpitHandler) LoadMore(c *fiber.Ctx) error {
	tech, err := technician(c)
	if err != nil {
		return err
	}
	snapshot, err := h.cockpit.LoadMore(c.UserContext(), tech)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": listResponse(snapshot)})
}

// Search GET /api/v1/cockpit/search.
func (h *CockpitHandler) Search(c *fiber.Ctx) error {
	tech, err := technician(c)
	if err != nil {
		return err
	}
	kind := domain.SearchKind(c.Query("kind", string(domain.SearchKindTicket)))
	switch kind {
	case domain.SearchKindUser, domain.SearchKindDevice, domain.SearchKindTicket:
	default:
		return apperrors.NewValidationError("kind must be one of user, device, ticket", nil)
	}

	results, err := h.cockpit.Search(c.UserContext(), tech, c.Query("q"), kind)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SearchResponse{
		State:   string(results.State),
		Results: ticketSummaries(results.Results),
	}})
}

// TicketDetail GET /api/v1/cockpit/tickets/:number.
func (h *CockpitHandler) TicketDetail(c *fiber.Ctx) error {
	tech, err := technician(c)
	if err != nil {
		return err
	}
	view, err := h.cockpit.TicketDetail(c.UserContext(), tech, c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detailView(view)})
}

func listResponse(snapshot service.ListSnapshot) dto.TicketListResponse {
	return dto.TicketListResponse{
		State:   string(snapshot.State),
		Tickets: ticketSummaries(snapshot.Incidents),
		Page: dto.PageMeta{
			Limit:   snapshot.Cursor.Limit,
			Offset:  snapshot.Cursor.Offset,
			Total:   snapshot.Cursor.Total,
			HasMore: snapshot.Cursor.HasMore,
		},
	}
}
