package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cockpit-service/internal/api/dto"
	"github.com/spec-kit/cockpit-service/internal/service"
	apperrors "github.com/spec-kit/cockpit-service/pkg/util"
)

// DevicesHandler serves device-management lookups.
type DevicesHandler struct {
	devices service.DeviceClient
}

// NewDevicesHandler constructs handler.
func NewDevicesHandler(devices service.DeviceClient) *DevicesHandler {
	return &DevicesHandler{devices: devices}
}

// UserDevices GET /api/v1/users/:user/devices.
func (h *DevicesHandler) UserDevices(c *fiber.Ctx) error {
	devices, err := h.devices.DevicesByOwner(c.UserContext(), c.Params("user"))
	if err != nil {
		return err
	}
	items := make([]dto.DeviceSummary, 0, len(devices))
	for i := range devices {
		items = append(items, deviceSummary(&devices[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetDevice GET /api/v1/devices/:name.
func (h *DevicesHandler) GetDevice(c *fiber.Ctx) error {
	detail, err := h.devices.DeviceByName(c.UserContext(), c.Params("name"))
	if err != nil {
		return err
	}
	if detail == nil {
		return apperrors.NewNotFound("device", fiber.Map{"name": c.Params("name")})
	}
	return c.JSON(fiber.Map{"data": deviceDetail(detail)})
}
