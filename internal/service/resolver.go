package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
)

// DeviceLookup is the owner-to-devices subset of the device client.
type DeviceLookup interface {
	DevicesByOwner(ctx context.Context, ownerUPN string) ([]domain.DeviceSummary, error)
}

// DeviceResolver produces a best-effort device name for an incident.
type DeviceResolver struct {
	devices DeviceLookup
	logger  *zap.Logger
}

// NewDeviceResolver constructs the resolver.
func NewDeviceResolver(devices DeviceLookup, logger *zap.Logger) *DeviceResolver {
	return &DeviceResolver{devices: devices, logger: logger}
}

// Resolve returns the device name to use for an incident. A usable
// candidate wins without a network call. Otherwise the owner's device
// list decides, with the first entry winning in upstream order.
// Not-found is reported through the boolean, never the error; the error
// is non-nil only when the lookup itself fails.
func (r *DeviceResolver) Resolve(ctx context.Context, candidate, owner string) (string, bool, error) {
	if domain.UsableDeviceName(candidate) {
		return candidate, true, nil
	}
	if owner == "" {
		return "", false, nil
	}

	devices, err := r.devices.DevicesByOwner(ctx, owner)
	if err != nil {
		return "", false, err
	}
	if len(devices) == 0 {
		r.logger.Debug("owner has no registered devices", zap.String("owner", owner))
		return "", false, nil
	}
	return devices[0].Name, true, nil
}
