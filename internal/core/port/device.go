package port

import (
	"context"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

// DeviceBridgePort forwards commands to native device capabilities.
// Callers treat both methods as fire-and-forget.
type DeviceBridgePort interface {
	Share(ctx context.Context, payload domain.SharePayload) error
	Haptic(ctx context.Context, style domain.HapticStyle) error
}
