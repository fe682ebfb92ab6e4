package device

import (
	"context"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
)

// LogBridge stands in for the native shell when no messaging is configured:
// commands are logged and reported as delivered.
type LogBridge struct{}

func NewLogBridge() *LogBridge { return &LogBridge{} }

func (LogBridge) Share(ctx context.Context, payload domain.SharePayload) error {
	contextkeys.LoggerFromContext(ctx).Info("Share requested, no device bridge.", port.Fields{
		"component": "DeviceLogBridge",
		"title":     payload.Title,
		"url":       payload.URL,
	})
	return nil
}

func (LogBridge) Haptic(ctx context.Context, style domain.HapticStyle) error {
	contextkeys.LoggerFromContext(ctx).Debug("Haptic requested, no device bridge.", port.Fields{
		"component": "DeviceLogBridge",
		"style":     string(style),
	})
	return nil
}
