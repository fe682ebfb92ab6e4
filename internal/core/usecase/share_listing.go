package usecase

import (
	"context"
	"fmt"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
	"github.com/Maureenhddi/sergic-app/internal/core/port/usecases_port"
)

type ShareListingUseCase struct {
	listings usecases_port.ListingServicePort
	device   port.DeviceBridgePort
}

func NewShareListingUseCase(listings usecases_port.ListingServicePort, device port.DeviceBridgePort) *ShareListingUseCase {
	return &ShareListingUseCase{listings: listings, device: device}
}

// Execute builds the share payload and hands it to the device. A failing share sheet is only logged.
func (uc *ShareListingUseCase) Execute(ctx context.Context, slug, url string) (*domain.SharePayload, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ShareListing",
		"slug":     slug,
	})

	detail, err := uc.listings.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing to share: %w", err)
	}

	payload := domain.NewSharePayload(detail.Listing, url)

	if uc.device != nil {
		cmdCtx := context.WithoutCancel(ctx)
		go func() {
			timeoutCtx, cancel := context.WithTimeout(cmdCtx, deviceCommandTimeout)
			defer cancel()
			if err := uc.device.Share(timeoutCtx, payload); err != nil {
				logger.Warn("Share sheet unavailable.", port.Fields{"error": err.Error()})
			}
		}()
	}

	logger.Info("Share payload built.", nil)
	return &payload, nil
}
