package orderService

import (
	"VoiceCommerce/internal/api/order"
	"VoiceCommerce/internal/entity"
	contextPkg "VoiceCommerce/pkg/context"
	"VoiceCommerce/pkg/nlp"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// SyncOfflineOrders replays a device queue in order. Every entry is
// independent: one that fails or resolves to nothing is skipped and the rest
// of the batch still runs.
func (s *orderService) SyncOfflineOrders(ctx context.Context, userID string, req order.SyncOrdersRequest) (*SyncResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if len(req.Orders) == 0 {
		return nil, order.ErrEmptySyncBatch
	}

	synced := make([]entity.Order, 0, len(req.Orders))
	for i, queued := range req.Orders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		o, err := s.syncOne(ctx, userID, req.DeviceID, queued)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"device_id":  req.DeviceID,
				"index":      i,
				"error":      err.Error(),
			}).Warn("Failed to sync queued order")
			continue
		}
		if o == nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"device_id":  req.DeviceID,
				"index":      i,
			}).Info("Queued order dropped, no catalog match")
			continue
		}

		s.notify(ctx, o.MerchantID, entity.NotificationOrderSynced, "Offline order synced",
			fmt.Sprintf("Order %s for %s arrived from an offline device", o.OrderNumber(), describeItems(o.Items)), o)
		synced = append(synced, *o)
	}

	return &SyncResult{
		SyncedOrders: synced,
		Count:        len(synced),
		Message:      nlp.SyncedText(len(synced)),
	}, nil
}

// syncOne returns nil without error when the entry has no resolvable item.
func (s *orderService) syncOne(ctx context.Context, userID, deviceID string, queued order.QueuedOrder) (*entity.Order, error) {
	requestID := contextPkg.GetRequestID(ctx)

	locale := nlp.Locale{Language: queued.Language, Dialect: queued.Dialect}
	if locale.Dialect == "" {
		locale.Dialect = "standard"
	}

	cmd, err := s.offline.Process(ctx, nlp.Request{Text: queued.VoiceCommand, Locale: locale})
	if err != nil {
		return nil, err
	}
	processed := cmd.Normalize()

	ref := entity.VoiceCommandRef{Original: queued.VoiceCommand, Language: locale.Language, Dialect: locale.Dialect}
	resolved, err := s.resolver.Resolve(ctx, processed.Extracted.Product, processed.Extracted.Quantity, ref)
	if err != nil {
		return nil, order.ErrCatalogUnavailable
	}
	if resolved == nil {
		return nil, nil
	}

	repo, err := s.orderRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}
	defer repo.Rollback()

	now := s.now()
	items := []entity.OrderItem{resolved.Item}

	placeholder, err := repo.Orders.FindUnsyncedPlaceholder(ctx, userID, deviceID, queued.VoiceCommand)
	switch {
	case err == nil:
		expected := placeholder.Status
		placeholder.Voice.ProcessedCommand = processed
		placeholder.SetItems(resolved.Product.MerchantID, items)
		placeholder.MarkSynced(now)

		if err := repo.Orders.UpdateOrderState(ctx, placeholder, expected); err != nil {
			return nil, err
		}
	case errors.Is(err, order.ErrOrderNotFound):
		o, err := s.newOrder(ctx, userID, queued.VoiceCommand, locale, processed)
		if err != nil {
			return nil, err
		}
		o.MarkOfflineQueued(deviceID)
		o.SetItems(resolved.Product.MerchantID, items)
		o.MarkSynced(now)

		if err := repo.Orders.CreateOrder(ctx, *o); err != nil {
			return nil, err
		}
		placeholder = *o
	default:
		return nil, err
	}

	if err := repo.Commit(); err != nil {
		return nil, err
	}

	return &placeholder, nil
}
