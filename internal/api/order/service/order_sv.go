package orderService

import (
	"VoiceCommerce/internal/api/order"
	"VoiceCommerce/internal/api/voice"
	"VoiceCommerce/internal/entity"
	contextPkg "VoiceCommerce/pkg/context"
	"VoiceCommerce/pkg/nlp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (s *orderService) CreateVoiceOrder(ctx context.Context, userID string, req order.CreateVoiceOrderRequest) (*VoiceOrderResult, error) {
	locale := nlp.Locale{Language: req.Language, Dialect: req.Dialect}
	if locale.Dialect == "" {
		locale.Dialect = "standard"
	}

	if req.DeviceID != "" {
		return s.queueOfflineOrder(ctx, userID, req, locale)
	}

	// Interpret applies a rejection or cancel to the dialogue before returning,
	// so nothing below runs against a context the user already discarded.
	interp, err := s.interpreter.Interpret(ctx, userID, req.VoiceCommand, locale)
	if err != nil {
		return nil, err
	}

	result := &VoiceOrderResult{ProcessedCommand: interp.Command}

	if !readyToOrder(interp) {
		text := interp.Text
		if !interp.Degraded && isOrderTurn(interp.Command) {
			text = nlp.MissingDetailsText(locale, nlp.SummarizeOrder(interp.Dialogue.Extracted()))
		}
		result.Reply = s.interpreter.Respond(ctx, userID, interp, text, nil)
		return result, nil
	}

	ref := entity.VoiceCommandRef{Original: interp.Utterance, Language: locale.Language, Dialect: locale.Dialect}
	extracted := interp.Effective.Extracted

	resolved, err := s.resolver.Resolve(ctx, extracted.Product, extracted.Quantity, ref)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to search catalog")
		return nil, order.ErrCatalogUnavailable
	}
	if resolved == nil {
		name := extracted.Product.Name
		result.DroppedItems = []string{name}
		result.Reply = s.interpreter.Respond(ctx, userID, interp, nlp.ItemNotFoundText(locale, name), map[string]interface{}{
			"dropped_items": result.DroppedItems,
		})
		return result, nil
	}

	o, err := s.newOrder(ctx, userID, interp.Utterance, locale, interp.Effective)
	if err != nil {
		return nil, err
	}
	o.SetItems(resolved.Product.MerchantID, []entity.OrderItem{resolved.Item})

	if err := s.insertOrder(ctx, *o); err != nil {
		return nil, err
	}

	if err := s.interpreter.ResetDialogue(ctx, userID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"order_id":   o.ID,
			"error":      err.Error(),
		}).Warn("Failed to clear dialogue after order creation")
	}

	s.notify(ctx, o.MerchantID, entity.NotificationNewOrder, "New voice order",
		fmt.Sprintf("New order %s for %s", o.OrderNumber(), describeItems(o.Items)), o)

	result.Order = o
	result.Reply = s.interpreter.Respond(ctx, userID, interp, nlp.ConfirmationPrompt(locale, describeItems(o.Items), o.TotalAmount),
		map[string]interface{}{"order_id": o.ID})
	return result, nil
}

// queueOfflineOrder records an utterance captured on a disconnected device as
// a pending placeholder. Items are resolved when the device syncs.
func (s *orderService) queueOfflineOrder(ctx context.Context, userID string, req order.CreateVoiceOrderRequest, locale nlp.Locale) (*VoiceOrderResult, error) {
	cmd, err := s.offline.Process(ctx, nlp.Request{Text: req.VoiceCommand, Locale: locale})
	if err != nil {
		return nil, err
	}
	processed := cmd.Normalize()

	o, err := s.newOrder(ctx, userID, req.VoiceCommand, locale, processed)
	if err != nil {
		return nil, err
	}
	o.MarkOfflineQueued(req.DeviceID)

	if err := s.insertOrder(ctx, *o); err != nil {
		return nil, err
	}

	return &VoiceOrderResult{
		Order:            o,
		ProcessedCommand: processed,
		Reply:            s.interpreter.Respond(ctx, userID, nil, nlp.QueuedText(locale), nil),
	}, nil
}

func (s *orderService) ConfirmOrder(ctx context.Context, userID, orderID string, req order.ConfirmOrderRequest) (*VoiceOrderResult, error) {
	var locale nlp.Locale

	o, err := s.transition(ctx, orderID, ownedBy(userID), func(o *entity.Order) error {
		locale = orderLocale(o, req.Language, req.Dialect)
		return o.Confirm(req.ConfirmationCommand, locale.Language, s.lexicon, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.notifyParties(ctx, o, "Order confirmed", fmt.Sprintf("Order %s has been confirmed", o.OrderNumber()))

	return &VoiceOrderResult{
		Order:            o,
		ProcessedCommand: o.Voice.ProcessedCommand,
		Reply:            s.interpreter.Respond(ctx, userID, nil, nlp.OrderConfirmedText(locale, o.OrderNumber()), nil),
	}, nil
}

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID string, req order.CancelOrderRequest) (*VoiceOrderResult, error) {
	var locale nlp.Locale

	o, err := s.transition(ctx, orderID, ownedBy(userID), func(o *entity.Order) error {
		locale = orderLocale(o, "", "")
		return o.Cancel(strings.TrimSpace(req.Reason), req.VoiceCommand, userID, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.notifyParties(ctx, o, "Order cancelled", fmt.Sprintf("Order %s was cancelled: %s", o.OrderNumber(), o.Cancellation.Reason))

	return &VoiceOrderResult{
		Order:            o,
		ProcessedCommand: o.Voice.ProcessedCommand,
		Reply:            s.interpreter.Respond(ctx, userID, nil, nlp.OrderCancelledText(locale, o.OrderNumber()), nil),
	}, nil
}

func (s *orderService) AdvanceOrderStatus(ctx context.Context, merchantID, orderID string, req order.UpdateOrderStatusRequest) (*entity.Order, error) {
	if !entity.IsValidOrderStatus(req.Status) {
		return nil, order.ErrInvalidStatus
	}
	next := entity.OrderStatus(req.Status)

	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = "Order is " + strings.ReplaceAll(req.Status, "_", " ")
	}

	o, err := s.transition(ctx, orderID, fulfilledBy(merchantID), func(o *entity.Order) error {
		return o.Advance(next, note, merchantID, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, o.UserID, entity.NotificationOrderStatus, "Order update",
		fmt.Sprintf("Order %s: %s", o.OrderNumber(), note), o)

	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string, q order.ListOrdersQuery) (*OrderList, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if q.Status != "" && !entity.IsValidOrderStatus(q.Status) {
		return nil, order.ErrInvalidStatus
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	filter := entity.OrderFilter{Status: q.Status, Limit: limit, Offset: (page - 1) * limit}
	if q.AsMerchant {
		filter.MerchantID = userID
	} else {
		filter.UserID = userID
	}

	repo, err := s.orderRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	orders, total, err := repo.Orders.ListOrders(ctx, filter)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to list orders")
		return nil, err
	}

	return &OrderList{Orders: orders, Total: total, Page: page, Limit: limit}, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.orderRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	o, err := repo.Orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID && o.MerchantID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"order_id":   orderID,
			"user_id":    userID,
		}).Warn("Order requested by a stranger")
		return nil, order.ErrOrderNotOwned
	}

	return &o, nil
}

// transition loads the order, applies one state-machine step and writes it
// back guarded by the status it was read in. A rejected step leaves the
// stored order untouched.
func (s *orderService) transition(ctx context.Context, orderID string, authorize func(*entity.Order) error, apply func(*entity.Order) error) (*entity.Order, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.orderRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}
	defer repo.Rollback()

	o, err := repo.Orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(&o); err != nil {
		return nil, err
	}

	expected := o.Status
	if err := apply(&o); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"order_id":   orderID,
			"status":     expected,
			"error":      err.Error(),
		}).Warn("Order transition rejected")
		return nil, err
	}

	if err := repo.Orders.UpdateOrderState(ctx, o, expected); err != nil {
		if errors.Is(err, order.ErrOrderConflict) {
			return nil, err
		}
		return nil, order.ErrUpdateOrder
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"order_id":   orderID,
			"error":      err.Error(),
		}).Error("Failed to commit order transition")
		return nil, order.ErrUpdateOrder
	}

	return &o, nil
}

func ownedBy(userID string) func(*entity.Order) error {
	return func(o *entity.Order) error {
		if o.UserID != userID {
			return order.ErrOrderNotOwned
		}
		return nil
	}
}

func fulfilledBy(merchantID string) func(*entity.Order) error {
	return func(o *entity.Order) error {
		if o.MerchantID == "" || o.MerchantID != merchantID {
			return order.ErrOrderNotOwned
		}
		return nil
	}
}

func (s *orderService) newOrder(ctx context.Context, userID, utterance string, locale nlp.Locale, cmd nlp.ProcessedCommand) (*entity.Order, error) {
	now := s.now()

	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return nil, order.ErrCreateOrder
	}

	return entity.NewVoiceOrder(id, userID, entity.VoiceOrder{
		OriginalCommand:  utterance,
		Language:         locale.Language,
		Dialect:          locale.Dialect,
		ProcessedCommand: cmd,
	}, now), nil
}

func (s *orderService) insertOrder(ctx context.Context, o entity.Order) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.orderRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}
	defer repo.Rollback()

	if err := repo.Orders.CreateOrder(ctx, o); err != nil {
		return order.ErrCreateOrder
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"order_id":   o.ID,
			"error":      err.Error(),
		}).Error("Failed to commit order")
		return order.ErrCreateOrder
	}
	return nil
}

func (s *orderService) notifyParties(ctx context.Context, o *entity.Order, title, message string) {
	s.notify(ctx, o.UserID, entity.NotificationOrderStatus, title, message, o)
	if o.MerchantID != "" && o.MerchantID != o.UserID {
		s.notify(ctx, o.MerchantID, entity.NotificationOrderStatus, title, message, o)
	}
}

// notify never fails the caller; the order is already committed.
func (s *orderService) notify(ctx context.Context, userID string, kind entity.NotificationType, title, message string, o *entity.Order) {
	if s.notifier == nil || userID == "" {
		return
	}

	data := map[string]interface{}{
		"orderId":     o.ID,
		"status":      o.Status,
		"totalAmount": o.TotalAmount,
	}
	if err := s.notifier.Notify(ctx, userID, kind, title, message, data); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"order_id":   o.ID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("Failed to send order notification")
	}
}

// readyToOrder gates item resolution: the current turn must add to the order
// and the accumulated dialogue must clear the confidence threshold.
func readyToOrder(in *voice.Interpretation) bool {
	if in.Degraded || in.Reset || !isOrderTurn(in.Command) {
		return false
	}
	return in.Effective.ShouldCreateOrder() && in.Effective.Extracted.Product != nil
}

func isOrderTurn(cmd nlp.ProcessedCommand) bool {
	switch cmd.Type {
	case nlp.CommandOrder, nlp.CommandProduct, nlp.CommandClarification:
		return true
	default:
		return false
	}
}

func orderLocale(o *entity.Order, language, dialect string) nlp.Locale {
	if language == "" {
		language = o.Voice.Language
	}
	if dialect == "" {
		dialect = o.Voice.Dialect
	}
	return nlp.Locale{Language: language, Dialect: dialect}
}

// describeItems renders items the way they are read back: "2 kg Basmati Rice".
func describeItems(items []entity.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		desc := nlp.FormatAmount(it.Quantity)
		if it.Unit != "" {
			desc += " " + it.Unit
		}
		parts = append(parts, desc+" "+it.Name)
	}
	return strings.Join(parts, ", ")
}
