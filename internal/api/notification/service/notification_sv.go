package notificationService

import (
	"VoiceCommerce/internal/api/notification"
	"VoiceCommerce/internal/entity"
	contextPkg "VoiceCommerce/pkg/context"
	websocketPkg "VoiceCommerce/pkg/websocket"
	"context"

	"github.com/sirupsen/logrus"
)

const (
	unreadLimit  = 50
	pendingLimit = 100
)

func toMessage(n entity.Notification) notification.Message {
	return notification.Message{
		ID:      n.ID,
		Type:    string(n.Type),
		Title:   n.Title,
		Message: n.Message,
		Data:    n.Data,
	}
}

// Notify pushes to the user's socket when connected and always persists the
// notification, marking whether the push went through.
func (s *notificationService) Notify(ctx context.Context, userID string, kind entity.NotificationType, title, message string, data map[string]interface{}) error {
	requestID := contextPkg.GetRequestID(ctx)

	now := s.now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate notification ID")
		return notification.ErrCreateNotification
	}

	n := entity.Notification{
		ID:        id,
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: now,
	}

	sent, err := s.registry.Send(userID, toMessage(n))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("Failed to push notification, keeping it queued")
	}
	n.Delivered = sent

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return notification.ErrCreateNotification
	}

	if err := repo.Notifications.CreateNotification(ctx, n); err != nil {
		return notification.ErrCreateNotification
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
		"type":       kind,
		"delivered":  sent,
	}).Debug("Notification stored")
	return nil
}

// Connect registers the socket and flushes notifications queued while the
// user was away.
func (s *notificationService) Connect(ctx context.Context, userID string, conn websocketPkg.Conn) error {
	requestID := contextPkg.GetRequestID(ctx)
	s.registry.Register(userID, conn)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return notification.ErrListNotifications
	}

	pending, err := repo.Notifications.ListUndelivered(ctx, userID, pendingLimit)
	if err != nil {
		return notification.ErrListNotifications
	}

	delivered := make([]string, 0, len(pending))
	for _, n := range pending {
		sent, err := s.registry.Send(userID, toMessage(n))
		if err != nil || !sent {
			break
		}
		delivered = append(delivered, n.ID)
	}

	if err := repo.Notifications.MarkDelivered(ctx, delivered); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("Failed to mark queued notifications delivered")
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
		"flushed":    len(delivered),
	}).Info("Notification socket connected")
	return nil
}

func (s *notificationService) Disconnect(userID string, conn websocketPkg.Conn) {
	s.registry.Unregister(userID, conn)
}

func (s *notificationService) ListUnread(ctx context.Context, userID string) ([]entity.Notification, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return nil, notification.ErrListNotifications
	}

	notifications, err := repo.Notifications.ListUnread(ctx, userID, unreadLimit)
	if err != nil {
		return nil, notification.ErrListNotifications
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return 0, notification.ErrMarkRead
	}

	updated, err := repo.Notifications.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, notification.ErrMarkRead
	}
	return updated, nil
}
