package notificationService

import (
	notificationRepository "VoiceCommerce/internal/api/notification/repository"
	"VoiceCommerce/internal/entity"
	"VoiceCommerce/pkg/utils"
	websocketPkg "VoiceCommerce/pkg/websocket"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type INotificationService interface {
	Notify(ctx context.Context, userID string, kind entity.NotificationType, title, message string, data map[string]interface{}) error
	Connect(ctx context.Context, userID string, conn websocketPkg.Conn) error
	Disconnect(userID string, conn websocketPkg.Conn)
	ListUnread(ctx context.Context, userID string) ([]entity.Notification, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
}

type notificationService struct {
	log      *logrus.Logger
	repo     notificationRepository.Repository
	registry websocketPkg.IRegistry
	utils    utils.IUtils
	now      func() time.Time
}

func NewNotificationService(
	log *logrus.Logger,
	repo notificationRepository.Repository,
	registry websocketPkg.IRegistry,
	utils utils.IUtils,
) INotificationService {
	return &notificationService{
		log:      log,
		repo:     repo,
		registry: registry,
		utils:    utils,
		now:      time.Now,
	}
}
