package notificationRepository

import (
	"VoiceCommerce/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Notifications: &notificationRepository{q: sqlExecutor, log: r.log},
		Commit:        commitFunc,
		Rollback:      rollbackFunc,
	}, nil
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n entity.Notification) error
	ListUndelivered(ctx context.Context, userID string, limit int) ([]entity.Notification, error)
	ListUnread(ctx context.Context, userID string, limit int) ([]entity.Notification, error)
	MarkDelivered(ctx context.Context, ids []string) error
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
}

type Client struct {
	Notifications NotificationStore

	Commit   func() error
	Rollback func() error
}

type notificationRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
