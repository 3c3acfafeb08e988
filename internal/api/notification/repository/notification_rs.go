package notificationRepository

import (
	"VoiceCommerce/internal/entity"
	contextPkg "VoiceCommerce/pkg/context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type NotificationDB struct {
	ID        sql.NullString `db:"id"`
	UserID    sql.NullString `db:"user_id"`
	Type      sql.NullString `db:"type"`
	Title     sql.NullString `db:"title"`
	Message   sql.NullString `db:"message"`
	Data      sql.NullString `db:"data"`
	Delivered sql.NullBool   `db:"delivered"`
	IsRead    sql.NullBool   `db:"is_read"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r *notificationRepository) CreateNotification(ctx context.Context, n entity.Notification) error {
	requestID := contextPkg.GetRequestID(ctx)

	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal notification data")
		return err
	}

	argsKV := map[string]interface{}{
		"id":         n.ID,
		"user_id":    n.UserID,
		"type":       string(n.Type),
		"title":      n.Title,
		"message":    n.Message,
		"data":       string(dataJSON),
		"delivered":  n.Delivered,
		"is_read":    n.Read,
		"created_at": n.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateNotification, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateNotification")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    n.UserID,
			"error":      err.Error(),
		}).Error("Database error when creating notification")
		return err
	}

	return nil
}

func (r *notificationRepository) ListUndelivered(ctx context.Context, userID string, limit int) ([]entity.Notification, error) {
	return r.list(ctx, queryListUndelivered, userID, limit)
}

func (r *notificationRepository) ListUnread(ctx context.Context, userID string, limit int) ([]entity.Notification, error) {
	return r.list(ctx, queryListUnread, userID, limit)
}

func (r *notificationRepository) list(ctx context.Context, namedQuery, userID string, limit int) ([]entity.Notification, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(namedQuery, map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Notification list query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []NotificationDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Notification list execution err")
		return nil, err
	}

	notifications := make([]entity.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, r.makeNotification(row))
	}
	return notifications, nil
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.exec(ctx, queryMarkDelivered, map[string]interface{}{"ids": pq.Array(ids)})
	return err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	result, err := r.exec(ctx, queryMarkRead, map[string]interface{}{
		"user_id": userID,
		"ids":     pq.Array(ids),
	})
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *notificationRepository) exec(ctx context.Context, namedQuery string, argsKV map[string]interface{}) (sql.Result, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Notification update query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Notification update execution err")
		return nil, err
	}
	return result, nil
}

func (r *notificationRepository) makeNotification(row NotificationDB) entity.Notification {
	var data map[string]interface{}
	if row.Data.Valid && row.Data.String != "" && row.Data.String != "null" {
		if err := json.Unmarshal([]byte(row.Data.String), &data); err != nil {
			r.log.WithFields(logrus.Fields{
				"notification_id": row.ID.String,
				"error":           err.Error(),
			}).Warn("Failed to unmarshal notification data")
		}
	}

	return entity.Notification{
		ID:        row.ID.String,
		UserID:    row.UserID.String,
		Type:      entity.NotificationType(row.Type.String),
		Title:     row.Title.String,
		Message:   row.Message.String,
		Data:      data,
		Delivered: row.Delivered.Bool,
		Read:      row.IsRead.Bool,
		CreatedAt: row.CreatedAt,
	}
}
