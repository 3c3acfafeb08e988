package orderRepository

import (
	"VoiceCommerce/internal/api/order"
	"VoiceCommerce/internal/entity"
	contextPkg "VoiceCommerce/pkg/context"
	"VoiceCommerce/pkg/nlp"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type OrderDB struct {
	ID               sql.NullString  `db:"id"`
	UserID           sql.NullString  `db:"user_id"`
	MerchantID       sql.NullString  `db:"merchant_id"`
	Items            sql.NullString  `db:"items"`
	TotalAmount      sql.NullFloat64 `db:"total_amount"`
	Status           sql.NullString  `db:"status"`
	Timeline         sql.NullString  `db:"timeline"`
	VoiceCommand     sql.NullString  `db:"voice_command"`
	Language         sql.NullString  `db:"language"`
	Dialect          sql.NullString  `db:"dialect"`
	ProcessedCommand sql.NullString  `db:"processed_command"`
	Confirmation     sql.NullString  `db:"confirmation"`
	IsOffline        sql.NullBool    `db:"is_offline"`
	Synced           sql.NullBool    `db:"synced"`
	SyncTime         sql.NullTime    `db:"sync_time"`
	DeviceID         sql.NullString  `db:"device_id"`
	Delivery         sql.NullString  `db:"delivery"`
	Payment          sql.NullString  `db:"payment"`
	Cancellation     sql.NullString  `db:"cancellation"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r *orderRepository) CreateOrder(ctx context.Context, o entity.Order) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV, err := orderArgs(o)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"order_id":   o.ID,
			"error":      err.Error(),
		}).Error("Failed to encode order")
		return err
	}

	query, args, err := sqlx.Named(queryCreateOrder, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateOrder")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"order_id":   o.ID,
			"error":      err.Error(),
		}).Error("Database error when creating order")
		return err
	}

	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (entity.Order, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var orderDB OrderDB

	query, args, err := sqlx.Named(queryGetOrderByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetOrderByID named query preparation err")
		return entity.Order{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&orderDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"order_id":   id,
			}).Warn("GetOrderByID no rows found")
			return entity.Order{}, order.ErrOrderNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetOrderByID execution err")
		return entity.Order{}, err
	}

	return r.makeOrder(orderDB)
}

func (r *orderRepository) ListOrders(ctx context.Context, filter entity.OrderFilter) ([]entity.Order, int, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"user_id":     filter.UserID,
		"merchant_id": filter.MerchantID,
		"status":      filter.Status,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	}

	countQuery, countArgs, err := sqlx.Named(queryCountOrders, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListOrders count query preparation err")
		return nil, 0, err
	}
	countQuery = r.q.Rebind(countQuery)

	var total int
	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListOrders count execution err")
		return nil, 0, err
	}

	query, args, err := sqlx.Named(queryListOrders, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListOrders named query preparation err")
		return nil, 0, err
	}
	query = r.q.Rebind(query)

	var rows []OrderDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListOrders execution err")
		return nil, 0, err
	}

	orders := make([]entity.Order, 0, len(rows))
	for _, row := range rows {
		o, err := r.makeOrder(row)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateOrderState(ctx context.Context, o entity.Order, expected entity.OrderStatus) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV, err := orderArgs(o)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"order_id":   o.ID,
			"error":      err.Error(),
		}).Error("Failed to encode order")
		return err
	}
	argsKV["expected_status"] = string(expected)

	query, args, err := sqlx.Named(queryUpdateOrderState, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for UpdateOrderState")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"order_id":   o.ID,
			"error":      err.Error(),
		}).Error("Database error when updating order")
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"order_id":   o.ID,
			"expected":   expected,
		}).Warn("Order status changed before update")
		return order.ErrOrderConflict
	}

	return nil
}

func (r *orderRepository) FindUnsyncedPlaceholder(ctx context.Context, userID, deviceID, voiceCommand string) (entity.Order, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var orderDB OrderDB

	query, args, err := sqlx.Named(queryFindUnsyncedPlaceholder, map[string]interface{}{
		"user_id":       userID,
		"device_id":     deviceID,
		"voice_command": voiceCommand,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("FindUnsyncedPlaceholder named query preparation err")
		return entity.Order{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&orderDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Order{}, order.ErrOrderNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("FindUnsyncedPlaceholder execution err")
		return entity.Order{}, err
	}

	return r.makeOrder(orderDB)
}

func orderArgs(o entity.Order) (map[string]interface{}, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}
	timeline, err := json.Marshal(o.Timeline)
	if err != nil {
		return nil, err
	}
	processed, err := json.Marshal(o.Voice.ProcessedCommand)
	if err != nil {
		return nil, err
	}
	confirmation, err := json.Marshal(o.Voice.Confirmation)
	if err != nil {
		return nil, err
	}
	delivery, err := json.Marshal(o.Delivery)
	if err != nil {
		return nil, err
	}
	payment, err := json.Marshal(o.Payment)
	if err != nil {
		return nil, err
	}

	var cancellation sql.NullString
	if o.Cancellation != nil {
		raw, err := json.Marshal(o.Cancellation)
		if err != nil {
			return nil, err
		}
		cancellation = sql.NullString{String: string(raw), Valid: true}
	}

	var syncTime sql.NullTime
	if o.Offline.SyncTime != nil {
		syncTime = sql.NullTime{Time: *o.Offline.SyncTime, Valid: true}
	}

	return map[string]interface{}{
		"id":                o.ID,
		"user_id":           o.UserID,
		"merchant_id":       sql.NullString{String: o.MerchantID, Valid: o.MerchantID != ""},
		"items":             string(items),
		"total_amount":      o.TotalAmount,
		"status":            string(o.Status),
		"timeline":          string(timeline),
		"voice_command":     o.Voice.OriginalCommand,
		"language":          o.Voice.Language,
		"dialect":           o.Voice.Dialect,
		"processed_command": string(processed),
		"confirmation":      string(confirmation),
		"is_offline":        o.Offline.IsOffline,
		"synced":            o.Offline.Synced,
		"sync_time":         syncTime,
		"device_id":         sql.NullString{String: o.Offline.DeviceID, Valid: o.Offline.DeviceID != ""},
		"delivery":          string(delivery),
		"payment":           string(payment),
		"cancellation":      cancellation,
		"created_at":        o.CreatedAt,
		"updated_at":        o.UpdatedAt,
	}, nil
}

func (r *orderRepository) makeOrder(row OrderDB) (entity.Order, error) {
	o := entity.Order{
		ID:          row.ID.String,
		UserID:      row.UserID.String,
		MerchantID:  row.MerchantID.String,
		TotalAmount: row.TotalAmount.Float64,
		Status:      entity.OrderStatus(row.Status.String),
		Voice: entity.VoiceOrder{
			OriginalCommand: row.VoiceCommand.String,
			Language:        row.Language.String,
			Dialect:         row.Dialect.String,
		},
		Offline: entity.OfflineMode{
			IsOffline: row.IsOffline.Bool,
			Synced:    row.Synced.Bool,
			DeviceID:  row.DeviceID.String,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.SyncTime.Valid {
		t := row.SyncTime.Time
		o.Offline.SyncTime = &t
	}

	decoders := []struct {
		raw sql.NullString
		dst interface{}
	}{
		{row.Items, &o.Items},
		{row.Timeline, &o.Timeline},
		{row.ProcessedCommand, &o.Voice.ProcessedCommand},
		{row.Confirmation, &o.Voice.Confirmation},
		{row.Delivery, &o.Delivery},
		{row.Payment, &o.Payment},
	}
	for _, d := range decoders {
		if !d.raw.Valid || d.raw.String == "" {
			continue
		}
		if err := json.Unmarshal([]byte(d.raw.String), d.dst); err != nil {
			r.log.WithFields(logrus.Fields{
				"order_id": o.ID,
				"error":    err.Error(),
			}).Error("Failed to decode order column")
			return entity.Order{}, err
		}
	}

	if row.Cancellation.Valid && row.Cancellation.String != "" {
		var c entity.Cancellation
		if err := json.Unmarshal([]byte(row.Cancellation.String), &c); err != nil {
			return entity.Order{}, err
		}
		o.Cancellation = &c
	}
	if o.Items == nil {
		o.Items = []entity.OrderItem{}
	}
	if o.Voice.ProcessedCommand.Type == "" {
		o.Voice.ProcessedCommand.Type = nlp.CommandUnknown
	}

	return o, nil
}
