package orderService

import (
	"VoiceCommerce/internal/api/order"
	"VoiceCommerce/internal/entity"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncOfflineOrders_DropsUnresolved(t *testing.T) {
	f := newFixture()

	res, err := f.svc.SyncOfflineOrders(context.Background(), "u-1", order.SyncOrdersRequest{
		DeviceID: "dev-1",
		Orders: []order.QueuedOrder{
			{VoiceCommand: "buy 3 pieces of bread", Language: "english"},
			{VoiceCommand: "order 2 kg of saffron delivered to 12 MG Road", Language: "english"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "1 orders synced successfully", res.Message)
	require.Len(t, res.SyncedOrders, 1)

	o := res.SyncedOrders[0]
	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.Equal(t, "m-2", o.MerchantID)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "p-bread", o.Items[0].ProductID)
	assert.Equal(t, 3.0, o.Items[0].Quantity)
	assert.Equal(t, "piece", o.Items[0].Unit)
	assert.Equal(t, 120.0, o.TotalAmount)
	assert.True(t, o.Offline.IsOffline)
	assert.True(t, o.Offline.Synced)
	assert.Equal(t, "dev-1", o.Offline.DeviceID)
	require.NotNil(t, o.Offline.SyncTime)
	assert.Equal(t, f.now, *o.Offline.SyncTime)
	assert.Equal(t, 1, f.orders.count())

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "m-2", f.notifier.sent[0].UserID)
	assert.Equal(t, entity.NotificationOrderSynced, f.notifier.sent[0].Kind)
}

func TestSyncOfflineOrders_FillsPlaceholder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	queued, err := f.svc.CreateVoiceOrder(ctx, "u-1", order.CreateVoiceOrderRequest{
		VoiceCommand: fullUtterance,
		Language:     "english",
		DeviceID:     "dev-1",
	})
	require.NoError(t, err)

	res, err := f.svc.SyncOfflineOrders(ctx, "u-1", order.SyncOrdersRequest{
		DeviceID: "dev-1",
		Orders:   []order.QueuedOrder{{VoiceCommand: fullUtterance, Language: "english"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)

	assert.Equal(t, queued.Order.ID, res.SyncedOrders[0].ID)
	assert.Equal(t, 1, f.orders.count())

	stored := f.orders.get(queued.Order.ID)
	assert.True(t, stored.Offline.Synced)
	assert.Equal(t, "m-1", stored.MerchantID)
	assert.Equal(t, 120.0, stored.TotalAmount)
	assert.Len(t, stored.Timeline, 1)

	// the placeholder is consumed; a stale replay materialises a new order
	res, err = f.svc.SyncOfflineOrders(ctx, "u-1", order.SyncOrdersRequest{
		DeviceID: "dev-1",
		Orders:   []order.QueuedOrder{{VoiceCommand: fullUtterance, Language: "english"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.NotEqual(t, queued.Order.ID, res.SyncedOrders[0].ID)
	assert.Equal(t, 2, f.orders.count())
}

func TestSyncOfflineOrders_FailureIsIsolated(t *testing.T) {
	f := newFixture()
	f.catalog.err = assert.AnError

	res, err := f.svc.SyncOfflineOrders(context.Background(), "u-1", order.SyncOrdersRequest{
		DeviceID: "dev-1",
		Orders: []order.QueuedOrder{
			{VoiceCommand: "buy 3 pieces of bread", Language: "english"},
			{VoiceCommand: "buy 3 pieces of bread", Language: "english"},
		},
	})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.Equal(t, "0 orders synced successfully", res.Message)
	assert.Len(t, f.catalog.queries, 2)
	assert.Empty(t, res.SyncedOrders)
}

func TestSyncOfflineOrders_EmptyBatch(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SyncOfflineOrders(context.Background(), "u-1", order.SyncOrdersRequest{DeviceID: "dev-1"})
	assert.ErrorIs(t, err, order.ErrEmptySyncBatch)
}
