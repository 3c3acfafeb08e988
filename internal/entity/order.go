package entity

import (
	"VoiceCommerce/internal/api/order"
	"VoiceCommerce/pkg/nlp"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

const (
	PaymentMethodCashOnDelivery = "cash_on_delivery"
	PaymentStatusPending        = "pending"

	DefaultCancelReason = "Cancelled by user"
)

// merchantProgression lists the forward moves a merchant may make once an
// order has been confirmed by voice.
var merchantProgression = map[OrderStatus]OrderStatus{
	OrderStatusConfirmed:      OrderStatusPreparing,
	OrderStatusPreparing:      OrderStatusReady,
	OrderStatusReady:          OrderStatusOutForDelivery,
	OrderStatusOutForDelivery: OrderStatusDelivered,
}

func IsValidOrderStatus(status string) bool {
	switch OrderStatus(status) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

type VoiceCommandRef struct {
	Original string `json:"original"`
	Language string `json:"language"`
	Dialect  string `json:"dialect"`
}

type OrderItem struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Quantity     float64         `json:"quantity"`
	Unit         string          `json:"unit"`
	Price        float64         `json:"price"`
	VoiceCommand VoiceCommandRef `json:"voiceCommand"`
}

type TimelineEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
	UpdatedBy string      `json:"updatedBy,omitempty"`
}

// VoiceConfirmation records the reply that confirmed an order together with
// the order utterance it answered.
type VoiceConfirmation struct {
	Required     bool       `json:"required"`
	Confirmed    bool       `json:"confirmed"`
	Command      string     `json:"confirmationCommand,omitempty"`
	OrderCommand string     `json:"orderCommand,omitempty"`
	Time         *time.Time `json:"confirmationTime,omitempty"`
}

type VoiceOrder struct {
	OriginalCommand  string               `json:"originalCommand"`
	Language         string               `json:"language"`
	Dialect          string               `json:"dialect"`
	ProcessedCommand nlp.ProcessedCommand `json:"processedCommand"`
	Confirmation     VoiceConfirmation    `json:"confirmation"`
}

type OfflineMode struct {
	IsOffline bool       `json:"isOffline"`
	Synced    bool       `json:"synced"`
	SyncTime  *time.Time `json:"syncTime,omitempty"`
	DeviceID  string     `json:"deviceId,omitempty"`
}

type Delivery struct {
	Address       string `json:"address,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
	PreferredTime string `json:"preferredDeliveryTime,omitempty"`
}

type Payment struct {
	Method        string `json:"method"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId,omitempty"`
}

type Cancellation struct {
	Reason  string    `json:"reason"`
	Command string    `json:"command,omitempty"`
	Time    time.Time `json:"time"`
}

type Order struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	MerchantID   string          `json:"merchantId,omitempty"`
	Items        []OrderItem     `json:"items"`
	TotalAmount  float64         `json:"totalAmount"`
	Status       OrderStatus     `json:"status"`
	Timeline     []TimelineEntry `json:"timeline"`
	Voice        VoiceOrder      `json:"voiceOrder"`
	Offline      OfflineMode     `json:"offlineMode"`
	Delivery     Delivery        `json:"delivery"`
	Payment      Payment         `json:"payment"`
	Cancellation *Cancellation   `json:"cancellation,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewVoiceOrder builds a pending order awaiting voice confirmation. Payment
// defaults to cash on delivery when the utterance did not name a method.
func NewVoiceOrder(id, userID string, voice VoiceOrder, at time.Time) *Order {
	voice.Confirmation = VoiceConfirmation{Required: true}

	o := &Order{
		ID:        id,
		UserID:    userID,
		Items:     []OrderItem{},
		Voice:     voice,
		Payment:   Payment{Method: PaymentMethodCashOnDelivery, Status: PaymentStatusPending},
		CreatedAt: at,
	}

	e := voice.ProcessedCommand.Extracted
	if e.Delivery != nil {
		o.Delivery = Delivery{
			Address:       e.Delivery.Address,
			Instructions:  e.Delivery.Instructions,
			PreferredTime: e.Delivery.Time,
		}
	}
	if e.Payment != nil && e.Payment.Method != "" {
		o.Payment.Method = e.Payment.Method
	}

	o.transition(OrderStatusPending, "Order placed via voice command", userID, at)
	return o
}

// SetItems replaces the item list and recomputes the total.
func (o *Order) SetItems(merchantID string, items []OrderItem) {
	o.MerchantID = merchantID
	o.Items = items
	o.TotalAmount = 0
	for _, it := range items {
		o.TotalAmount += it.Price * it.Quantity
	}
}

// MarkOfflineQueued flags an order captured on a device without connectivity.
func (o *Order) MarkOfflineQueued(deviceID string) {
	o.Offline = OfflineMode{IsOffline: true, DeviceID: deviceID}
}

func (o *Order) MarkSynced(at time.Time) {
	o.Offline.Synced = true
	o.Offline.SyncTime = &at
	o.UpdatedAt = at
}

// Confirm moves a pending order to confirmed when the utterance is an
// affirmative in the order's language (English is always accepted).
func (o *Order) Confirm(utterance, language string, lexicon nlp.Lexicon, at time.Time) error {
	if o.Status != OrderStatusPending {
		return order.ErrInvalidStatusTransition
	}
	if !lexicon.IsAffirmative(utterance, language) {
		return order.ErrConfirmationFailed
	}

	o.Voice.Confirmation.Confirmed = true
	o.Voice.Confirmation.Command = utterance
	o.Voice.Confirmation.OrderCommand = o.Voice.OriginalCommand
	o.Voice.Confirmation.Time = &at
	o.transition(OrderStatusConfirmed, "Order confirmed via voice command", o.UserID, at)
	return nil
}

// Cancel is allowed from pending or confirmed only.
func (o *Order) Cancel(reason, command, actor string, at time.Time) error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusConfirmed {
		return order.ErrInvalidStatusTransition
	}
	if reason == "" {
		reason = DefaultCancelReason
	}

	o.Cancellation = &Cancellation{Reason: reason, Command: command, Time: at}
	o.transition(OrderStatusCancelled, reason, actor, at)
	return nil
}

// Advance applies one merchant-driven step along
// confirmed -> preparing -> ready -> out_for_delivery -> delivered.
func (o *Order) Advance(next OrderStatus, note, actor string, at time.Time) error {
	if want, ok := merchantProgression[o.Status]; !ok || want != next {
		return order.ErrInvalidStatusTransition
	}
	o.transition(next, note, actor, at)
	return nil
}

func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// transition is the only writer of Status; the timeline entry is appended in
// the same step.
func (o *Order) transition(status OrderStatus, note, actor string, at time.Time) {
	o.Status = status
	o.Timeline = append(o.Timeline, TimelineEntry{
		Status:    status,
		Timestamp: at,
		Note:      note,
		UpdatedBy: actor,
	})
	o.UpdatedAt = at
}

// OrderNumber is the short reference read back to the customer.
func (o *Order) OrderNumber() string {
	if len(o.ID) <= 8 {
		return o.ID
	}
	return o.ID[len(o.ID)-8:]
}

type OrderFilter struct {
	UserID     string
	MerchantID string
	Status     string
	Limit      int
	Offset     int
}
