package orderService

import (
	"VoiceCommerce/internal/api/order"
	orderRepository "VoiceCommerce/internal/api/order/repository"
	"VoiceCommerce/internal/api/voice"
	"VoiceCommerce/internal/entity"
	"VoiceCommerce/pkg/nlp"
	"VoiceCommerce/pkg/utils"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type IOrderService interface {
	CreateVoiceOrder(ctx context.Context, userID string, req order.CreateVoiceOrderRequest) (*VoiceOrderResult, error)
	ConfirmOrder(ctx context.Context, userID, orderID string, req order.ConfirmOrderRequest) (*VoiceOrderResult, error)
	CancelOrder(ctx context.Context, userID, orderID string, req order.CancelOrderRequest) (*VoiceOrderResult, error)
	AdvanceOrderStatus(ctx context.Context, merchantID, orderID string, req order.UpdateOrderStatusRequest) (*entity.Order, error)

	SyncOfflineOrders(ctx context.Context, userID string, req order.SyncOrdersRequest) (*SyncResult, error)

	ListOrders(ctx context.Context, userID string, q order.ListOrdersQuery) (*OrderList, error)
	GetOrder(ctx context.Context, userID, orderID string) (*entity.Order, error)
}

// Interpreter is the slice of the voice service the order flow needs.
type Interpreter interface {
	Interpret(ctx context.Context, userID, utterance string, locale nlp.Locale) (*voice.Interpretation, error)
	Respond(ctx context.Context, userID string, in *voice.Interpretation, text string, metadata map[string]interface{}) voice.Reply
	ResetDialogue(ctx context.Context, userID string) error
}

type Notifier interface {
	Notify(ctx context.Context, userID string, kind entity.NotificationType, title, message string, data map[string]interface{}) error
}

type VoiceOrderResult struct {
	Order            *entity.Order        `json:"order,omitempty"`
	ProcessedCommand nlp.ProcessedCommand `json:"processed_command"`
	Reply            voice.Reply          `json:"voice_response"`
	DroppedItems     []string             `json:"dropped_items,omitempty"`
}

type SyncResult struct {
	SyncedOrders []entity.Order `json:"synced_orders"`
	Count        int            `json:"count"`
	Message      string         `json:"message"`
}

type OrderList struct {
	Orders []entity.Order `json:"orders"`
	Total  int            `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

type orderService struct {
	log         *logrus.Logger
	orderRepo   orderRepository.Repository
	interpreter Interpreter
	offline     nlp.Engine
	lexicon     nlp.Lexicon
	resolver    *ItemResolver
	notifier    Notifier
	utils       utils.IUtils
	now         func() time.Time
}

// NewOrderService builds the order flow. offline is the engine used to
// replay device queues; it is normally the rule engine the device runs.
func NewOrderService(
	log *logrus.Logger,
	orderRepo orderRepository.Repository,
	interpreter Interpreter,
	offline nlp.Engine,
	notifier Notifier,
	utils utils.IUtils,
) IOrderService {
	return &orderService{
		log:         log,
		orderRepo:   orderRepo,
		interpreter: interpreter,
		offline:     offline,
		lexicon:     nlp.DefaultLexicon(),
		resolver:    NewItemResolver(repoCatalog{repo: orderRepo}),
		notifier:    notifier,
		utils:       utils,
		now:         time.Now,
	}
}
