package orderRepository

import (
	"VoiceCommerce/internal/entity"
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
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
		Orders:   &orderRepository{q: sqlExecutor, log: r.log},
		Products: &productRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o entity.Order) error
	GetOrderByID(ctx context.Context, id string) (entity.Order, error)
	ListOrders(ctx context.Context, filter entity.OrderFilter) ([]entity.Order, int, error)
	UpdateOrderState(ctx context.Context, o entity.Order, expected entity.OrderStatus) error
	FindUnsyncedPlaceholder(ctx context.Context, userID, deviceID, voiceCommand string) (entity.Order, error)
}

type ProductStore interface {
	SearchProducts(ctx context.Context, q entity.ProductQuery) ([]entity.Product, error)
}

type Client struct {
	Orders   OrderStore
	Products ProductStore

	Commit   func() error
	Rollback func() error
}

type orderRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type productRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
