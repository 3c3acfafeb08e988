package orderRepository

import (
	"VoiceCommerce/internal/entity"
	contextPkg "VoiceCommerce/pkg/context"
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const defaultProductSearchLimit = 5

type ProductDB struct {
	ID                sql.NullString  `db:"id"`
	MerchantID        sql.NullString  `db:"merchant_id"`
	Name              sql.NullString  `db:"name"`
	AlternativeNames  sql.NullString  `db:"alternative_names"`
	VoicePatterns     sql.NullString  `db:"voice_patterns"`
	Category          sql.NullString  `db:"category"`
	Unit              sql.NullString  `db:"unit"`
	Price             sql.NullFloat64 `db:"price"`
	StockQuantity     sql.NullFloat64 `db:"stock_quantity"`
	LowStockThreshold sql.NullFloat64 `db:"low_stock_threshold"`
	IsActive          sql.NullBool    `db:"is_active"`
	CreatedAt         time.Time       `db:"created_at"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *productRepository) SearchProducts(ctx context.Context, q entity.ProductQuery) ([]entity.Product, error) {
	requestID := contextPkg.GetRequestID(ctx)

	limit := q.Limit
	if limit <= 0 {
		limit = defaultProductSearchLimit
	}

	var maxPrice sql.NullFloat64
	if q.MaxPrice != nil {
		maxPrice = sql.NullFloat64{Float64: *q.MaxPrice, Valid: true}
	}

	name := strings.TrimSpace(q.Name)
	argsKV := map[string]interface{}{
		"name":      name,
		"pattern":   "%" + likeEscaper.Replace(name) + "%",
		"category":  q.Category,
		"max_price": maxPrice,
		"limit":     limit,
	}

	query, args, err := sqlx.Named(querySearchProducts, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("SearchProducts named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []ProductDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"product":    name,
			"error":      err.Error(),
		}).Error("SearchProducts execution err")
		return nil, err
	}

	products := make([]entity.Product, 0, len(rows))
	for _, row := range rows {
		p, err := r.makeProduct(row)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"product_id": row.ID.String,
				"error":      err.Error(),
			}).Error("Failed to decode product row")
			return nil, err
		}
		products = append(products, p)
	}

	return products, nil
}

func (r *productRepository) makeProduct(row ProductDB) (entity.Product, error) {
	p := entity.Product{
		ID:         row.ID.String,
		MerchantID: row.MerchantID.String,
		Name:       row.Name.String,
		Category:   row.Category.String,
		Unit:       row.Unit.String,
		Price:      row.Price.Float64,
		Stock: entity.Stock{
			Quantity:          row.StockQuantity.Float64,
			LowStockThreshold: row.LowStockThreshold.Float64,
		},
		IsActive:  row.IsActive.Bool,
		CreatedAt: row.CreatedAt,
	}

	if row.AlternativeNames.Valid && row.AlternativeNames.String != "" {
		if err := json.Unmarshal([]byte(row.AlternativeNames.String), &p.AlternativeNames); err != nil {
			return entity.Product{}, err
		}
	}
	if row.VoicePatterns.Valid && row.VoicePatterns.String != "" {
		if err := json.Unmarshal([]byte(row.VoicePatterns.String), &p.VoicePatterns); err != nil {
			return entity.Product{}, err
		}
	}

	return p, nil
}
