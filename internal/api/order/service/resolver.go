package orderService

import (
	orderRepository "VoiceCommerce/internal/api/order/repository"
	"VoiceCommerce/internal/entity"
	"VoiceCommerce/pkg/nlp"
	"context"
	"strings"
)

// Catalog is the product lookup the resolver depends on. Results are ordered
// and the first element is authoritative.
type Catalog interface {
	SearchProducts(ctx context.Context, q entity.ProductQuery) ([]entity.Product, error)
}

type ResolvedItem struct {
	Product entity.Product
	Item    entity.OrderItem
}

type ItemResolver struct {
	catalog Catalog
}

func NewItemResolver(catalog Catalog) *ItemResolver {
	return &ItemResolver{catalog: catalog}
}

// Resolve maps a product slot to the first matching active catalog entry.
// A nil item with a nil error means nothing matched.
func (r *ItemResolver) Resolve(ctx context.Context, product *nlp.ProductSlot, quantity *nlp.QuantitySlot, ref entity.VoiceCommandRef) (*ResolvedItem, error) {
	if product == nil || strings.TrimSpace(product.Name) == "" {
		return nil, nil
	}

	candidates, err := r.catalog.SearchProducts(ctx, entity.ProductQuery{
		Name:     product.Name,
		Category: product.Category,
		MaxPrice: product.MaxPrice,
		Limit:    1,
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	p := candidates[0]
	unit := p.Unit
	if quantity != nil && quantity.Unit != "" {
		unit = quantity.Unit
	}

	return &ResolvedItem{
		Product: p,
		Item: entity.OrderItem{
			ProductID:    p.ID,
			Name:         p.Name,
			Quantity:     orderedQuantity(quantity),
			Unit:         unit,
			Price:        p.Price,
			VoiceCommand: ref,
		},
	}, nil
}

// orderedQuantity takes the stated value, the lower bound of a range, or 1.
func orderedQuantity(q *nlp.QuantitySlot) float64 {
	if q == nil {
		return 1
	}
	switch q.Kind {
	case nlp.QuantityRange:
		if q.Min != nil && *q.Min > 0 {
			return *q.Min
		}
	default:
		if q.Value != nil && *q.Value > 0 {
			return *q.Value
		}
	}
	return 1
}

// repoCatalog reads products through a non-transactional repository client.
type repoCatalog struct {
	repo orderRepository.Repository
}

func (c repoCatalog) SearchProducts(ctx context.Context, q entity.ProductQuery) ([]entity.Product, error) {
	client, err := c.repo.NewClient(false)
	if err != nil {
		return nil, err
	}
	return client.Products.SearchProducts(ctx, q)
}
