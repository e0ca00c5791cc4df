package catalog

import (
	"context"

	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/result"
)

// Backed serves the catalog from a product gateway. The mock mode uses it
// over the in-memory products so both views share one dataset.
type Backed struct {
	products gateway.Gateway[gateway.Product, gateway.ProductFields]
}

// NewBacked creates a catalog over products.
func NewBacked(products gateway.Gateway[gateway.Product, gateway.ProductFields]) *Backed {
	return &Backed{products: products}
}

func query() listquery.Query {
	return listquery.Query{
		Page:      1,
		PageSize:  PageLimit,
		SortField: gateway.SortUpdatedAt,
		SortOrder: listquery.Desc,
		Filters:   map[string]string{},
	}
}

func (c *Backed) All(ctx context.Context) result.Result[[]Item] {
	return c.list(ctx, query())
}

func (c *Backed) Search(ctx context.Context, text string) result.Result[[]Item] {
	q := query()
	q.Search = text
	return c.list(ctx, q)
}

func (c *Backed) ByCategory(ctx context.Context, category string) result.Result[[]Item] {
	q := query()
	if category != gateway.AllCategories {
		q.Filters["kategori"] = category
	}
	return c.list(ctx, q)
}

func (c *Backed) Detail(ctx context.Context, id int64) result.Result[Detail] {
	res := c.products.Get(ctx, id)
	if !res.OK() {
		return result.Fail[Detail](res.Cause())
	}
	return result.Success(DetailFromProduct(res.Data()), "")
}

func (c *Backed) list(ctx context.Context, q listquery.Query) result.Result[[]Item] {
	res := c.products.List(ctx, q)
	if !res.OK() {
		return result.Fail[[]Item](res.Cause())
	}
	records := res.Data().Records
	items := make([]Item, 0, len(records))
	for _, p := range records {
		items = append(items, ItemFromProduct(p))
	}
	return result.Success(items, "")
}
