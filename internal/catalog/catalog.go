// Package catalog is the read-only storefront view of the products.
package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/result"
	"github.com/oarkflow/mebel/internal/upload"
)

// PageLimit is the most items a storefront listing asks for.
const PageLimit = 100

// Failure messages
const (
	MsgListFailed     = "Gagal memuat produk"
	MsgSearchFailed   = "Gagal mencari produk"
	MsgCategoryFailed = "Gagal memuat produk berdasarkan kategori"
	MsgDetailFailed   = "Gagal memuat detail produk"
)

// Item is a product card.
type Item struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Discount      int64           `json:"discount"`
	Rating        float64         `json:"rating"`
	TotalReviews  int64           `json:"totalReviews"`
	Image         string          `json:"image"`
}

// Discounted reports whether the card shows a struck-through price.
func (i Item) Discounted() bool {
	return i.Discount > 0 && i.Price.LessThan(i.OriginalPrice)
}

// Detail is the product detail page.
type Detail struct {
	Item
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Unit        string         `json:"unit"`
	Stock       int64          `json:"stock"`
	Status      gateway.Status `json:"status"`
	Images      []string       `json:"images"`
}

// Catalog is implemented by Live and Backed.
type Catalog interface {
	All(ctx context.Context) result.Result[[]Item]
	Search(ctx context.Context, text string) result.Result[[]Item]
	ByCategory(ctx context.Context, category string) result.Result[[]Item]
	Detail(ctx context.Context, id int64) result.Result[Detail]
}

// DiscountedPrice applies a percentage discount, rounded to whole rupiah.
func DiscountedPrice(price decimal.Decimal, percent int64) decimal.Decimal {
	if percent <= 0 {
		return price
	}
	if percent >= 100 {
		return decimal.Zero
	}
	factor := decimal.NewFromInt(100 - percent).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(0)
}

// ItemFromRow maps a backend product record, preferring the backend's own
// discounted price.
func ItemFromRow(r gateway.Row) Item {
	original := r.Decimal("harga_satuan")
	price := original
	if _, ok := r.Raw("harga_setelah_diskon"); ok {
		price = r.Decimal("harga_setelah_diskon")
	}
	raw, _ := r.Raw("gambar")
	return Item{
		ID:            r.Int("id"),
		Name:          r.String("nama_produk", "nama"),
		Price:         price,
		OriginalPrice: original,
		Discount:      r.Int("diskon"),
		Rating:        r.Float("rating"),
		TotalReviews:  r.Int("jumlah_terjual"),
		Image:         upload.NormalizeImageURL(raw, upload.ProductPlaceholder),
	}
}

// DetailFromRow maps a single product record.
func DetailFromRow(r gateway.Row) Detail {
	d := Detail{
		Item:        ItemFromRow(r),
		Category:    r.String("kategori"),
		Description: r.String("deskripsi"),
		Unit:        r.String("satuan"),
		Stock:       r.Int("stok"),
		Status:      gateway.Status(r.String("status_produk", "status")),
	}
	if list, ok := r["gambar"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				d.Images = append(d.Images, upload.NormalizeImageURL(s, upload.ProductPlaceholder))
			}
		}
	}
	if len(d.Images) == 0 {
		d.Images = []string{d.Image}
	}
	return d
}

// ItemFromProduct maps an admin product to a card.
func ItemFromProduct(p gateway.Product) Item {
	return Item{
		ID:            p.ID,
		Name:          p.Name,
		Price:         DiscountedPrice(p.Price, p.Discount),
		OriginalPrice: p.Price,
		Discount:      p.Discount,
		Rating:        p.Rating,
		TotalReviews:  p.Sold,
		Image:         upload.NormalizeImageURL(p.Image, upload.ProductPlaceholder),
	}
}

// DetailFromProduct maps an admin product to a detail page.
func DetailFromProduct(p gateway.Product) Detail {
	item := ItemFromProduct(p)
	return Detail{
		Item:        item,
		Category:    p.Category,
		Description: p.Description,
		Unit:        p.Unit,
		Stock:       p.Stock,
		Status:      p.Status,
		Images:      []string{item.Image},
	}
}
