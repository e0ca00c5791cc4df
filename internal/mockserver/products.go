package mockserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oarkflow/mebel/internal/catalog"
	"github.com/oarkflow/mebel/internal/gateway"
)

// productSorts maps wire sort_by values to gateway sort fields.
var productSorts = map[string]string{
	"updated_at":   gateway.SortUpdatedAt,
	"nama_produk":  gateway.SortName,
	"harga_satuan": gateway.SortPrice,
	"stok":         gateway.SortStock,
	"kategori":     gateway.SortCategory,
}

func productRow(p gateway.Product) gin.H {
	images := []string{}
	if p.Image != "" {
		images = append(images, p.Image)
	}
	var description any
	if p.Description != "" {
		description = p.Description
	}
	return gin.H{
		"id":                   p.ID,
		"nama_produk":          p.Name,
		"kategori":             p.Category,
		"deskripsi":            description,
		"satuan":               p.Unit,
		"stok":                 p.Stock,
		"threshold_stok":       p.LowStockThreshold,
		"harga_satuan":         json.Number(p.Price.String()),
		"diskon":               p.Discount,
		"harga_setelah_diskon": json.Number(catalog.DiscountedPrice(p.Price, p.Discount).String()),
		"rating":               p.Rating,
		"jumlah_terjual":       p.Sold,
		"status_produk":        p.Status,
		"gambar":               images,
		"updated_at":           timestamp(p.UpdatedAt),
	}
}

// productFields reads a create (stok_awal) or update (stok) body.
func productFields(row gateway.Row, create bool) (gateway.ProductFields, issues) {
	var is issues
	f := gateway.ProductFields{
		Name:        text(row, "nama_produk"),
		Category:    text(row, "kategori"),
		Description: text(row, "deskripsi"),
		Unit:        text(row, "satuan"),
		Status:      status(&is, row, "status_produk"),
	}

	stockKey := "stok"
	if create {
		stockKey = "stok_awal"
	}
	stock, stockVal := number(&is, row, stockKey)
	price, priceVal := number(&is, row, "harga_satuan")
	discount, discountVal := number(&is, row, "diskon")
	f.Stock, f.Price, f.Discount = stock, price, discount
	f.LowStockThreshold, _ = number(&is, row, "threshold_stok")
	f.Rating, _ = number(&is, row, "rating")
	f.Sold, _ = number(&is, row, "jumlah_terjual")

	if create || f.Name != nil {
		if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
			is.add("body", "nama_produk", "field required")
		}
	}
	if create || f.Category != nil {
		if f.Category == nil || strings.TrimSpace(*f.Category) == "" {
			is.add("body", "kategori", "field required")
		}
	}
	if create && price == nil {
		is.add("body", "harga_satuan", "field required")
	} else if price != nil && !priceVal.IsPositive() {
		is.add("body", "harga_satuan", "ensure this value is greater than 0")
	}
	if stock != nil && stockVal.IsNegative() {
		is.add("body", stockKey, "ensure this value is greater than or equal to 0")
	}
	if discount != nil && (discountVal.IsNegative() || discountVal.IntPart() > 100) {
		is.add("body", "diskon", "ensure this value is between 0 and 100")
	}

	if v, ok := row["gambar"]; ok {
		var image string
		switch g := v.(type) {
		case []any:
			if len(g) > 0 {
				image, _ = g[0].(string)
			}
		case string:
			image = g
		}
		f.Image = &image
	}
	return f, is
}

func (s *Server) listProducts(c *gin.Context) {
	q, ok := listQuery(c, productSorts, gateway.SortUpdatedAt, "kategori", "status")
	if !ok {
		return
	}
	res := s.products.List(c.Request.Context(), q)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	c.JSON(http.StatusOK, envelope(res.Data(), productRow))
}

func (s *Server) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res := s.products.Get(c.Request.Context(), id)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	c.JSON(http.StatusOK, productRow(res.Data()))
}

func (s *Server) createProduct(c *gin.Context) {
	row, ok := readBody(c)
	if !ok {
		return
	}
	fields, is := productFields(row, true)
	if is.abort(c) {
		return
	}
	res := s.products.Create(c.Request.Context(), fields)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	c.JSON(http.StatusCreated, productRow(res.Data()))
}

func (s *Server) updateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, ok := readBody(c)
	if !ok {
		return
	}
	fields, is := productFields(row, false)
	if is.abort(c) {
		return
	}
	res := s.products.Update(c.Request.Context(), id, fields)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	c.JSON(http.StatusOK, productRow(res.Data()))
}

func (s *Server) patchProductStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, ok := readBody(c)
	if !ok {
		return
	}
	var is issues
	st := status(&is, row, "status_produk")
	if st == nil && len(is) == 0 {
		is.add("body", "status_produk", "field required")
	}
	if is.abort(c) {
		return
	}
	res := s.products.UpdateStatus(c.Request.Context(), id, *st)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	c.JSON(http.StatusOK, productRow(res.Data()))
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res := s.products.Delete(c.Request.Context(), id)
	if !res.OK() {
		fail(c, res.Cause())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": res.Message()})
}
