package gateway

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oarkflow/mebel/internal/apiclient"
	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/session"
	"github.com/oarkflow/mebel/internal/upload"
)

// Product is a furniture product as shown in the admin list.
type Product struct {
	ID                int64           `json:"id"`
	Name              string          `json:"nama"`
	Category          string          `json:"kategori"`
	Description       string          `json:"deskripsi,omitempty"`
	Unit              string          `json:"satuan,omitempty"`
	Stock             int64           `json:"stok"`
	LowStockThreshold int64           `json:"threshold_stok"`
	Price             decimal.Decimal `json:"harga"`
	Discount          int64           `json:"diskon"`
	Rating            float64         `json:"rating"`
	Sold              int64           `json:"jumlah_terjual"`
	Status            Status          `json:"status"`
	Image             string          `json:"gambar"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductFields are the editable product fields. Nil means "not provided";
// on update only provided fields are sent.
type ProductFields struct {
	Name              *string
	Category          *string
	Description       *string
	Unit              *string
	Stock             *NumberInput
	Price             *NumberInput
	LowStockThreshold *NumberInput
	Discount          *NumberInput
	Rating            *NumberInput
	Sold              *NumberInput
	Status            *Status
	// Image is a data URL to upload, an absolute or uploads URL to keep,
	// or "" to leave the product without a new image.
	Image *string
}

// Validate runs the form-level checks done before a create (full) or an
// update (only provided fields).
func (f ProductFields) Validate(create bool) error {
	if create || f.Name != nil {
		if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
			return apierror.ValidationError{Field: "nama", Msg: "Nama produk wajib diisi"}
		}
	}
	if create && (f.Category == nil || strings.TrimSpace(*f.Category) == "" || *f.Category == AllCategories) {
		return apierror.ValidationError{Field: "kategori", Msg: "Kategori wajib dipilih"}
	}
	if f.Stock != nil && f.Stock.Int() < 0 {
		return apierror.ValidationError{Field: "stok", Msg: "Stok tidak boleh negatif"}
	}
	if create || f.Price != nil {
		if !f.Price.Decimal().IsPositive() {
			return apierror.ValidationError{Field: "harga", Msg: "Harga harus lebih dari 0"}
		}
	}
	if f.Status != nil {
		if _, err := ParseStatus(string(*f.Status)); err != nil {
			return apierror.ValidationError{Field: "status", Msg: err.Error()}
		}
	}
	return nil
}

// AdjustedStock applies a stock addition or reduction, never below zero.
func AdjustedStock(current, amount int64, add bool) int64 {
	if add {
		return current + amount
	}
	return max(0, current-amount)
}

// Product sort fields as offered by the list view.
const (
	SortUpdatedAt = "updated_at"
	SortName      = "nama"
	SortPrice     = "harga"
	SortStock     = "stok"
	SortCategory  = "kategori"
)

// ProductMessages are the product strings shown to the user.
var ProductMessages = Messages{
	NoTokenList:     apierror.MsgNoTokenList,
	NoTokenMutation: apierror.MsgNoTokenMutation,
	ListFailed:      "Gagal memuat produk",
	GetFailed:       "Gagal memuat detail produk",
	CreateFailed:    "Gagal menambah produk",
	UpdateFailed:    "Gagal memperbarui produk",
	StatusFailed:    "Gagal mengubah status",
	DeleteFailed:    "Gagal menghapus produk",
	Created:         "Produk berhasil ditambahkan",
	Updated:         "Produk berhasil diperbarui",
	StatusUpdated:   "Status produk diperbarui",
	Deleted:         "Produk berhasil dihapus",
	Entity:          "Product",
	Unexpected:      "Terjadi kesalahan saat memuat data",
}

// ProductFilters are the product list filters.
var ProductFilters = []FilterParam{
	{Name: "kategori", Param: "kategori", Sentinel: AllCategories},
	{Name: "status", Param: "status", Sentinel: AllStatuses},
}

// ProductSchema maps products onto the /products endpoints.
func ProductSchema() Schema[Product, ProductFields] {
	return Schema[Product, ProductFields]{
		Resource: "products",
		SortFields: map[string]string{
			SortUpdatedAt: "updated_at",
			SortName:      "nama_produk",
			SortPrice:     "harga_satuan",
			SortStock:     "stok",
			SortCategory:  "kategori",
		},
		DefaultSort:  SortUpdatedAt,
		Filters:      ProductFilters,
		StatusField:  "status_produk",
		UploadPrefix: "product",
		UploadLabel:  "gambar",
		Placeholder:  upload.ProductPlaceholder,
		Decode:       DecodeProduct,
		ImageInput:   func(f ProductFields) *string { return f.Image },
		EncodeCreate: encodeProductCreate,
		EncodeUpdate: encodeProductUpdate,
		Messages:     ProductMessages,
	}
}

// DecodeProduct maps a backend product row.
func DecodeProduct(r Row) Product {
	raw, _ := r.Raw("gambar")
	return Product{
		ID:                r.Int("id"),
		Name:              r.String("nama_produk", "nama"),
		Category:          r.String("kategori"),
		Description:       r.String("deskripsi"),
		Unit:              r.String("satuan"),
		Stock:             r.Int("stok"),
		LowStockThreshold: r.Int("threshold_stok"),
		Price:             r.Decimal("harga_satuan", "harga"),
		Discount:          r.Int("diskon"),
		Rating:            r.Float("rating"),
		Sold:              r.Int("jumlah_terjual"),
		Status:            Status(r.String("status_produk", "status")),
		Image:             upload.NormalizeImageURL(raw, upload.ProductPlaceholder),
		UpdatedAt:         r.Time("updated_at"),
	}
}

func encodeProductCreate(f ProductFields, img Image) map[string]any {
	images := []string{}
	if img.Set && img.URL != nil {
		images = []string{*img.URL}
	}

	var description any
	if f.Description != nil && *f.Description != "" {
		description = *f.Description
	}

	status := StatusActive
	if f.Status != nil && *f.Status != "" {
		status = *f.Status
	}

	payload := map[string]any{
		"nama_produk":    deref(f.Name),
		"kategori":       deref(f.Category),
		"deskripsi":      description,
		"harga_satuan":   numberJSON(f.Price.Decimal()),
		"stok_awal":      f.Stock.Int(),
		"gambar":         images,
		"status_produk":  string(status),
		"threshold_stok": f.LowStockThreshold.Int(),
		"diskon":         numberJSON(f.Discount.Decimal()),
		"rating":         numberJSON(f.Rating.Decimal()),
		"jumlah_terjual": f.Sold.Int(),
	}
	if f.Unit != nil && *f.Unit != "" {
		payload["satuan"] = *f.Unit
	}
	return payload
}

func encodeProductUpdate(f ProductFields, img Image) map[string]any {
	payload := map[string]any{}
	if f.Name != nil {
		payload["nama_produk"] = *f.Name
	}
	if f.Category != nil {
		payload["kategori"] = *f.Category
	}
	if f.Description != nil {
		if *f.Description == "" {
			payload["deskripsi"] = nil
		} else {
			payload["deskripsi"] = *f.Description
		}
	}
	if f.Unit != nil {
		payload["satuan"] = *f.Unit
	}
	if f.Price != nil {
		payload["harga_satuan"] = numberJSON(f.Price.Decimal())
	}
	if f.Stock != nil {
		payload["stok"] = f.Stock.Int()
	}
	if f.Status != nil {
		payload["status_produk"] = string(*f.Status)
	}
	if f.LowStockThreshold != nil {
		payload["threshold_stok"] = f.LowStockThreshold.Int()
	}
	if f.Discount != nil {
		payload["diskon"] = numberJSON(f.Discount.Decimal())
	}
	if f.Rating != nil {
		payload["rating"] = numberJSON(f.Rating.Decimal())
	}
	if f.Sold != nil {
		payload["jumlah_terjual"] = f.Sold.Int()
	}
	// products cannot clear their image through an update
	if img.Set && img.URL != nil {
		payload["gambar"] = []string{*img.URL}
	}
	return payload
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ProductAdapter is the MockAdapter for products.
type ProductAdapter struct {
	Now func() time.Time
}

func (a ProductAdapter) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (ProductAdapter) ID(p Product) int64 { return p.ID }

func (ProductAdapter) Match(p Product, q listquery.Query) bool {
	if s := strings.TrimSpace(q.Search); s != "" &&
		!strings.Contains(strings.ToLower(p.Name), strings.ToLower(s)) {
		return false
	}
	if c := q.Filter("kategori"); c != "" && c != AllCategories && p.Category != c {
		return false
	}
	if st := q.Filter("status"); st != "" && st != AllStatuses && string(p.Status) != st {
		return false
	}
	return true
}

func (ProductAdapter) Less(field string) func(a, b Product) bool {
	switch field {
	case SortName:
		return func(a, b Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortCategory:
		return func(a, b Product) bool { return strings.ToLower(a.Category) < strings.ToLower(b.Category) }
	case SortPrice:
		return func(a, b Product) bool { return a.Price.LessThan(b.Price) }
	case SortStock:
		return func(a, b Product) bool { return a.Stock < b.Stock }
	default:
		return func(a, b Product) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
}

func (a ProductAdapter) Build(id int64, f ProductFields) Product {
	p := Product{ID: id, Status: StatusActive}
	p = a.Apply(p, f)
	if p.Image == "" {
		p.Image = upload.ProductPlaceholder
	}
	return p
}

func (a ProductAdapter) Apply(p Product, f ProductFields) Product {
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Category != nil {
		p.Category = *f.Category
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Unit != nil {
		p.Unit = *f.Unit
	}
	if f.Stock != nil {
		p.Stock = f.Stock.Int()
	}
	if f.Price != nil {
		p.Price = f.Price.Decimal()
	}
	if f.LowStockThreshold != nil {
		p.LowStockThreshold = f.LowStockThreshold.Int()
	}
	if f.Discount != nil {
		p.Discount = f.Discount.Int()
	}
	if f.Rating != nil {
		p.Rating = f.Rating.Float()
	}
	if f.Sold != nil {
		p.Sold = f.Sold.Int()
	}
	if f.Status != nil && *f.Status != "" {
		p.Status = *f.Status
	}
	if f.Image != nil && strings.TrimSpace(*f.Image) != "" {
		p.Image = upload.NormalizeImageURL(*f.Image, upload.ProductPlaceholder)
	}
	p.UpdatedAt = a.now()
	return p
}

func (ProductAdapter) ImageField() MockImage[ProductFields] {
	return MockImage[ProductFields]{
		Get:    func(f ProductFields) *string { return f.Image },
		Set:    func(f ProductFields, v *string) ProductFields { f.Image = v; return f },
		Prefix: "product",
		Label:  "gambar",
	}
}

func (a ProductAdapter) WithStatus(p Product, s Status) Product {
	p.Status = s
	p.UpdatedAt = a.now()
	return p
}

// NewLiveProducts creates the HTTP product gateway.
func NewLiveProducts(client *apiclient.Client, sess *session.Context, uploader *upload.Uploader) *Live[Product, ProductFields] {
	return NewLive(client, sess, uploader, ProductSchema())
}

// NewMockProducts creates the in-memory product gateway over seed (or the
// built-in fixtures when seed is nil).
func NewMockProducts(seed []Product, opts ...MockOption) *Mock[Product, ProductFields] {
	if seed == nil {
		seed = ProductFixtures()
	}
	return NewMock[Product, ProductFields](ProductAdapter{}, ProductMessages, seed, opts...)
}
