package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/mebel/internal/catalog"
	"github.com/oarkflow/mebel/internal/dashboard"
	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/result"
)

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.Zero, "Rp0"},
		{decimal.NewFromInt(950), "Rp950"},
		{decimal.NewFromInt(3400000), "Rp3.400.000"},
		{decimal.RequireFromString("1149999.6"), "Rp1.150.000"},
		{decimal.NewFromInt(-25000), "-Rp25.000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRupiah(tt.in))
	}
}

func TestParseRupiah(t *testing.T) {
	for _, in := range []string{"Rp 1.500.000", "1,500,000", "1500000", "rp1.500.000"} {
		d, err := ParseRupiah(in)
		require.NoError(t, err, in)
		assert.Equal(t, "1500000", d.String(), in)
	}
	_, err := ParseRupiah("Rp")
	assert.Error(t, err)
	_, err = ParseRupiah("abc")
	assert.Error(t, err)
}

func TestProductsTable(t *testing.T) {
	var buf bytes.Buffer
	Products(&buf, result.Page[gateway.Product]{
		Records: gateway.ProductFixtures()[:2],
		Pagination: result.Pagination{
			CurrentPage: 1, TotalPages: 7, TotalItems: 14, ItemsPerPage: 2,
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Meja Makan Jati Solid")
	assert.Contains(t, out, "Rp3.400.000")
	assert.Contains(t, out, "menipis")
	assert.Contains(t, out, "Halaman 1 dari 7 (14 item)")
}

func TestEmptyFooter(t *testing.T) {
	assert.Contains(t, Footer(result.Pagination{}), "Tidak ada data")
}

func TestCatalogShowsDiscount(t *testing.T) {
	var buf bytes.Buffer
	Catalog(&buf, []catalog.Item{{
		ID: 1, Name: "Sofa", Price: decimal.NewFromInt(900000), OriginalPrice: decimal.NewFromInt(1000000), Discount: 10,
	}})
	out := buf.String()
	assert.Contains(t, out, "Rp900.000")
	assert.Contains(t, out, "Rp1.000.000")
	assert.Contains(t, out, "-10%")

	buf.Reset()
	Catalog(&buf, nil)
	assert.Contains(t, buf.String(), "Produk tidak ditemukan")
}

func TestDashboardShowsFailedTiles(t *testing.T) {
	var buf bytes.Buffer
	Dashboard(&buf, dashboard.Summary{
		Tiles: []dashboard.Tile{
			{Key: dashboard.TileProducts, Label: "Total Produk", Count: 14},
			{Key: dashboard.TileUsers, Label: "Total User", Err: "Akses ditolak"},
		},
		GeneratedAt: time.Now(),
	})
	out := buf.String()
	assert.Contains(t, out, "Total Produk")
	assert.Contains(t, out, "14")
	assert.Contains(t, out, "Akses ditolak")
}
