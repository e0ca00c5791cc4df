package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/session"
	"github.com/oarkflow/mebel/internal/upload"
)

func mejaSeed() []Product {
	var seed []Product
	for i := 1; i <= 12; i++ {
		seed = append(seed, Product{ID: int64(i), Name: fmt.Sprintf("Meja %02d", i), Category: "Meja", Price: decimal.NewFromInt(int64(i * 1000)), Status: StatusActive})
	}
	for i := 13; i <= 15; i++ {
		seed = append(seed, Product{ID: int64(i), Name: fmt.Sprintf("Kursi %02d", i), Category: "Kursi", Status: StatusActive})
	}
	return seed
}

func TestMockSearchPaginates(t *testing.T) {
	g := NewMockProducts(mejaSeed())
	q := productQuery()
	q.Search = "meja"

	res := g.List(context.Background(), q)
	require.True(t, res.OK())
	page := res.Data()
	assert.Len(t, page.Records, 10)
	assert.Equal(t, 12, page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 1, page.Pagination.CurrentPage)

	q.Page = 2
	res = g.List(context.Background(), q)
	assert.Len(t, res.Data().Records, 2)
}

func TestMockFiltersAndSorts(t *testing.T) {
	g := NewMockProducts(mejaSeed())
	q := productQuery()
	q.Filters["kategori"] = "Kursi"
	res := g.List(context.Background(), q)
	assert.Equal(t, 3, res.Data().Pagination.TotalItems)

	q = productQuery()
	q.Filters["kategori"] = AllCategories
	q.SortField = SortPrice
	q.SortOrder = listquery.Desc
	res = g.List(context.Background(), q)
	require.True(t, res.OK())
	assert.Equal(t, 15, res.Data().Pagination.TotalItems)
	assert.Equal(t, "Meja 12", res.Data().Records[0].Name)

	q.SortOrder = listquery.Asc
	q.SortField = SortName
	res = g.List(context.Background(), q)
	assert.Equal(t, "Kursi 13", res.Data().Records[0].Name)
}

func TestMockMutations(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	g := NewMock[Product, ProductFields](ProductAdapter{Now: func() time.Time { return fixed }}, ProductMessages, mejaSeed())

	created := g.Create(ctx, ProductFields{Name: Text("Lemari Baru"), Category: Text("Lemari"), Stock: Num(3), Price: Num(900000)})
	require.True(t, created.OK())
	assert.Equal(t, int64(16), created.Data().ID)
	assert.Equal(t, StatusActive, created.Data().Status)
	assert.Equal(t, "Produk berhasil ditambahkan", created.Message())

	updated := g.Update(ctx, 16, ProductFields{Stock: Num(1)})
	require.True(t, updated.OK())
	assert.Equal(t, int64(1), updated.Data().Stock)
	assert.Equal(t, "Lemari Baru", updated.Data().Name)
	assert.Equal(t, fixed, updated.Data().UpdatedAt)

	st := g.UpdateStatus(ctx, 16, StatusInactive)
	require.True(t, st.OK())
	assert.Equal(t, StatusInactive, st.Data().Status)
	assert.False(t, g.UpdateStatus(ctx, 16, StatusLowStock).OK())

	missing := g.Update(ctx, 99, ProductFields{Stock: Num(1)})
	assert.Equal(t, "Product not found", missing.Err())
	assert.True(t, apierror.IsNotFound(missing.Cause()))

	del := g.Delete(ctx, 16)
	require.True(t, del.OK())
	assert.Equal(t, "Produk berhasil dihapus", del.Message())
	assert.False(t, g.Get(ctx, 16).OK())
	assert.False(t, g.Delete(ctx, 16).OK())
}

func TestMockRequiresSessionWhenGiven(t *testing.T) {
	sess := session.NewMemory()
	g := NewMockUsers(nil, WithSession(sess))
	res := g.List(context.Background(), UserSchema("").View(10, listquery.Asc).Initial())
	assert.ErrorIs(t, res.Cause(), apierror.ErrNotAuthenticated)

	require.NoError(t, sess.Set("tok", session.Profile{ID: 1}))
	res = g.List(context.Background(), UserSchema("").View(10, listquery.Asc).Initial())
	require.True(t, res.OK())
	assert.Equal(t, len(UserFixtures()), res.Data().Pagination.TotalItems)
	assert.Equal(t, "Admin Mebel", res.Data().Records[0].Name)
}

func TestMockUserSearchMatchesEmail(t *testing.T) {
	g := NewMockUsers(nil)
	q := UserSchema("").View(10, listquery.Asc).Initial()
	q.Search = "AZIZAH@"
	res := g.List(context.Background(), q)
	require.True(t, res.OK())
	require.Len(t, res.Data().Records, 1)
	assert.Equal(t, "Nurul Azizah", res.Data().Records[0].Name)

	created := g.Create(context.Background(), UserFields{Name: Text("Budi"), Email: Text("budi@mebel.id")})
	require.True(t, created.OK())
	assert.Equal(t, StatusInactive, created.Data().Status)
	assert.Contains(t, created.Data().Avatar, "name=Budi")

	cleared := g.Update(context.Background(), created.Data().ID, UserFields{Avatar: Text("")})
	assert.NotContains(t, cleared.Data().Avatar, "Budi")
}

func TestMockStoresDataURLAsUploadReference(t *testing.T) {
	g := NewMockProducts([]Product{})
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngPixel)

	created := g.Create(context.Background(), ProductFields{
		Name:     Text("Meja Lipat"),
		Category: Text("Meja"),
		Price:    Num(450000),
		Stock:    Num(3),
		Image:    Text(dataURL),
	})
	require.True(t, created.OK(), created.Err())
	img := created.Data().Image
	assert.False(t, strings.HasPrefix(img, "data:"), img)
	assert.True(t, strings.HasPrefix(img, "/uploads/product_"), img)
	assert.True(t, strings.HasSuffix(img, ".png"), img)
	stored, ok := g.Uploaded(img)
	require.True(t, ok)
	assert.Equal(t, pngPixel, stored)

	id := created.Data().ID
	kept := g.Update(context.Background(), id, ProductFields{Image: Text("not a url")})
	require.True(t, kept.OK())
	assert.Equal(t, img, kept.Data().Image)

	bad := g.Update(context.Background(), id, ProductFields{Image: Text("data:text/plain;base64,aGFsbw==")})
	require.False(t, bad.OK())
	var uploadErr *upload.Error
	assert.ErrorAs(t, bad.Cause(), &uploadErr)

	users := NewMockUsers(nil)
	avatar := users.Update(context.Background(), 1, UserFields{Avatar: Text(dataURL)})
	require.True(t, avatar.OK())
	assert.True(t, strings.HasPrefix(avatar.Data().Avatar, "/uploads/user_"), avatar.Data().Avatar)
}

func TestMockLatencyHonoursContext(t *testing.T) {
	g := NewMockProducts(nil, WithLatency(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := g.List(ctx, productQuery())
	assert.ErrorIs(t, res.Cause(), context.Canceled)
}

func TestValidateFields(t *testing.T) {
	ok := ProductFields{Name: Text("Meja"), Category: Text("Meja"), Stock: Num(0), Price: Num(10)}
	assert.NoError(t, ok.Validate(true))
	assert.True(t, apierror.IsValidation(ProductFields{Name: Text(" "), Category: Text("Meja"), Price: Num(1)}.Validate(true)))
	assert.Error(t, ProductFields{Name: Text("Meja"), Category: Text(AllCategories), Price: Num(1)}.Validate(true))
	assert.Error(t, ProductFields{Name: Text("Meja"), Category: Text("Meja"), Price: Num(0)}.Validate(true))
	assert.Error(t, ProductFields{Stock: Num(-1)}.Validate(false))
	assert.NoError(t, ProductFields{Stock: Num(5)}.Validate(false))

	assert.NoError(t, UserFields{Name: Text("A"), Email: Text("a@b.id"), Phone: Text("1")}.Validate(true))
	assert.Error(t, UserFields{Name: Text("A"), Email: Text("not-an-email"), Phone: Text("1")}.Validate(true))
	assert.Error(t, UserFields{Name: Text("A"), Email: Text("a@b.id")}.Validate(true))
	assert.NoError(t, UserFields{Status: StatusPtr(StatusActive)}.Validate(false))
	assert.Error(t, UserFields{Status: StatusPtr(StatusLowStock)}.Validate(false))
}

func TestAdjustedStock(t *testing.T) {
	assert.Equal(t, int64(8), AdjustedStock(5, 3, true))
	assert.Equal(t, int64(2), AdjustedStock(5, 3, false))
	assert.Equal(t, int64(0), AdjustedStock(2, 5, false))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Menipis ")
	require.NoError(t, err)
	assert.Equal(t, StatusLowStock, s)
	_, err = ParseStatus("hapus")
	assert.ErrorIs(t, err, apierror.ErrInvalidStatus)
}
