package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/mebel/internal/apiclient"
	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/session"
	"github.com/oarkflow/mebel/internal/upload"
)

type captured struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   map[string]any
	File   string
}

// fakeBackend records requests and answers from a route table keyed by
// "METHOD /path".
type fakeBackend struct {
	mu       sync.Mutex
	requests []captured
	routes   map[string]func(w http.ResponseWriter)
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{routes: map[string]func(w http.ResponseWriter){}}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) on(route string, status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[route] = func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	c := captured{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Auth: r.Header.Get("Authorization")}
	if r.URL.Path == upload.ImagePath {
		if _, header, err := r.FormFile("file"); err == nil {
			c.File = header.Filename
		}
	} else if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&c.Body)
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, c)
	handler, ok := fb.routes[r.Method+" "+r.URL.Path]
	fb.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not Found"}`)
		return
	}
	handler(w)
}

func (fb *fakeBackend) all() []captured {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]captured(nil), fb.requests...)
}

func (fb *fakeBackend) last() captured {
	all := fb.all()
	return all[len(all)-1]
}

func loggedIn(t *testing.T) *session.Context {
	t.Helper()
	s := session.NewMemory()
	require.NoError(t, s.Set("tok", session.Profile{ID: 1, Role: "admin"}))
	return s
}

func productGateway(t *testing.T, srv *httptest.Server, sess *session.Context) *Live[Product, ProductFields] {
	t.Helper()
	client := apiclient.New(srv.URL)
	up := upload.NewUploader(client, upload.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))
	return NewLiveProducts(client, sess, up)
}

func productQuery() listquery.Query {
	return ProductSchema().View(10, listquery.Desc).Initial()
}

const productPage = `{
	"items": [
		{"id": 1, "nama_produk": "Meja Makan", "kategori": "Meja", "stok": "2", "harga_satuan": 3400000,
		 "status_produk": "menipis", "gambar": ["uploads/meja.jpg", "uploads/meja2.jpg"], "updated_at": "2025-01-06T09:00:00Z"},
		{"id": 2, "nama_produk": "Kursi", "kategori": "Kursi", "stok": 20, "harga_satuan": "300000",
		 "status_produk": "aktif", "gambar": []}
	],
	"total": 12, "page": 1, "pages": 2, "limit": 10
}`

func TestListBuildsQueryAndMapsRows(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("GET /products", http.StatusOK, productPage)
	g := productGateway(t, srv, loggedIn(t))

	q := productQuery()
	q.Search = "  meja "
	q.Filters["kategori"] = "Meja"
	q.Filters["status"] = AllStatuses
	q.SortField = SortPrice
	q.SortOrder = listquery.Asc

	res := g.List(context.Background(), q)
	require.True(t, res.OK(), res.Err())

	req := fb.last()
	assert.Equal(t, "Bearer tok", req.Auth)
	assert.Equal(t, "1", req.Query.Get("page"))
	assert.Equal(t, "10", req.Query.Get("limit"))
	assert.Equal(t, "meja", req.Query.Get("search"))
	assert.Equal(t, "Meja", req.Query.Get("kategori"))
	assert.False(t, req.Query.Has("status"), "sentinel is omitted")
	assert.Equal(t, "harga_satuan", req.Query.Get("sort_by"))
	assert.Equal(t, "asc", req.Query.Get("sort_order"))

	page := res.Data()
	require.Len(t, page.Records, 2)
	first := page.Records[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "Meja Makan", first.Name)
	assert.Equal(t, int64(2), first.Stock)
	assert.Equal(t, "3400000", first.Price.String())
	assert.Equal(t, StatusLowStock, first.Status)
	assert.Equal(t, "/uploads/meja.jpg", first.Image)
	assert.Equal(t, 2025, first.UpdatedAt.Year())
	assert.Equal(t, "300000", page.Records[1].Price.String())
	assert.Equal(t, upload.ProductPlaceholder, page.Records[1].Image)

	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 12, page.Pagination.TotalItems)
	assert.Equal(t, 10, page.Pagination.ItemsPerPage)
}

func TestListUnknownSortFallsBackAndEmptySearchOmitted(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("GET /products", http.StatusOK, `{"items":[]}`)
	g := productGateway(t, srv, loggedIn(t))

	q := productQuery()
	q.SortField = "warna"
	q.Search = "   "
	res := g.List(context.Background(), q)
	require.True(t, res.OK())

	req := fb.last()
	assert.Equal(t, "updated_at", req.Query.Get("sort_by"))
	assert.False(t, req.Query.Has("search"))
	assert.False(t, req.Query.Has("kategori"))
}

func TestListPaginationFallbacks(t *testing.T) {
	fb, srv := newFakeBackend(t)
	g := productGateway(t, srv, loggedIn(t))

	// bare array: counts come from the rows
	fb.on("GET /products", http.StatusOK, `[{"id":1,"nama_produk":"A"},{"id":2,"nama_produk":"B"}]`)
	res := g.List(context.Background(), productQuery())
	require.True(t, res.OK())
	p := res.Data().Pagination
	assert.Equal(t, 2, p.TotalItems)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 10, p.ItemsPerPage)

	// data envelope without pages: ceil(total/limit)
	fb.on("GET /products", http.StatusOK, `{"data":[{"id":1}],"total":25,"limit":10}`)
	res = g.List(context.Background(), productQuery())
	require.True(t, res.OK())
	p = res.Data().Pagination
	assert.Len(t, res.Data().Records, 1)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 25, p.TotalItems)

	// backend pages win even when inconsistent
	fb.on("GET /products", http.StatusOK, `{"items":[],"total":25,"limit":10,"pages":7}`)
	res = g.List(context.Background(), productQuery())
	assert.Equal(t, 7, res.Data().Pagination.TotalPages)
}

func TestListWithoutTokenMakesNoRequest(t *testing.T) {
	fb, srv := newFakeBackend(t)
	g := productGateway(t, srv, session.NewMemory())

	res := g.List(context.Background(), productQuery())
	assert.False(t, res.OK())
	assert.Equal(t, apierror.MsgNoTokenList, res.Err())
	assert.ErrorIs(t, res.Cause(), apierror.ErrNotAuthenticated)

	del := g.Delete(context.Background(), 1)
	assert.Equal(t, apierror.MsgNoTokenMutation, del.Err())
	assert.Empty(t, fb.all())
}

func TestListServerErrorMessage(t *testing.T) {
	fb, srv := newFakeBackend(t)
	g := productGateway(t, srv, loggedIn(t))

	fb.on("GET /products", http.StatusUnauthorized, `{"detail":"Token kedaluwarsa"}`)
	res := g.List(context.Background(), productQuery())
	assert.Equal(t, "Token kedaluwarsa", res.Err())
	assert.Equal(t, 401, apierror.StatusOf(res.Cause()))

	fb.on("GET /products", http.StatusInternalServerError, ``)
	res = g.List(context.Background(), productQuery())
	assert.Equal(t, "Gagal memuat produk", res.Err())
}

func TestListTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	g := productGateway(t, srv, loggedIn(t))
	srv.Close()

	res := g.List(context.Background(), productQuery())
	assert.False(t, res.OK())
	assert.True(t, apierror.IsTransport(res.Cause()))
	assert.True(t, strings.HasPrefix(res.Err(), ProductMessages.Unexpected+": "), res.Err())

	del := g.Delete(context.Background(), 1)
	assert.True(t, apierror.IsTransport(del.Cause()))
	assert.True(t, strings.HasPrefix(del.Err(), ProductMessages.Unexpected+": "), del.Err())
}

var pngPixel, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func TestCreateUploadsDataURLFirst(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("POST "+upload.ImagePath, http.StatusOK, `{"url":"/uploads/abc.png"}`)
	fb.on("POST /products", http.StatusCreated, `{"id":15,"nama_produk":"Meja Baru","gambar":["/uploads/abc.png"],"harga_satuan":500000}`)
	g := productGateway(t, srv, loggedIn(t))

	res := g.Create(context.Background(), ProductFields{
		Name:     Text("Meja Baru"),
		Category: Text("Meja"),
		Stock:    Num("7"),
		Price:    Num("500000"),
		Rating:   Num("abc"),
		Image:    Text("data:image/png;base64," + base64.StdEncoding.EncodeToString(pngPixel)),
	})
	require.True(t, res.OK(), res.Err())
	assert.Equal(t, "Produk berhasil ditambahkan", res.Message())
	assert.Equal(t, int64(15), res.Data().ID)
	assert.Equal(t, "/uploads/abc.png", res.Data().Image)

	reqs := fb.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, upload.ImagePath, reqs[0].Path)
	assert.Equal(t, "product_1700000000000.png", reqs[0].File)

	body := reqs[1].Body
	assert.Equal(t, []any{"/uploads/abc.png"}, body["gambar"])
	assert.Equal(t, "Meja Baru", body["nama_produk"])
	assert.Equal(t, float64(7), body["stok_awal"])
	assert.Equal(t, float64(500000), body["harga_satuan"])
	assert.Equal(t, float64(0), body["rating"], "invalid numbers coerce to zero")
	assert.Equal(t, "aktif", body["status_produk"])
	assert.Nil(t, body["deskripsi"])
	assert.Contains(t, body, "deskripsi")
}

func TestCreateWithURLSkipsUpload(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("POST /products", http.StatusCreated, ``)
	g := productGateway(t, srv, loggedIn(t))

	res := g.Create(context.Background(), ProductFields{
		Name:  Text("Rak"),
		Price: Num(1),
		Image: Text("uploads/rak.png"),
	})
	require.True(t, res.OK(), res.Err())
	reqs := fb.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, []any{"/uploads/rak.png"}, reqs[0].Body["gambar"])

	res = g.Create(context.Background(), ProductFields{Name: Text("Rak")})
	require.True(t, res.OK())
	assert.Equal(t, []any{}, fb.last().Body["gambar"])
}

func TestCreateAbortsWhenUploadFails(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("POST "+upload.ImagePath, http.StatusRequestEntityTooLarge, `file too large`)
	g := productGateway(t, srv, loggedIn(t))

	res := g.Create(context.Background(), ProductFields{
		Name:  Text("Meja"),
		Image: Text("data:image/png;base64," + base64.StdEncoding.EncodeToString(pngPixel)),
	})
	assert.False(t, res.OK())
	assert.Equal(t, "Gagal mengunggah gambar: file too large", res.Err())
	require.Len(t, fb.all(), 1, "the product is never created")
}

func TestCreateValidationErrorsAreJoined(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("POST /products", http.StatusUnprocessableEntity,
		`{"detail":[{"loc":["body","harga_satuan"],"msg":"must be positive"},{"loc":["body","kategori"],"msg":"field required"}]}`)
	g := productGateway(t, srv, loggedIn(t))

	res := g.Create(context.Background(), ProductFields{Name: Text("x")})
	assert.Equal(t, "harga_satuan: must be positive, kategori: field required", res.Err())
}

func TestUpdateSendsOnlyProvidedFields(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("PUT /products/5", http.StatusOK, `{"id":5,"stok":5}`)
	g := productGateway(t, srv, loggedIn(t))

	res := g.Update(context.Background(), 5, ProductFields{Stock: Num(5)})
	require.True(t, res.OK(), res.Err())
	assert.Equal(t, "Produk berhasil diperbarui", res.Message())
	assert.Equal(t, map[string]any{"stok": float64(5)}, fb.last().Body)

	res = g.Update(context.Background(), 5, ProductFields{Image: Text("")})
	require.True(t, res.OK())
	assert.Empty(t, fb.last().Body, "blank product image is not sent")
}

func TestUpdateStatusRejectsWithoutNetwork(t *testing.T) {
	fb, srv := newFakeBackend(t)
	g := productGateway(t, srv, loggedIn(t))

	res := g.UpdateStatus(context.Background(), 1, StatusLowStock)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Cause(), apierror.ErrInvalidStatus)
	res = g.UpdateStatus(context.Background(), 1, Status("rusak"))
	assert.False(t, res.OK())
	assert.Empty(t, fb.all())
}

func TestUpdateStatusPatches(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("PATCH /products/3/status", http.StatusOK, `{"id":3,"status_produk":"nonaktif"}`)
	g := productGateway(t, srv, loggedIn(t))

	res := g.UpdateStatus(context.Background(), 3, StatusInactive)
	require.True(t, res.OK(), res.Err())
	assert.Equal(t, "Status produk diperbarui", res.Message())
	assert.Equal(t, StatusInactive, res.Data().Status)
	assert.Equal(t, map[string]any{"status_produk": "nonaktif"}, fb.last().Body)

	// products have no PUT fallback
	fb.on("PATCH /products/3/status", http.StatusMethodNotAllowed, `{"detail":"Method Not Allowed"}`)
	res = g.UpdateStatus(context.Background(), 3, StatusActive)
	assert.Equal(t, "Method Not Allowed", res.Err())
	assert.Equal(t, http.MethodPatch, fb.last().Method)
}

func TestDeleteToleratesEmptyBody(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("DELETE /products/9", http.StatusNoContent, ``)
	g := productGateway(t, srv, loggedIn(t))

	res := g.Delete(context.Background(), 9)
	require.True(t, res.OK(), res.Err())
	assert.Equal(t, "Produk berhasil dihapus", res.Message())

	fb.on("DELETE /products/9", http.StatusOK, `{"message":"Produk dihapus permanen"}`)
	res = g.Delete(context.Background(), 9)
	assert.Equal(t, "Produk dihapus permanen", res.Message())

	fb.on("DELETE /products/9", http.StatusNotFound, `{"detail":"Produk tidak ditemukan"}`)
	res = g.Delete(context.Background(), 9)
	assert.Equal(t, "Produk tidak ditemukan", res.Err())
	assert.True(t, apierror.IsNotFound(res.Cause()))
}

func userGateway(t *testing.T, srv *httptest.Server) *Live[User, UserFields] {
	t.Helper()
	return NewLiveUsers(apiclient.New(srv.URL), loggedIn(t), nil, "")
}

func TestUserListAlwaysSortsByName(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("GET /users", http.StatusOK, `{"data":[{"id":4,"nama":"Lutfi","email":"l@x.id","noTelp":"+62","status_user":"aktif","photo_profile":"","created_at":"2024-12-25"}]}`)
	g := userGateway(t, srv)

	q := UserSchema("").View(10, listquery.Asc).Initial()
	q.SortField = "email"
	q.Filters["status"] = "nonaktif"
	res := g.List(context.Background(), q)
	require.True(t, res.OK(), res.Err())

	req := fb.last()
	assert.Equal(t, "nama", req.Query.Get("sort_by"))
	assert.Equal(t, "nonaktif", req.Query.Get("status"))

	u := res.Data().Records[0]
	assert.Equal(t, "+62", u.Phone)
	assert.Equal(t, upload.AvatarPlaceholder, u.Avatar)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, 2024, u.CreatedAt.Year())
}

func TestUserStatusFallsBackToPut(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusMethodNotAllowed} {
		fb, srv := newFakeBackend(t)
		fb.on("PATCH /users/7/status", status, `{"detail":"nope"}`)
		fb.on("PUT /users/7", http.StatusOK, `{"id":7,"status_user":"nonaktif"}`)
		g := userGateway(t, srv)

		res := g.UpdateStatus(context.Background(), 7, StatusInactive)
		require.True(t, res.OK(), res.Err())
		assert.Equal(t, "Status user diperbarui", res.Message())

		reqs := fb.all()
		require.Len(t, reqs, 2)
		assert.Equal(t, http.MethodPut, reqs[1].Method)
		assert.Equal(t, map[string]any{"status_user": "nonaktif"}, reqs[1].Body)
	}
}

func TestUserStatusNoFallbackOnOtherErrors(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("PATCH /users/7/status", http.StatusForbidden, `{"detail":"Hanya admin"}`)
	g := userGateway(t, srv)

	res := g.UpdateStatus(context.Background(), 7, StatusActive)
	assert.Equal(t, "Hanya admin", res.Err())
	assert.Len(t, fb.all(), 1)
}

func TestUserCreateAndUpdatePayloads(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.on("POST /users", http.StatusCreated, `{"id":9}`)
	fb.on("PUT /users/9", http.StatusOK, `{"id":9}`)
	g := userGateway(t, srv)

	res := g.Create(context.Background(), UserFields{
		Name:  Text("Sari"),
		Email: Text("sari@mebel.id"),
		Phone: Text("+62812"),
	})
	require.True(t, res.OK(), res.Err())
	assert.Equal(t, map[string]any{
		"nama":          "Sari",
		"email":         "sari@mebel.id",
		"no_telepon":    "+62812",
		"role":          "user",
		"password":      DefaultUserPassword,
		"status_user":   "nonaktif",
		"photo_profile": nil,
	}, fb.last().Body)

	res = g.Update(context.Background(), 9, UserFields{Avatar: Text(""), Password: Text("")})
	require.True(t, res.OK(), res.Err())
	assert.Equal(t, "User berhasil diupdate", res.Message())
	assert.Equal(t, map[string]any{"photo_profile": nil}, fb.last().Body)

	res = g.Update(context.Background(), 9, UserFields{Avatar: Text("https://cdn.x/a.png"), Status: StatusPtr(StatusActive)})
	require.True(t, res.OK())
	assert.Equal(t, map[string]any{"photo_profile": "https://cdn.x/a.png", "status_user": "aktif"}, fb.last().Body)
}
