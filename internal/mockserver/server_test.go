package mockserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/mebel/internal/apiclient"
	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/auth"
	"github.com/oarkflow/mebel/internal/catalog"
	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/session"
	"github.com/oarkflow/mebel/internal/upload"
)

const pngDataURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type harness struct {
	server  *Server
	url     string
	client  *apiclient.Client
	session *session.Context
	auth    *auth.Live
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	opts.UploadDir = t.TempDir()
	opts.BasePath = "/api/v1"
	s, err := New(opts)
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	client := apiclient.New(srv.URL + "/api/v1")
	sess := session.NewMemory()
	return &harness{server: s, url: srv.URL, client: client, session: sess, auth: auth.NewLive(client, sess)}
}

func (h *harness) login(t *testing.T, email, password string) {
	t.Helper()
	res := h.auth.Login(context.Background(), email, password)
	require.True(t, res.OK(), res.Err())
}

func (h *harness) products() *gateway.Live[gateway.Product, gateway.ProductFields] {
	return gateway.NewLiveProducts(h.client, h.session, nil)
}

func (h *harness) users() *gateway.Live[gateway.User, gateway.UserFields] {
	return gateway.NewLiveUsers(h.client, h.session, nil, gateway.DefaultUserPassword)
}

func TestLoginAndMe(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	bad := h.auth.Login(ctx, "admin@mebel.id", "wrong")
	assert.False(t, bad.OK())
	assert.Equal(t, auth.MsgBadCredentials, bad.Err())

	res := h.auth.Login(ctx, "admin@mebel.id", "admin123")
	require.True(t, res.OK(), res.Err())
	assert.Equal(t, session.ViewDashboard, res.Data().Landing)

	me := h.auth.Me(ctx)
	require.True(t, me.OK(), me.Err())
	assert.Equal(t, "Admin Mebel", me.Data().Name)
	assert.Equal(t, "aktif", me.Data().Status)

	claims, err := h.session.Claims()
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	h := newHarness(t, Options{})
	res := h.auth.Login(context.Background(), "teguh.prakoso@mebel.id", gateway.DefaultUserPassword)
	assert.False(t, res.OK())
	assert.Equal(t, "Akun tidak aktif", res.Err())
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	h := newHarness(t, Options{})
	resp, err := http.Get(h.url + "/api/v1/products")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProductListThroughLiveGateway(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t, "admin@mebel.id", "admin123")
	gw := h.products()

	res := gw.List(context.Background(), listquery.Query{
		Page: 1, PageSize: 3, Search: "meja", SortField: gateway.SortPrice, SortOrder: listquery.Asc, Filters: map[string]string{},
	})
	require.True(t, res.OK(), res.Err())
	page := res.Data()
	assert.Equal(t, 4, page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Records, 3)
	assert.Equal(t, "Meja Belajar Anak", page.Records[0].Name)
	assert.True(t, page.Records[0].Price.LessThan(page.Records[1].Price))

	low := gw.List(context.Background(), listquery.Query{
		Page: 1, PageSize: 10, Filters: map[string]string{"status": "menipis"},
	})
	require.True(t, low.OK())
	assert.Equal(t, 3, low.Data().Pagination.TotalItems)
}

func TestProductLifecycle(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t, "admin@mebel.id", "admin123")
	gw := h.products()
	ctx := context.Background()

	created := gw.Create(ctx, gateway.ProductFields{
		Name:     gateway.Text("Kursi Teras"),
		Category: gateway.Text("Kursi"),
		Stock:    gateway.Num(7),
		Price:    gateway.Num("450000"),
		Image:    gateway.Text(pngDataURL),
	})
	require.True(t, created.OK(), created.Err())
	p := created.Data()
	assert.Equal(t, int64(15), p.ID)
	assert.Equal(t, int64(7), p.Stock)
	assert.Equal(t, gateway.StatusActive, p.Status)
	require.True(t, upload.IsUploadPath(p.Image), p.Image)

	stored := filepath.Join(h.server.opts.UploadDir, strings.TrimPrefix(p.Image, "/uploads/"))
	_, err := os.Stat(stored)
	require.NoError(t, err)
	resp, err := http.Get(h.url + p.Image)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	updated := gw.Update(ctx, p.ID, gateway.ProductFields{Stock: gateway.Num(2)})
	require.True(t, updated.OK(), updated.Err())
	assert.Equal(t, int64(2), updated.Data().Stock)
	assert.Equal(t, "Kursi Teras", updated.Data().Name)
	assert.Equal(t, p.Image, updated.Data().Image)

	off := gw.UpdateStatus(ctx, p.ID, gateway.StatusInactive)
	require.True(t, off.OK(), off.Err())
	assert.Equal(t, gateway.StatusInactive, off.Data().Status)

	deleted := gw.Delete(ctx, p.ID)
	require.True(t, deleted.OK())
	assert.Equal(t, "Produk berhasil dihapus", deleted.Message())

	missing := gw.Get(ctx, p.ID)
	assert.False(t, missing.OK())
	assert.True(t, apierror.IsNotFound(missing.Cause()))
}

func TestProductValidationErrorsAreJoined(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t, "admin@mebel.id", "admin123")

	res := h.products().Create(context.Background(), gateway.ProductFields{
		Name:     gateway.Text(""),
		Category: gateway.Text("Meja"),
		Price:    gateway.Num(0),
	})
	assert.False(t, res.OK())
	assert.Equal(t, http.StatusUnprocessableEntity, apierror.StatusOf(res.Cause()))
	assert.Contains(t, res.Err(), "nama_produk: field required")
	assert.Contains(t, res.Err(), "harga_satuan: ensure this value is greater than 0")
}

func TestNonAdminIsForbiddenFromMutations(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t, "nurul.azizah@mebel.id", "password123")

	list := h.products().List(context.Background(), listquery.Query{Page: 1, PageSize: 5})
	assert.True(t, list.OK(), list.Err())

	del := h.products().Delete(context.Background(), 1)
	assert.False(t, del.OK())
	assert.Equal(t, http.StatusForbidden, apierror.StatusOf(del.Cause()))

	users := h.users().List(context.Background(), listquery.Query{Page: 1, PageSize: 5})
	assert.Equal(t, http.StatusForbidden, apierror.StatusOf(users.Cause()))
}

func TestUserStatusFallsBackWhenPatchDisabled(t *testing.T) {
	h := newHarness(t, Options{DisableUserStatusPatch: true})
	h.login(t, "admin@mebel.id", "admin123")

	res := h.users().UpdateStatus(context.Background(), 2, gateway.StatusActive)
	require.True(t, res.OK(), res.Err())
	assert.Equal(t, gateway.StatusActive, res.Data().Status)

	// the reactivated user can now sign in
	fresh := auth.NewLive(h.client, session.NewMemory())
	assert.True(t, fresh.Login(context.Background(), "teguh.prakoso@mebel.id", gateway.DefaultUserPassword).OK())
}

func TestUserLifecycle(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t, "admin@mebel.id", "admin123")
	gw := h.users()
	ctx := context.Background()

	created := gw.Create(ctx, gateway.UserFields{
		Name:   gateway.Text("Putri Maharani"),
		Email:  gateway.Text("putri@mebel.id"),
		Phone:  gateway.Text("+628111"),
		Status: gateway.StatusPtr(gateway.StatusActive),
	})
	require.True(t, created.OK(), created.Err())
	id := created.Data().ID
	assert.Equal(t, gateway.RoleUser, created.Data().Role)

	dup := gw.Create(ctx, gateway.UserFields{
		Name:  gateway.Text("Putri Lain"),
		Email: gateway.Text("PUTRI@mebel.id"),
		Phone: gateway.Text("+628112"),
	})
	assert.False(t, dup.OK())
	assert.Equal(t, "Email sudah terdaftar", dup.Err())

	login := auth.NewLive(h.client, session.NewMemory()).Login(ctx, "putri@mebel.id", gateway.DefaultUserPassword)
	assert.True(t, login.OK(), login.Err())

	deleted := gw.Delete(ctx, id)
	require.True(t, deleted.OK(), deleted.Err())
	assert.Equal(t, "User berhasil dihapus", deleted.Message())

	self := gw.Delete(ctx, 1)
	assert.False(t, self.OK())
	assert.Equal(t, "Tidak dapat menghapus akun sendiri", self.Err())
}

func TestCatalogAgainstServer(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t, "nurul.azizah@mebel.id", "password123")
	c := catalog.NewLive(h.client, h.session)

	all := c.All(context.Background())
	require.True(t, all.OK(), all.Err())
	assert.Len(t, all.Data(), 14)

	detail := c.Detail(context.Background(), 1)
	require.True(t, detail.OK(), detail.Err())
	assert.Equal(t, "Meja Makan Jati Solid", detail.Data().Name)
	assert.Equal(t, "3400000", detail.Data().Price.String())
}

func TestUploadRejectsNonImages(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t, "admin@mebel.id", "admin123")
	tok, _ := h.session.Token()

	_, err := upload.NewUploader(h.client).Upload(context.Background(), tok, "notes.txt", "text/plain", []byte("hello"), "gambar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File harus berupa gambar")
}

func TestListRejectsOversizedLimit(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t, "admin@mebel.id", "admin123")
	tok, _ := h.session.Token()

	req, _ := http.NewRequest(http.MethodGet, h.url+"/api/v1/products?limit=500", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body map[string][]issue
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"query", "limit"}, body["detail"][0].Loc)
}
