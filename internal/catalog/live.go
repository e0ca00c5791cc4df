package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/oarkflow/mebel/internal/apiclient"
	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/result"
	"github.com/oarkflow/mebel/internal/session"
)

// Live reads the catalog from GET /products.
type Live struct {
	client  *apiclient.Client
	session *session.Context
}

// NewLive creates the HTTP catalog.
func NewLive(client *apiclient.Client, sess *session.Context) *Live {
	return &Live{client: client, session: sess}
}

func baseQuery() url.Values {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("limit", strconv.Itoa(PageLimit))
	return q
}

func (c *Live) All(ctx context.Context) result.Result[[]Item] {
	q := baseQuery()
	q.Set("sort_by", "updated_at")
	q.Set("sort_order", "desc")
	return c.list(ctx, q, MsgListFailed)
}

func (c *Live) Search(ctx context.Context, text string) result.Result[[]Item] {
	q := baseQuery()
	if s := strings.TrimSpace(text); s != "" {
		q.Set("search", s)
	}
	return c.list(ctx, q, MsgSearchFailed)
}

func (c *Live) ByCategory(ctx context.Context, category string) result.Result[[]Item] {
	q := baseQuery()
	if category != "" && category != gateway.AllCategories {
		q.Set("kategori", category)
	}
	return c.list(ctx, q, MsgCategoryFailed)
}

func (c *Live) Detail(ctx context.Context, id int64) result.Result[Detail] {
	token, ok := c.session.Token()
	if !ok {
		return result.Fail[Detail](apierror.AuthError{Msg: apierror.MsgNoTokenList})
	}

	resp, err := c.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/products/%d", id),
		Token:  token,
	})
	if err != nil {
		return result.Fail[Detail](err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return result.Fail[Detail](apierror.NotFoundError{Resource: "Product", ID: id})
	}
	if !resp.OK() {
		return result.Fail[Detail](resp.Err(MsgDetailFailed))
	}

	row, err := gateway.DecodeRecord(resp.Body)
	if err != nil {
		return result.Fail[Detail](err)
	}
	return result.Success(DetailFromRow(row), "")
}

func (c *Live) list(ctx context.Context, q url.Values, fallback string) result.Result[[]Item] {
	token, ok := c.session.Token()
	if !ok {
		return result.Fail[[]Item](apierror.AuthError{Msg: apierror.MsgNoTokenList})
	}

	resp, err := c.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/products",
		Query:  q,
		Token:  token,
	})
	if err != nil {
		return result.Fail[[]Item](err)
	}
	if !resp.OK() {
		return result.Fail[[]Item](resp.Err(fallback))
	}

	rows, err := gateway.DecodeRows(resp.Body)
	if err != nil {
		return result.Fail[[]Item](err)
	}
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, ItemFromRow(r))
	}
	return result.Success(items, "")
}
