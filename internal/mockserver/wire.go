package mockserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/result"
)

// MaxPageSize is the largest accepted limit.
const MaxPageSize = 100

// issue is one entry of a 422 detail list.
type issue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type issues []issue

func (is *issues) add(where, field, msg string) {
	*is = append(*is, issue{Loc: []string{where, field}, Msg: msg, Type: "value_error"})
}

func (is issues) abort(c *gin.Context) bool {
	if len(is) == 0 {
		return false
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": is})
	return true
}

// readBody decodes a JSON object keeping numbers exact.
func readBody(c *gin.Context) (gateway.Row, bool) {
	var row gateway.Row
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&row); err != nil || row == nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []issue{{
			Loc: []string{"body"}, Msg: "Body harus berupa objek JSON", Type: "type_error",
		}}})
		return nil, false
	}
	return row, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []issue{{
			Loc: []string{"path", "id"}, Msg: "ID tidak valid", Type: "type_error",
		}}})
		return 0, false
	}
	return id, true
}

// fail writes the error a gateway result carries.
func fail(c *gin.Context, err error) {
	switch {
	case apierror.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case apierror.IsValidation(err), errors.Is(err, apierror.ErrInvalidStatus):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

// listQuery parses page, limit, search, sort and the named filters.
func listQuery(c *gin.Context, sorts map[string]string, defaultSort string, filters ...string) (listquery.Query, bool) {
	var is issues
	page, limit := 1, listquery.DefaultPageSize
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			is.add("query", "page", "ensure this value is greater than or equal to 1")
		}
		page = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPageSize {
			is.add("query", "limit", "ensure this value is between 1 and 100")
		}
		limit = n
	}

	sortField := defaultSort
	if v := c.Query("sort_by"); v != "" {
		field, ok := sorts[v]
		if !ok {
			is.add("query", "sort_by", "unsupported sort field")
		}
		sortField = field
	}
	order := listquery.Desc
	if v := c.Query("sort_order"); v != "" {
		o, ok := listquery.ParseSortOrder(v)
		if !ok {
			is.add("query", "sort_order", "must be asc or desc")
		}
		order = o
	}
	if is.abort(c) {
		return listquery.Query{}, false
	}

	q := listquery.Query{
		Page:      page,
		PageSize:  limit,
		Search:    strings.TrimSpace(c.Query("search")),
		Filters:   map[string]string{},
		SortField: sortField,
		SortOrder: order,
	}
	for _, f := range filters {
		if v := c.Query(f); v != "" {
			q.Filters[f] = v
		}
	}
	return q, true
}

func envelope[R any](page result.Page[R], encode func(R) gin.H) gin.H {
	items := make([]gin.H, 0, len(page.Records))
	for _, r := range page.Records {
		items = append(items, encode(r))
	}
	p := page.Pagination
	return gin.H{
		"items": items,
		"total": p.TotalItems,
		"page":  p.CurrentPage,
		"limit": p.ItemsPerPage,
		"pages": p.TotalPages,
	}
}

func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// number validates an optional numeric field. Present but unparseable
// values are reported.
func number(is *issues, row gateway.Row, key string) (*gateway.NumberInput, decimal.Decimal) {
	raw, ok := row.Raw(key)
	if !ok {
		return nil, decimal.Zero
	}
	n := gateway.Num(raw)
	d, err := decimal.NewFromString(strings.TrimSpace(string(*n)))
	if err != nil {
		is.add("body", key, "value is not a valid number")
		return nil, decimal.Zero
	}
	return n, d
}

// text returns an optional string field; explicit null yields "".
func text(row gateway.Row, key string) *string {
	v, ok := row[key]
	if !ok {
		return nil
	}
	s, _ := v.(string)
	return &s
}

func status(is *issues, row gateway.Row, key string) *gateway.Status {
	v := text(row, key)
	if v == nil {
		return nil
	}
	st, err := gateway.ParseStatus(*v)
	if err != nil {
		is.add("body", key, err.Error())
		return nil
	}
	return &st
}
