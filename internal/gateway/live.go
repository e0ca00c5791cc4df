package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/mebel/internal/apiclient"
	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/result"
	"github.com/oarkflow/mebel/internal/session"
	"github.com/oarkflow/mebel/internal/upload"
)

// Live is the HTTP strategy of Gateway.
type Live[R, F any] struct {
	client   *apiclient.Client
	session  *session.Context
	uploader *upload.Uploader
	schema   Schema[R, F]
}

// NewLive creates a live gateway for the resource described by schema.
func NewLive[R, F any](client *apiclient.Client, sess *session.Context, uploader *upload.Uploader, schema Schema[R, F]) *Live[R, F] {
	if uploader == nil {
		uploader = upload.NewUploader(client)
	}
	return &Live[R, F]{client: client, session: sess, uploader: uploader, schema: schema}
}

// Schema returns the mapping table in use.
func (g *Live[R, F]) Schema() Schema[R, F] {
	return g.schema
}

func (g *Live[R, F]) path(id ...int64) string {
	p := "/" + g.schema.Resource
	for _, part := range id {
		p += "/" + strconv.FormatInt(part, 10)
	}
	return p
}

// Params builds the backend query string for q.
func (g *Live[R, F]) Params(q listquery.Query) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(max(q.Page, 1)))
	v.Set("limit", strconv.Itoa(q.PageSize))
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	for _, f := range g.schema.Filters {
		if val := q.Filter(f.Name); val != "" && val != f.Sentinel {
			v.Set(f.Param, val)
		}
	}
	v.Set("sort_by", g.schema.sortParam(q.SortField))
	if q.SortOrder.Valid() {
		v.Set("sort_order", string(q.SortOrder))
	}
	return v
}

func (g *Live[R, F]) List(ctx context.Context, q listquery.Query) result.Result[result.Page[R]] {
	msgs := g.schema.Messages
	token, ok := g.session.Token()
	if !ok {
		return result.Fail[result.Page[R]](apierror.AuthError{Msg: msgs.NoTokenList})
	}

	resp, err := g.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   g.path(),
		Query:  g.Params(q),
		Token:  token,
	})
	if err != nil {
		return requestFailed[result.Page[R]](g.schema.Messages, err)
	}
	if !resp.OK() {
		return result.Fail[result.Page[R]](resp.Err(msgs.ListFailed))
	}

	rows, env, err := decodeRows(resp.Body)
	if err != nil {
		return result.Fail[result.Page[R]](fmt.Errorf("%s: %w", msgs.ListFailed, err))
	}

	records := make([]R, 0, len(rows))
	for _, row := range rows {
		records = append(records, g.schema.Decode(row))
	}

	log.Debug("Fetched page", "resource", g.schema.Resource, "page", q.Page, "records", len(records))

	return result.Success(result.Page[R]{
		Records:    records,
		Pagination: env.pagination(max(q.Page, 1), q.PageSize, len(records)),
	}, "")
}

func (g *Live[R, F]) Get(ctx context.Context, id int64) result.Result[R] {
	msgs := g.schema.Messages
	token, ok := g.session.Token()
	if !ok {
		return result.Fail[R](apierror.AuthError{Msg: msgs.NoTokenList})
	}

	resp, err := g.client.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: g.path(id), Token: token})
	if err != nil {
		return requestFailed[R](g.schema.Messages, err)
	}
	if !resp.OK() {
		return result.Fail[R](resp.Err(msgs.GetFailed))
	}
	return g.decodeOne(resp, "")
}

func (g *Live[R, F]) Create(ctx context.Context, fields F) result.Result[R] {
	msgs := g.schema.Messages
	token, ok := g.session.Token()
	if !ok {
		return result.Fail[R](apierror.AuthError{Msg: msgs.NoTokenMutation})
	}

	img, err := g.resolveImage(ctx, token, g.schema.ImageInput(fields))
	if err != nil {
		return result.Fail[R](err)
	}

	resp, err := g.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   g.path(),
		Token:  token,
		JSON:   g.schema.EncodeCreate(fields, img),
	})
	if err != nil {
		return requestFailed[R](g.schema.Messages, err)
	}
	if !resp.OK() {
		return result.Fail[R](resp.Err(msgs.CreateFailed))
	}

	log.Info("Created record", "resource", g.schema.Resource)
	return g.decodeOne(resp, msgs.Created)
}

func (g *Live[R, F]) Update(ctx context.Context, id int64, fields F) result.Result[R] {
	msgs := g.schema.Messages
	token, ok := g.session.Token()
	if !ok {
		return result.Fail[R](apierror.AuthError{Msg: msgs.NoTokenMutation})
	}

	img, err := g.resolveImage(ctx, token, g.schema.ImageInput(fields))
	if err != nil {
		return result.Fail[R](err)
	}

	resp, err := g.client.Do(ctx, apiclient.Request{
		Method: http.MethodPut,
		Path:   g.path(id),
		Token:  token,
		JSON:   g.schema.EncodeUpdate(fields, img),
	})
	if err != nil {
		return requestFailed[R](g.schema.Messages, err)
	}
	if !resp.OK() {
		return result.Fail[R](resp.Err(msgs.UpdateFailed))
	}

	log.Info("Updated record", "resource", g.schema.Resource, "id", id)
	return g.decodeOne(resp, msgs.Updated)
}

func (g *Live[R, F]) UpdateStatus(ctx context.Context, id int64, status Status) result.Result[R] {
	msgs := g.schema.Messages
	if !status.Toggleable() {
		return result.Fail[R](apierror.StatusError{Value: string(status)})
	}
	token, ok := g.session.Token()
	if !ok {
		return result.Fail[R](apierror.AuthError{Msg: msgs.NoTokenMutation})
	}

	body := map[string]any{g.schema.StatusField: string(status)}
	resp, err := g.client.Do(ctx, apiclient.Request{
		Method: http.MethodPatch,
		Path:   g.path(id) + "/status",
		Token:  token,
		JSON:   body,
	})
	if err != nil {
		return requestFailed[R](g.schema.Messages, err)
	}

	if !resp.OK() && g.schema.StatusFallback &&
		(resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed) {
		log.Debug("Status endpoint unavailable, falling back to PUT", "resource", g.schema.Resource, "status", resp.StatusCode)
		resp, err = g.client.Do(ctx, apiclient.Request{
			Method: http.MethodPut,
			Path:   g.path(id),
			Token:  token,
			JSON:   body,
		})
		if err != nil {
			return requestFailed[R](g.schema.Messages, err)
		}
	}
	if !resp.OK() {
		return result.Fail[R](resp.Err(msgs.StatusFailed))
	}

	log.Info("Changed status", "resource", g.schema.Resource, "id", id, "status", status)
	return g.decodeOne(resp, msgs.StatusUpdated)
}

func (g *Live[R, F]) Delete(ctx context.Context, id int64) result.Result[struct{}] {
	msgs := g.schema.Messages
	token, ok := g.session.Token()
	if !ok {
		return result.Fail[struct{}](apierror.AuthError{Msg: msgs.NoTokenMutation})
	}

	resp, err := g.client.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: g.path(id), Token: token})
	if err != nil {
		return requestFailed[struct{}](g.schema.Messages, err)
	}
	if !resp.OK() {
		return result.Fail[struct{}](resp.Err(msgs.DeleteFailed))
	}

	message := msgs.Deleted
	var body struct {
		Message string `json:"message"`
	}
	if err := resp.Decode(&body); err == nil && body.Message != "" {
		message = body.Message
	}

	log.Info("Deleted record", "resource", g.schema.Resource, "id", id)
	return result.Success(struct{}{}, message)
}

// decodeOne maps a single-record body. Bodies that are empty or not a
// record still count as success; the caller refreshes the list anyway.
func (g *Live[R, F]) decodeOne(resp *apiclient.Response, message string) result.Result[R] {
	var zero R
	var row Row
	if err := resp.Decode(&row); err != nil || len(row) == 0 {
		return result.Success(zero, message)
	}
	if inner, ok := row["data"].(map[string]any); ok {
		row = Row(inner)
	}
	return result.Success(g.schema.Decode(row), message)
}

// resolveImage uploads data URLs and passes stored references through. A
// blank input clears the image; anything unrecognized leaves it untouched.
func (g *Live[R, F]) resolveImage(ctx context.Context, token string, input *string) (Image, error) {
	if input == nil {
		return Image{}, nil
	}
	in := strings.TrimSpace(*input)
	switch {
	case in == "":
		return Image{Set: true}, nil
	case upload.IsDataURL(in):
		url, err := g.uploader.UploadDataURL(ctx, token, in, g.schema.UploadPrefix, g.schema.UploadLabel)
		if err != nil {
			return Image{}, err
		}
		return Image{Set: true, URL: &url}, nil
	case upload.IsReference(in):
		url := upload.NormalizeImageURL(in, g.schema.Placeholder)
		return Image{Set: true, URL: &url}, nil
	}
	log.Warn("Ignoring unrecognized image reference", "resource", g.schema.Resource, "value", in)
	return Image{}, nil
}

// requestFailed leads a transport failure with the generic message shown
// for unreachable backends; the cause stays available to errors.As.
func requestFailed[T any](msgs Messages, err error) result.Result[T] {
	if apierror.IsTransport(err) && msgs.Unexpected != "" {
		return result.Fail[T](fmt.Errorf("%s: %w", msgs.Unexpected, err))
	}
	return result.Fail[T](err)
}
