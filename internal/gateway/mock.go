package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/memstore"
	"github.com/oarkflow/mebel/internal/result"
	"github.com/oarkflow/mebel/internal/session"
	"github.com/oarkflow/mebel/internal/upload"
)

// MockAdapter teaches Mock how to treat one record type.
type MockAdapter[R, F any] interface {
	ID(R) int64
	Match(R, listquery.Query) bool
	// Less orders records ascending by a view sort field.
	Less(field string) func(a, b R) bool
	Build(id int64, fields F) R
	Apply(R, F) R
	WithStatus(R, Status) R
	ImageField() MockImage[F]
}

// MockImage exposes the image input of F. Mock stores inline images the way
// the backend's upload endpoint does and hands Build/Apply a reference.
type MockImage[F any] struct {
	Get    func(F) *string
	Set    func(F, *string) F
	Prefix string
	Label  string
}

// Mock is the in-memory strategy of Gateway, used for offline development
// and demos.
type Mock[R, F any] struct {
	table    *memstore.Table[R]
	adapter  MockAdapter[R, F]
	messages Messages
	session  *session.Context
	latency  time.Duration

	mu      sync.RWMutex
	uploads map[string][]byte
}

// MockOption configures a Mock
type MockOption func(*mockOptions)

type mockOptions struct {
	session *session.Context
	latency time.Duration
}

// WithLatency delays every call, to make loading states visible.
func WithLatency(d time.Duration) MockOption {
	return func(o *mockOptions) {
		o.latency = d
	}
}

// WithSession makes the mock require a session token like the live backend.
func WithSession(s *session.Context) MockOption {
	return func(o *mockOptions) {
		o.session = s
	}
}

// NewMock creates a mock gateway over seed records.
func NewMock[R, F any](adapter MockAdapter[R, F], messages Messages, seed []R, opts ...MockOption) *Mock[R, F] {
	var o mockOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Mock[R, F]{
		table:    memstore.New(adapter.ID, seed...),
		adapter:  adapter,
		messages: messages,
		session:  o.session,
		latency:  o.latency,
		uploads:  make(map[string][]byte),
	}
}

// Uploaded returns the bytes stored for an image reference created by this
// mock.
func (m *Mock[R, F]) Uploaded(ref string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.uploads[ref]
	return data, ok
}

// resolveImage replaces a data URL with a stored /uploads reference and
// drops values that are neither, matching the live gateway.
func (m *Mock[R, F]) resolveImage(fields F) (F, error) {
	img := m.adapter.ImageField()
	input := img.Get(fields)
	if input == nil {
		return fields, nil
	}
	in := strings.TrimSpace(*input)
	switch {
	case in == "":
		return img.Set(fields, &in), nil
	case upload.IsReference(in):
		return img.Set(fields, &in), nil
	case upload.IsDataURL(in):
		mimeType, data, err := upload.ParseDataURL(in)
		if err != nil {
			return fields, &upload.Error{Label: img.Label, Err: err}
		}
		if !strings.HasPrefix(mimeType, "image/") {
			return fields, &upload.Error{Label: img.Label, Err: fmt.Errorf("unsupported type %s", mimeType)}
		}
		ref := "/uploads/" + upload.FileName(img.Prefix, mimeType, time.Now())
		m.mu.Lock()
		m.uploads[ref] = data
		m.mu.Unlock()
		return img.Set(fields, &ref), nil
	}
	log.Warn("Ignoring unrecognized image reference", "value", in)
	return img.Set(fields, nil), nil
}

func (m *Mock[R, F]) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mock[R, F]) authorize(msg string) error {
	if m.session == nil {
		return nil
	}
	if _, ok := m.session.Token(); !ok {
		return apierror.AuthError{Msg: msg}
	}
	return nil
}

func (m *Mock[R, F]) notFound(id int64) error {
	return apierror.NotFoundError{Resource: m.messages.Entity, ID: id}
}

func (m *Mock[R, F]) List(ctx context.Context, q listquery.Query) result.Result[result.Page[R]] {
	if err := m.authorize(m.messages.NoTokenList); err != nil {
		return result.Fail[result.Page[R]](err)
	}
	if err := m.wait(ctx); err != nil {
		return result.Fail[result.Page[R]](err)
	}

	limit := q.PageSize
	if limit <= 0 {
		limit = listquery.DefaultPageSize
	}
	page := max(q.Page, 1)

	less := m.adapter.Less(q.SortField)
	if less != nil && q.SortOrder == listquery.Desc {
		asc := less
		less = func(a, b R) bool { return asc(b, a) }
	}

	records, total := m.table.List(memstore.Query[R]{
		Match: func(r R) bool { return m.adapter.Match(r, q) },
		Less:  less,
		Page:  page,
		Limit: limit,
	})

	return result.Success(result.Page[R]{
		Records: records,
		Pagination: result.Pagination{
			CurrentPage:  page,
			TotalPages:   result.TotalPages(total, limit),
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	}, "")
}

func (m *Mock[R, F]) Get(ctx context.Context, id int64) result.Result[R] {
	if err := m.authorize(m.messages.NoTokenList); err != nil {
		return result.Fail[R](err)
	}
	if err := m.wait(ctx); err != nil {
		return result.Fail[R](err)
	}
	r, err := m.table.Get(id)
	if err != nil {
		return result.Fail[R](m.notFound(id))
	}
	return result.Success(r, "")
}

func (m *Mock[R, F]) Create(ctx context.Context, fields F) result.Result[R] {
	if err := m.authorize(m.messages.NoTokenMutation); err != nil {
		return result.Fail[R](err)
	}
	if err := m.wait(ctx); err != nil {
		return result.Fail[R](err)
	}
	fields, err := m.resolveImage(fields)
	if err != nil {
		return result.Fail[R](err)
	}
	created := m.table.Insert(func(id int64) R { return m.adapter.Build(id, fields) })
	return result.Success(created, m.messages.Created)
}

func (m *Mock[R, F]) Update(ctx context.Context, id int64, fields F) result.Result[R] {
	if err := m.authorize(m.messages.NoTokenMutation); err != nil {
		return result.Fail[R](err)
	}
	if err := m.wait(ctx); err != nil {
		return result.Fail[R](err)
	}
	fields, err := m.resolveImage(fields)
	if err != nil {
		return result.Fail[R](err)
	}
	updated, err := m.table.Update(id, func(r R) R { return m.adapter.Apply(r, fields) })
	if err != nil {
		return result.Fail[R](m.mapErr(id, err))
	}
	return result.Success(updated, m.messages.Updated)
}

func (m *Mock[R, F]) UpdateStatus(ctx context.Context, id int64, status Status) result.Result[R] {
	if !status.Toggleable() {
		return result.Fail[R](apierror.StatusError{Value: string(status)})
	}
	if err := m.authorize(m.messages.NoTokenMutation); err != nil {
		return result.Fail[R](err)
	}
	if err := m.wait(ctx); err != nil {
		return result.Fail[R](err)
	}
	updated, err := m.table.Update(id, func(r R) R { return m.adapter.WithStatus(r, status) })
	if err != nil {
		return result.Fail[R](m.mapErr(id, err))
	}
	return result.Success(updated, m.messages.StatusUpdated)
}

func (m *Mock[R, F]) Delete(ctx context.Context, id int64) result.Result[struct{}] {
	if err := m.authorize(m.messages.NoTokenMutation); err != nil {
		return result.Fail[struct{}](err)
	}
	if err := m.wait(ctx); err != nil {
		return result.Fail[struct{}](err)
	}
	if err := m.table.Delete(id); err != nil {
		return result.Fail[struct{}](m.mapErr(id, err))
	}
	return result.Success(struct{}{}, m.messages.Deleted)
}

func (m *Mock[R, F]) mapErr(id int64, err error) error {
	if errors.Is(err, memstore.ErrNotFound) {
		return m.notFound(id)
	}
	return err
}
