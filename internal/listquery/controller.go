package listquery

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/result"
)

// Lister fetches one page of records for a query.
type Lister[R any] interface {
	List(ctx context.Context, q Query) result.Result[result.Page[R]]
}

// ListerFunc adapts a function to Lister.
type ListerFunc[R any] func(ctx context.Context, q Query) result.Result[result.Page[R]]

func (f ListerFunc[R]) List(ctx context.Context, q Query) result.Result[result.Page[R]] {
	return f(ctx, q)
}

// State is a snapshot of a controller.
type State[R any] struct {
	Query      Query
	Records    []R
	Pagination result.Pagination
	Loading    bool
	Mutating   bool
	Err        string
	// FilterValues holds every view filter with the sentinel restored for
	// cleared ones, for display.
	FilterValues map[string]string
}

// Controller owns the query of one list view and applies fetch results.
// Only the result of the most recently issued fetch is ever applied; a
// superseded fetch has its context cancelled and its outcome dropped.
type Controller[R any] struct {
	lister Lister[R]
	view   View

	mu         sync.Mutex
	query      Query
	records    []R
	pagination result.Pagination
	loading    bool
	mutating   bool
	errText    string
	seq        uint64
	cancel     context.CancelFunc
	listeners  []func(State[R])
	wg         sync.WaitGroup
}

// New creates a controller with the view's initial query. Nothing is fetched
// until Load.
func New[R any](lister Lister[R], view View) *Controller[R] {
	q := view.Initial()
	return &Controller[R]{
		lister:     lister,
		view:       view,
		query:      q,
		pagination: result.Pagination{CurrentPage: 1, ItemsPerPage: q.PageSize},
	}
}

// OnChange registers a listener called after every state transition.
func (c *Controller[R]) OnChange(fn func(State[R])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns a snapshot.
func (c *Controller[R]) State() State[R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller[R]) stateLocked() State[R] {
	values := make(map[string]string, len(c.view.Filters))
	for _, f := range c.view.Filters {
		if v, ok := c.query.Filters[f.Name]; ok {
			values[f.Name] = v
		} else {
			values[f.Name] = f.Sentinel
		}
	}
	records := make([]R, len(c.records))
	copy(records, c.records)
	return State[R]{
		Query:        c.query.Clone(),
		Records:      records,
		Pagination:   c.pagination,
		Loading:      c.loading,
		Mutating:     c.mutating,
		Err:          c.errText,
		FilterValues: values,
	}
}

// Load issues the initial fetch.
func (c *Controller[R]) Load(ctx context.Context) {
	c.Refresh(ctx)
}

// Refresh re-issues the current query unchanged.
func (c *Controller[R]) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.fetchLocked(ctx)
}

// SetSearchText replaces the search text and goes back to page 1.
func (c *Controller[R]) SetSearchText(ctx context.Context, text string) {
	c.mu.Lock()
	c.query.Search = text
	c.query.Page = 1
	c.fetchLocked(ctx)
}

// SetFilter sets a named filter and goes back to page 1. The view's sentinel
// (or an empty value) clears the filter.
func (c *Controller[R]) SetFilter(ctx context.Context, name, value string) error {
	f, ok := c.view.filter(name)
	if !ok {
		return fmt.Errorf("unknown filter %q", name)
	}

	c.mu.Lock()
	if value == "" || value == f.Sentinel {
		delete(c.query.Filters, name)
	} else {
		c.query.Filters[name] = value
	}
	c.query.Page = 1
	c.fetchLocked(ctx)
	return nil
}

// SetSortField changes the sort field. The page is kept.
func (c *Controller[R]) SetSortField(ctx context.Context, field string) error {
	if !c.view.sortable(field) {
		return fmt.Errorf("cannot sort by %q", field)
	}
	c.mu.Lock()
	c.query.SortField = field
	c.fetchLocked(ctx)
	return nil
}

// SetSortOrder sets the order explicitly. The page is kept.
func (c *Controller[R]) SetSortOrder(ctx context.Context, order SortOrder) error {
	if !order.Valid() {
		return fmt.Errorf("invalid sort order %q", order)
	}
	c.mu.Lock()
	c.query.SortOrder = order
	c.fetchLocked(ctx)
	return nil
}

// ToggleSortOrder flips asc/desc. The page is kept.
func (c *Controller[R]) ToggleSortOrder(ctx context.Context) {
	c.mu.Lock()
	c.query.SortOrder = c.query.SortOrder.Toggle()
	c.fetchLocked(ctx)
}

// SetPage moves to page n clamped into [1, totalPages]. Nothing is fetched
// when the clamped page is the current one or a fetch is in flight. It
// reports whether a fetch was issued.
func (c *Controller[R]) SetPage(ctx context.Context, n int) bool {
	c.mu.Lock()
	total := c.pagination.TotalPages
	if total < 1 {
		total = 1
	}
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	if n == c.query.Page || c.loading {
		c.mu.Unlock()
		return false
	}
	c.query.Page = n
	c.fetchLocked(ctx)
	return true
}

// Wait blocks until every issued fetch has returned.
func (c *Controller[R]) Wait() {
	c.wg.Wait()
}

// fetchLocked must be called with c.mu held; it releases it.
func (c *Controller[R]) fetchLocked(ctx context.Context) {
	if c.cancel != nil {
		c.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.seq++
	seq := c.seq
	q := c.query.Clone()
	c.loading = true
	c.errText = ""
	state := c.stateLocked()
	listeners := c.listeners
	c.wg.Add(1)
	c.mu.Unlock()

	notify(listeners, state)

	go func() {
		defer c.wg.Done()
		defer cancel()
		res := c.lister.List(fetchCtx, q)
		c.apply(seq, q, res)
	}()
}

func (c *Controller[R]) apply(seq uint64, q Query, res result.Result[result.Page[R]]) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		log.Debug("Dropping superseded list result", "seq", seq, "latest", c.seq)
		return
	}
	c.loading = false
	c.cancel = nil
	if res.OK() {
		page := res.Data()
		c.records = page.Records
		c.pagination = page.Pagination
		c.errText = ""
	} else {
		c.errText = res.Err()
		log.Debug("List fetch failed", "page", q.Page, "error", res.Err())
	}
	state := c.stateLocked()
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, state)
}

func notify[R any](listeners []func(State[R]), s State[R]) {
	for _, fn := range listeners {
		fn(s)
	}
}

// Mutate runs one mutation for the view. A second mutation while one is
// outstanding fails immediately. On success the list is refreshed; on failure
// it is left alone.
func Mutate[R, T any](ctx context.Context, c *Controller[R], fn func(context.Context) result.Result[T]) result.Result[T] {
	c.mu.Lock()
	if c.mutating {
		c.mu.Unlock()
		return result.Fail[T](fmt.Errorf("%s: %w", apierror.MsgBusy, apierror.ErrBusy))
	}
	c.mutating = true
	c.mu.Unlock()

	res := fn(ctx)

	c.mu.Lock()
	c.mutating = false
	c.mu.Unlock()

	if res.OK() {
		c.Refresh(ctx)
	}
	return res
}
