// Package dashboard computes the admin landing counters.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/parallel"
	"github.com/oarkflow/mebel/internal/result"
)

// Tile keys
const (
	TileProducts    = "products"
	TileLowStock    = "low_stock"
	TileInactive    = "inactive_products"
	TileUsers       = "users"
	TileActiveUsers = "active_users"
)

// Tile is one counter. A failed tile carries its message and leaves the
// others intact.
type Tile struct {
	Key   string
	Label string
	Count int
	Err   string
}

// OK reports whether the tile loaded.
func (t Tile) OK() bool { return t.Err == "" }

// Summary is the full set of tiles in display order.
type Summary struct {
	Tiles       []Tile
	GeneratedAt time.Time
}

// Tile returns the tile with key.
func (s Summary) Tile(key string) (Tile, bool) {
	for _, t := range s.Tiles {
		if t.Key == key {
			return t, true
		}
	}
	return Tile{}, false
}

// Failed reports how many tiles could not be loaded.
func (s Summary) Failed() int {
	n := 0
	for _, t := range s.Tiles {
		if !t.OK() {
			n++
		}
	}
	return n
}

// Service loads the summary from the two gateways.
type Service struct {
	products gateway.Gateway[gateway.Product, gateway.ProductFields]
	users    gateway.Gateway[gateway.User, gateway.UserFields]
	executor *parallel.Executor
}

// New creates a dashboard service. Options tune the fan-out.
func New(
	products gateway.Gateway[gateway.Product, gateway.ProductFields],
	users gateway.Gateway[gateway.User, gateway.UserFields],
	opts ...parallel.ExecutorOption,
) *Service {
	opts = append([]parallel.ExecutorOption{parallel.WithWorkers(5)}, opts...)
	return &Service{products: products, users: users, executor: parallel.NewExecutor(opts...)}
}

type counter struct {
	key   string
	label string
	count func(ctx context.Context) (int, error)
}

// countQuery asks for a single record; only the pagination total is used.
func countQuery(filters map[string]string) listquery.Query {
	return listquery.Query{Page: 1, PageSize: 1, Filters: filters}
}

func total[R any](res result.Result[result.Page[R]]) (int, error) {
	if !res.OK() {
		return 0, res.Cause()
	}
	return res.Data().Pagination.TotalItems, nil
}

func (s *Service) counters() []counter {
	products := func(filters map[string]string) func(context.Context) (int, error) {
		return func(ctx context.Context) (int, error) {
			return total(s.products.List(ctx, countQuery(filters)))
		}
	}
	users := func(filters map[string]string) func(context.Context) (int, error) {
		return func(ctx context.Context) (int, error) {
			return total(s.users.List(ctx, countQuery(filters)))
		}
	}
	return []counter{
		{TileProducts, "Total Produk", products(nil)},
		{TileLowStock, "Stok Menipis", products(map[string]string{"status": string(gateway.StatusLowStock)})},
		{TileInactive, "Produk Nonaktif", products(map[string]string{"status": string(gateway.StatusInactive)})},
		{TileUsers, "Total User", users(nil)},
		{TileActiveUsers, "User Aktif", users(map[string]string{"status": string(gateway.StatusActive)})},
	}
}

// Summary loads every tile concurrently. It always returns a full summary;
// the Result fails only when every tile failed.
func (s *Service) Summary(ctx context.Context) result.Result[Summary] {
	counters := s.counters()
	tiles := make([]Tile, len(counters))
	tasks := make([]parallel.Task, len(counters))
	for i, c := range counters {
		tiles[i] = Tile{Key: c.key, Label: c.label}
		tasks[i] = parallel.NewTask(c.key, func(ctx context.Context) error {
			n, err := c.count(ctx)
			tiles[i].Count = n
			return err
		})
	}

	for i, r := range s.executor.Execute(ctx, tasks) {
		if r.Error != nil {
			tiles[i].Err = r.Error.Error()
		}
	}

	summary := Summary{Tiles: tiles, GeneratedAt: time.Now()}
	if summary.Failed() == len(tiles) {
		return result.Failure[Summary](fmt.Sprintf("Gagal memuat dashboard: %s", tiles[0].Err))
	}
	return result.Success(summary, "")
}
