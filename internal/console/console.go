// Package console assembles the session, gateways and services for the
// configured mode.
package console

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/mebel"
	"github.com/oarkflow/mebel/internal/apiclient"
	"github.com/oarkflow/mebel/internal/auth"
	"github.com/oarkflow/mebel/internal/catalog"
	"github.com/oarkflow/mebel/internal/config"
	"github.com/oarkflow/mebel/internal/dashboard"
	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/session"
	"github.com/oarkflow/mebel/internal/upload"
)

// Console holds everything a command needs.
type Console struct {
	Config    *config.Config
	Session   *session.Context
	Auth      auth.Service
	Products  gateway.Gateway[gateway.Product, gateway.ProductFields]
	Users     gateway.Gateway[gateway.User, gateway.UserFields]
	Catalog   catalog.Catalog
	Dashboard *dashboard.Service

	ProductView listquery.View
	UserView    listquery.View
}

// Option customizes Open
type Option func(*options)

type options struct {
	store session.Store
}

// WithStore replaces the session file with store.
func WithStore(store session.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// Open builds a console for cfg.
func Open(cfg *config.Config, opts ...Option) (*Console, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.store == nil {
		path := cfg.Session.Path
		if path == "" {
			path = session.DefaultPath()
		}
		store, err := session.NewFileStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open session: %w", err)
		}
		o.store = store
	}

	c := &Console{
		Config:  cfg,
		Session: session.New(o.store),
	}

	productSchema := gateway.ProductSchema()
	userSchema := gateway.UserSchema(cfg.Users.DefaultPassword)
	c.ProductView = cfg.Views.Products.View(productSchema.View(cfg.Views.Products.PageSize, listquery.Desc))
	c.UserView = cfg.Views.Users.View(userSchema.View(cfg.Views.Users.PageSize, listquery.Asc))

	switch cfg.Mode {
	case config.ModeMock:
		if err := c.openMock(); err != nil {
			return nil, err
		}
	case config.ModeLive, "":
		c.openLive(productSchema, userSchema)
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	c.Dashboard = dashboard.New(c.Products, c.Users)
	log.Debug("Console ready", "mode", cfg.Mode, "api", cfg.API.BaseURL)
	return c, nil
}

func (c *Console) openLive(products gateway.Schema[gateway.Product, gateway.ProductFields], users gateway.Schema[gateway.User, gateway.UserFields]) {
	client := apiclient.New(c.Config.API.BaseURL,
		apiclient.WithTimeout(c.Config.API.Timeout),
		apiclient.WithUserAgent(fmt.Sprintf("%s/%s", c.Config.API.UserAgent, mebel.Version)),
	)
	uploader := upload.NewUploader(client)

	c.Auth = auth.NewLive(client, c.Session)
	c.Products = gateway.NewLive(client, c.Session, uploader, products)
	c.Users = gateway.NewLive(client, c.Session, uploader, users)
	c.Catalog = catalog.NewLive(client, c.Session)
}

// openMock serves the fixtures in memory. Records live for the process
// only; the session file still persists the login.
func (c *Console) openMock() error {
	mockOpts := []gateway.MockOption{gateway.WithSession(c.Session)}
	if c.Config.Mock.Latency > 0 {
		mockOpts = append(mockOpts, gateway.WithLatency(c.Config.Mock.Latency))
	}

	users := gateway.UserFixtures()
	a, err := auth.NewMock(c.Session, []byte(c.Config.Mock.JWTSecret), users, gateway.FixtureAccounts)
	if err != nil {
		return fmt.Errorf("failed to prepare mock accounts: %w", err)
	}
	products := gateway.NewMockProducts(nil, mockOpts...)

	c.Auth = a
	c.Products = products
	c.Users = gateway.NewMockUsers(users, mockOpts...)
	c.Catalog = catalog.NewBacked(products)
	return nil
}

// ProductList creates a list controller over the product gateway.
func (c *Console) ProductList() *listquery.Controller[gateway.Product] {
	return listquery.New[gateway.Product](c.Products, c.ProductView)
}

// UserList creates a list controller over the user gateway.
func (c *Console) UserList() *listquery.Controller[gateway.User] {
	return listquery.New[gateway.User](c.Users, c.UserView)
}
