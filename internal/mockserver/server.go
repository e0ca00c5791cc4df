// Package mockserver is an in-memory development backend speaking the same
// wire format as the production API.
package mockserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/oarkflow/mebel/internal/gateway"
)

// Options configures a Server. The zero value serves the fixtures.
type Options struct {
	Addr     string
	BasePath string
	Secret   []byte
	TokenTTL time.Duration
	// UploadDir holds uploaded images; a temp dir is used when empty.
	UploadDir string
	// PublicURL prefixes returned upload URLs. Empty returns "/uploads/..".
	PublicURL    string
	AllowOrigins []string
	Latency      time.Duration
	// DisableUserStatusPatch answers 405 on PATCH /users/{id}/status.
	DisableUserStatusPatch bool
	DefaultPassword        string
	Products               []gateway.Product
	Users                  []gateway.User
	Accounts               []gateway.Account
}

// DefaultAddr is where serve-mock listens.
const DefaultAddr = ":8000"

// MaxUploadSize bounds an uploaded image.
const MaxUploadSize = 5 << 20

// Server is the development backend.
type Server struct {
	opts     Options
	engine   *gin.Engine
	products *gateway.Mock[gateway.Product, gateway.ProductFields]
	users    *gateway.Mock[gateway.User, gateway.UserFields]

	mu        sync.RWMutex
	passwords map[int64][]byte
}

// New builds the server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("mebel-dev-secret")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.DefaultPassword == "" {
		opts.DefaultPassword = gateway.DefaultUserPassword
	}
	if opts.Accounts == nil {
		opts.Accounts = gateway.FixtureAccounts
	}
	if len(opts.AllowOrigins) == 0 {
		opts.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"}
	}
	if opts.UploadDir == "" {
		opts.UploadDir = filepath.Join(os.TempDir(), "mebel-uploads")
	}
	if err := os.MkdirAll(opts.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	users := opts.Users
	if users == nil {
		users = gateway.UserFixtures()
	}
	var mockOpts []gateway.MockOption
	if opts.Latency > 0 {
		mockOpts = append(mockOpts, gateway.WithLatency(opts.Latency))
	}

	s := &Server{
		opts:      opts,
		products:  gateway.NewMockProducts(opts.Products, mockOpts...),
		users:     gateway.NewMockUsers(users, mockOpts...),
		passwords: make(map[int64][]byte, len(users)),
	}
	if err := s.seedPasswords(users); err != nil {
		return nil, err
	}
	s.engine = s.routes()
	return s, nil
}

// seedPasswords gives accounts their password and everyone else the default.
func (s *Server) seedPasswords(users []gateway.User) error {
	explicit := make(map[int64]string, len(s.opts.Accounts))
	for _, a := range s.opts.Accounts {
		explicit[a.UserID] = a.Password
	}
	for _, u := range users {
		pw, ok := explicit[u.ID]
		if !ok {
			pw = s.opts.DefaultPassword
		}
		if err := s.setPassword(u.ID, pw); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) setPassword(id int64, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.mu.Lock()
	s.passwords[id] = hash
	s.mu.Unlock()
	return nil
}

func (s *Server) checkPassword(id int64, password string) bool {
	s.mu.RLock()
	hash, ok := s.passwords[id]
	s.mu.RUnlock()
	return ok && bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

func (s *Server) routes() *gin.Engine {
	if log.GetLevel() > log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), requestID(), logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.opts.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept", "Origin", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method Not Allowed"})
	})

	r.Static("/uploads", s.opts.UploadDir)

	api := r.Group(strings.TrimRight(s.opts.BasePath, "/"))
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.authenticate())
	authed.GET("/auth/me", s.me)
	authed.POST("/upload/image", s.uploadImage)

	authed.GET("/products", s.listProducts)
	authed.GET("/products/:id", s.getProduct)
	admin := authed.Group("", requireRoles(gateway.RoleAdmin))
	admin.POST("/products", s.createProduct)
	admin.PUT("/products/:id", s.updateProduct)
	admin.PATCH("/products/:id/status", s.patchProductStatus)
	admin.DELETE("/products/:id", s.deleteProduct)

	admin.GET("/users", s.listUsers)
	admin.GET("/users/:id", s.getUser)
	admin.POST("/users", s.createUser)
	admin.PUT("/users/:id", s.updateUser)
	if s.opts.DisableUserStatusPatch {
		admin.PATCH("/users/:id/status", func(c *gin.Context) {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method Not Allowed"})
		})
	} else {
		admin.PATCH("/users/:id/status", s.patchUserStatus)
	}
	admin.DELETE("/users/:id", s.deleteUser)
	return r
}

// Handler exposes the engine, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Mock backend listening", "addr", s.opts.Addr, "base", s.opts.BasePath, "uploads", s.opts.UploadDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down mock backend")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
