package mockapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/freightdesk/internal/logging"
	"github.com/dmitrijs2005/freightdesk/internal/mockapi/config"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	config    *config.Config
	store     *Store
	logger    logging.Logger
	secretKey []byte
	engine    *gin.Engine
}

// NewServer builds the routes over a freshly seeded store.
func NewServer(cfg *config.Config, l logging.Logger) (*Server, error) {
	if l == nil {
		l = logging.Nop()
	}

	store := NewStore(cfg.BcryptCost)
	if err := Seed(store, cfg.DemoEmail, cfg.AdminEmail, cfg.DemoPassword); err != nil {
		return nil, err
	}

	s := &Server{
		config:    cfg,
		store:     store,
		logger:    l.With("module", "mockapi"),
		secretKey: []byte(cfg.SecretKey),
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := newLoginLimiter(s.config.LoginInterval, s.config.LoginBurst)

	api := r.Group("/api")
	api.POST("/login", limiter.middleware(), s.login)
	api.POST("/SendResetCode", s.sendResetCode)
	api.POST("/VerifyResetCode", s.verifyResetCode)

	authed := api.Group("")
	authed.Use(AuthMiddleware(s.store, s.secretKey, s.logger))
	authed.POST("/logout", s.logout)
	authed.GET("/GetUser", s.getUser)
	authed.POST("/UpdateUser", s.updateUser)
	authed.GET("/GetUsers", s.getUsers)
	authed.POST("/DeleteUser", s.deleteUser)
	authed.GET("/GetShipments", s.getShipments)
	authed.GET("/GetShipment", s.getShipment)
	authed.POST("/GetQuote", s.getQuote)
	authed.POST("/RequestQuote", s.requestQuote)
	authed.POST("/CheckEmail", s.checkEmail)
	authed.POST("/CheckPhoneNumber", s.checkPhoneNumber)
	authed.POST("/Support", s.support)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping mock API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting mock API", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
