package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/techagentng/bookclub/config"
	"github.com/techagentng/bookclub/db"
	"github.com/techagentng/bookclub/realtime"
	"github.com/techagentng/bookclub/services"
	"github.com/techagentng/bookclub/services/jwt"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Server carries the dependencies shared by every handler.
type Server struct {
	Config         *config.Config
	Logger         *zap.SugaredLogger
	DB             *db.GormDB
	Gate           *jwt.Gate
	AuthService    services.AuthService
	BookService    services.BookService
	MessageService services.MessageService
	MediaService   services.MediaService
	Realtime       *realtime.Manager
	GoogleOAuth    services.GoogleAuthenticator

	upgrader *websocket.Upgrader
}

// Handler builds the gin engine. Start uses it; tests mount it on httptest.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Start serves until SIGINT or SIGTERM, then drains requests and closes every socket.
func (s *Server) Start() {
	if s.Config.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.Config.Port),
		Handler: s.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		s.Logger.Infow("server started", "addr", srv.Addr, "env", s.Config.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatalw("listen", "error", err)
		}
	}()

	<-ctx.Done()
	s.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// hijacked websocket connections are not tracked by Shutdown
	s.Realtime.Hub().Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.Logger.Errorw("server forced to shutdown", "error", err)
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			s.Logger.Warnw("close database", "error", err)
		}
	}
	s.Logger.Info("server exiting")
}

func decode(c *gin.Context, v interface{}) error {
	return c.ShouldBindJSON(v)
}
