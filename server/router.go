package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/techagentng/bookclub/config"
	"github.com/techagentng/bookclub/server/response"
)

func (s *Server) setupRouter() *gin.Engine {
	s.upgrader = &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.allowedOrigin,
	}

	r := gin.New()
	if s.Config.Env != "test" {
		// LoggerWithFormatter middleware will write the logs to gin.DefaultWriter
		r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC1123),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		}))
	}
	r.Use(gin.Recovery())
	r.Use(cors.New(s.corsConfig()))
	r.MaxMultipartMemory = 8 << 20

	if s.Config.StorageDriver == config.StorageLocal {
		r.Static("/uploads", s.Config.UploadDir)
	}
	s.defineRoutes(r)

	return r
}

func (s *Server) corsConfig() cors.Config {
	conf := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Requested-With", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if s.Config.AccessControlAllowOrigin == "*" || s.Config.AccessControlAllowOrigin == "" {
		conf.AllowAllOrigins = true
		return conf
	}
	for _, origin := range strings.Split(s.Config.AccessControlAllowOrigin, ",") {
		conf.AllowOrigins = append(conf.AllowOrigins, strings.TrimSpace(origin))
	}
	return conf
}

func (s *Server) defineRoutes(router *gin.Engine) {
	router.GET("/healthz", s.handleHealth())
	router.GET("/ws", s.handleSocket())

	apirouter := router.Group("/api/v1")

	users := apirouter.Group("/users")
	users.POST("/signup", s.handleSignup())
	users.POST("/login", s.limitLogin(), s.handleLogin())
	users.GET("", s.handleGetAllUsers())
	users.GET("/search", s.handleSearchUsers())

	authUsers := users.Group("", s.Authorize())
	authUsers.GET("/logout", s.handleLogout())
	authUsers.GET("/me", s.handleShowProfile())
	authUsers.PATCH("/profile-picture", s.handleUpdateProfilePicture())
	authUsers.PATCH("/remove-picture", s.handleRemoveProfilePicture())
	authUsers.PATCH("/update-username", s.handleUpdateUsername())
	authUsers.PUT("/device-token", s.handleUpdateDeviceToken())

	apirouter.GET("/auth/google/login", s.handleGoogleLogin())
	apirouter.GET("/auth/google/callback", s.handleGoogleCallback())

	books := apirouter.Group("/books")
	books.GET("", s.handleListBooks())
	books.GET("/search", s.handleSearchBooks())

	authBooks := books.Group("", s.Authorize())
	authBooks.GET("/user/:userID", s.handleListBooksByUser())
	authBooks.GET("/:bookId", s.handleGetBook())
	authBooks.POST("", s.handleCreateBook())
	authBooks.PATCH("/like/:bookId", s.handleToggleLike())
	authBooks.PATCH("/:bookId", s.handleUpdateBook())
	authBooks.DELETE("/:bookId", s.handleDeleteBook())

	messages := apirouter.Group("/messages", s.Authorize())
	messages.POST("", s.handleSendMessage())
	messages.GET("", s.handleGetMyMessages())
	messages.GET("/chats", s.handleGetChats())
	messages.GET("/user/:userId", s.handleGetMessagesForUser())
	messages.GET("/conversation/:otherUserId", s.handleGetConversation())
}

func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.DB != nil {
			if err := s.DB.Ping(); err != nil {
				s.Logger.Errorw("health check", "error", err)
				response.Message(c, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		response.JSON(c, http.StatusOK, gin.H{"status": "ok", "online": s.Realtime.Hub().Online()})
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	response.HandleErrors(c, s.Logger, err)
}
