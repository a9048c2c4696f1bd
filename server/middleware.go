package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/models"
	"github.com/techagentng/bookclub/server/response"
	"github.com/techagentng/bookclub/services/jwt"
)

const (
	ctxUserID      = "userID"
	ctxAccessToken = "access_token"
)

// Authorize resolves the bearer token through the gate and stores the caller id on the context.
func (s *Server) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := jwt.GetTokenFromHeader(c.GetHeader("Authorization"))
		userID, err := s.Gate.Authenticate(accessToken)
		if err != nil {
			respondAndAbort(c, err)
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxAccessToken, accessToken)
		c.Next()
	}
}

// limitLogin throttles login attempts per submitted email.
func (s *Server) limitLogin() gin.HandlerFunc {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  s.Config.LoginRateWindow,
		Limit: s.Config.LoginRateLimit,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errs.ErrorHandler,
		KeyFunc:      keyFunc,
	})
}

// keyFunc reads the email from a login body and puts the body back for the handler.
func keyFunc(c *gin.Context) string {
	buf, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return c.ClientIP()
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(buf))

	var login models.LoginRequest
	if err := json.Unmarshal(buf, &login); err != nil || login.Email == "" {
		return c.ClientIP()
	}
	return strings.ToLower(strings.TrimSpace(login.Email))
}

// currentUser returns the id set by Authorize.
func currentUser(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func uuidParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondAndAbort(c, errs.Validation(message))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.Config.AccessControlAllowOrigin == "*" {
		return true
	}
	for _, allowed := range strings.Split(s.Config.AccessControlAllowOrigin, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}

// respondAndAbort renders err and aborts the Context
func respondAndAbort(c *gin.Context, err error) {
	response.HandleErrors(c, nil, err)
}
