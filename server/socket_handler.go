package server

import (
	"github.com/gin-gonic/gin"
	"github.com/techagentng/bookclub/services/jwt"
)

// handleSocket authenticates the handshake and only then upgrades, so a refused
// token gets a plain 401 and never reaches the hub.
func (s *Server) handleSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = jwt.GetTokenFromHeader(c.GetHeader("Authorization"))
		}
		userID, err := s.Gate.Authenticate(token)
		if err != nil {
			s.Logger.Infow("socket handshake refused", "ip", c.ClientIP(), "error", err)
			respondAndAbort(c, err)
			return
		}

		ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already written the error response
			s.Logger.Warnw("socket upgrade failed", "userId", userID, "error", err)
			return
		}
		s.Realtime.Serve(c.Request.Context(), userID, ws)
	}
}
