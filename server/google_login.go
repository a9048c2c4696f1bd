package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/server/response"
	"github.com/techagentng/bookclub/services/jwt"
)

func (s *Server) handleGoogleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.GoogleOAuth == nil {
			response.Message(c, http.StatusNotImplemented, "Google login is not configured")
			return
		}
		state, err := jwt.GenerateState(s.Config.JWTSecret)
		if err != nil {
			s.fail(c, errs.Storage("Could not start Google login", err))
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, s.GoogleOAuth.AuthCodeURL(state))
	}
}

func (s *Server) handleGoogleCallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.GoogleOAuth == nil {
			response.Message(c, http.StatusNotImplemented, "Google login is not configured")
			return
		}
		if err := jwt.VerifyState(c.Query("state"), s.Config.JWTSecret); err != nil {
			s.fail(c, errs.Auth("Invalid OAuth state"))
			return
		}
		code := c.Query("code")
		if code == "" {
			s.fail(c, errs.Validation("Missing authorization code"))
			return
		}
		info, err := s.GoogleOAuth.UserInfo(c.Request.Context(), code)
		if err != nil {
			s.Logger.Warnw("google userinfo", "error", err)
			s.fail(c, errs.Auth("Google login failed"))
			return
		}
		login, err := s.AuthService.GoogleLoginUser(info)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, login)
	}
}
