package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/models"
	"github.com/techagentng/bookclub/server/response"
)

func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.SignupRequest
		if err := decode(c, &request); err != nil {
			s.fail(c, errs.Unprocessable("Invalid credentials. Could not create user."))
			return
		}
		user, err := s.AuthService.SignupUser(&request)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.Logger.Infow("user signed up", "userId", user.UserID)
		response.JSON(c, http.StatusCreated, user)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.LoginRequest
		if err := decode(c, &request); err != nil {
			s.fail(c, errs.ErrInvalidCredentials)
			return
		}
		login, err := s.AuthService.LoginUser(&request)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, login)
	}
}

func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.AuthService.Logout(c.GetString(ctxAccessToken)); err != nil {
			s.fail(c, err)
			return
		}
		response.Message(c, http.StatusOK, "Logged out successfully")
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.AuthService.GetUserProfile(currentUser(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"user": user.ToResponse()})
	}
}

func (s *Server) handleGetAllUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.AuthService.GetAllUsers()
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"users": toUserResponses(users)})
	}
}

func (s *Server) handleSearchUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.AuthService.SearchUsers(c.Query("q"))
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"users": toUserResponses(users)})
	}
}

func (s *Server) handleUpdateProfilePicture() gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("image")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
				s.fail(c, errs.Unprocessable("No image provided."))
				return
			}
			s.fail(c, errs.Validation("Could not read the uploaded image."))
			return
		}
		result, err := s.MediaService.UploadProfilePicture(c.Request.Context(), currentUser(c), header)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{
			"message":      "Profile picture updated successfully!",
			"imageUrl":     result.ImageURL,
			"thumbnailUrl": result.ThumbnailURL,
		})
	}
}

func (s *Server) handleRemoveProfilePicture() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.MediaService.RemoveProfilePicture(c.Request.Context(), currentUser(c)); err != nil {
			s.fail(c, err)
			return
		}
		response.Message(c, http.StatusOK, "Profile picture removed successfully!")
	}
}

func (s *Server) handleUpdateUsername() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.UpdateUsernameRequest
		if err := decode(c, &request); err != nil {
			s.fail(c, errs.Unprocessable("username is required"))
			return
		}
		if err := s.AuthService.UpdateUsername(currentUser(c), &request); err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"message": "Username updated", "username": request.Username})
	}
}

func (s *Server) handleUpdateDeviceToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.DeviceTokenRequest
		if err := decode(c, &request); err != nil {
			s.fail(c, errs.Unprocessable("token is required"))
			return
		}
		if err := s.AuthService.UpdateDeviceToken(currentUser(c), &request); err != nil {
			s.fail(c, err)
			return
		}
		response.Message(c, http.StatusOK, "Device token saved")
	}
}

func toUserResponses(users []models.User) []models.UserResponse {
	out := make([]models.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	return out
}
