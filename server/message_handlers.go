package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/models"
	"github.com/techagentng/bookclub/server/response"
)

func (s *Server) handleSendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var event models.SendMessageEvent
		if err := decode(c, &event); err != nil {
			s.fail(c, errs.Validation("Invalid payload"))
			return
		}
		message, err := s.MessageService.SendMessage(c.Request.Context(), currentUser(c), event)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusCreated, gin.H{"message": message})
	}
}

func (s *Server) handleGetMyMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUser(c)
		messages, err := s.MessageService.GetMessagesForUser(c.Request.Context(), userID, userID)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"messages": messages})
	}
}

func (s *Server) handleGetMessagesForUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		// an unparsable id can never be the caller and falls through to the 403
		userID, _ := uuid.Parse(c.Param("userId"))
		messages, err := s.MessageService.GetMessagesForUser(c.Request.Context(), currentUser(c), userID)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"messages": messages})
	}
}

func (s *Server) handleGetConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		otherUserID, ok := uuidParam(c, "otherUserId", "Invalid user id")
		if !ok {
			return
		}
		messages, err := s.MessageService.GetConversation(c.Request.Context(), currentUser(c), otherUserID)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"messages": messages})
	}
}

func (s *Server) handleGetChats() gin.HandlerFunc {
	return func(c *gin.Context) {
		chats, err := s.MessageService.GetChats(c.Request.Context(), currentUser(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"chats": chats})
	}
}
