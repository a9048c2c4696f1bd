package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/models"
	"github.com/techagentng/bookclub/server/response"
)

// Public book listings carry no viewer, so likedByUser is always false there.

func (s *Server) handleListBooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := s.BookService.ListBooks(uuid.Nil)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"books": books})
	}
}

func (s *Server) handleSearchBooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := s.BookService.SearchBooks(uuid.Nil, c.Query("q"))
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"books": books})
	}
}

func (s *Server) handleListBooksByUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := uuidParam(c, "userID", "Invalid user id")
		if !ok {
			return
		}
		books, err := s.BookService.ListBooksByUser(currentUser(c), userID)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"books": books})
	}
}

func (s *Server) handleGetBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, ok := uuidParam(c, "bookId", "Invalid book id")
		if !ok {
			return
		}
		book, err := s.BookService.GetBook(currentUser(c), bookID)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"book": book})
	}
}

func (s *Server) handleCreateBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.BookRequest
		if err := decode(c, &request); err != nil {
			s.fail(c, errs.Unprocessable("Could not create book post. Check your data."))
			return
		}
		userID := currentUser(c)
		if _, err := s.AuthService.GetUserProfile(userID); err != nil {
			s.fail(c, err)
			return
		}
		book, err := s.BookService.CreateBook(userID, &request)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusCreated, gin.H{"book": book})
	}
}

func (s *Server) handleUpdateBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, ok := uuidParam(c, "bookId", "Invalid book id")
		if !ok {
			return
		}
		var request models.UpdateBookRequest
		if err := decode(c, &request); err != nil {
			s.fail(c, errs.Unprocessable("Could not update book post. Check your data."))
			return
		}
		book, err := s.BookService.UpdateBook(currentUser(c), bookID, &request)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"book": book})
	}
}

func (s *Server) handleDeleteBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, ok := uuidParam(c, "bookId", "Invalid book id")
		if !ok {
			return
		}
		if err := s.BookService.DeleteBook(currentUser(c), bookID); err != nil {
			s.fail(c, err)
			return
		}
		response.Message(c, http.StatusOK, "Deleted successfully")
	}
}

func (s *Server) handleToggleLike() gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, ok := uuidParam(c, "bookId", "Invalid book id")
		if !ok {
			return
		}
		result, err := s.BookService.ToggleLike(currentUser(c), bookID)
		if err != nil {
			s.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result)
	}
}
