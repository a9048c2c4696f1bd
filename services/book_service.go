package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/db"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/models"
	"go.uber.org/zap"
)

type BookService interface {
	CreateBook(creatorID uuid.UUID, request *models.BookRequest) (*models.Book, error)
	GetBook(viewerID, bookID uuid.UUID) (*models.BookResponse, error)
	ListBooks(viewerID uuid.UUID) ([]models.BookResponse, error)
	ListBooksByUser(viewerID, userID uuid.UUID) ([]models.BookResponse, error)
	SearchBooks(viewerID uuid.UUID, query string) ([]models.BookResponse, error)
	UpdateBook(userID, bookID uuid.UUID, request *models.UpdateBookRequest) (*models.Book, error)
	DeleteBook(userID, bookID uuid.UUID) error
	ToggleLike(userID, bookID uuid.UUID) (*models.LikeResult, error)
}

type bookService struct {
	bookRepo db.BookRepository
	logger   *zap.SugaredLogger
}

func NewBookService(bookRepo db.BookRepository, logger *zap.SugaredLogger) BookService {
	return &bookService{bookRepo: bookRepo, logger: logger}
}

func toResponse(book models.Book, viewerID uuid.UUID) models.BookResponse {
	return models.BookResponse{
		Book:        book,
		LikedByUser: book.LikedBy(viewerID),
		TotalLikes:  len(book.Likes),
	}
}

func toResponses(books []models.Book, viewerID uuid.UUID) []models.BookResponse {
	out := make([]models.BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toResponse(b, viewerID))
	}
	return out
}

func (s *bookService) storageError(msg string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return errs.NotFound("Book not found")
	}
	s.logger.Errorw(msg, "error", err)
	return errs.Storage(msg, err)
}

func (s *bookService) CreateBook(creatorID uuid.UUID, request *models.BookRequest) (*models.Book, error) {
	if err := validate(request); err != nil {
		return nil, err
	}
	book, err := s.bookRepo.CreateBook(&models.Book{
		ISBN:      request.ISBN,
		Title:     request.Title,
		Author:    request.Author,
		Genre:     request.Genre,
		Review:    request.Review,
		CreatorID: creatorID,
	})
	if err != nil {
		return nil, s.storageError("unable to create book", err)
	}
	return book, nil
}

func (s *bookService) GetBook(viewerID, bookID uuid.UUID) (*models.BookResponse, error) {
	book, err := s.bookRepo.FindBookByID(bookID)
	if err != nil {
		return nil, s.storageError("unable to fetch book", err)
	}
	resp := toResponse(*book, viewerID)
	return &resp, nil
}

func (s *bookService) ListBooks(viewerID uuid.UUID) ([]models.BookResponse, error) {
	books, err := s.bookRepo.ListBooks()
	if err != nil {
		return nil, s.storageError("unable to fetch books", err)
	}
	return toResponses(books, viewerID), nil
}

func (s *bookService) ListBooksByUser(viewerID, userID uuid.UUID) ([]models.BookResponse, error) {
	books, err := s.bookRepo.ListBooksByCreator(userID)
	if err != nil {
		return nil, s.storageError("unable to fetch books", err)
	}
	return toResponses(books, viewerID), nil
}

func (s *bookService) SearchBooks(viewerID uuid.UUID, query string) ([]models.BookResponse, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListBooks(viewerID)
	}
	books, err := s.bookRepo.SearchBooks(query)
	if err != nil {
		return nil, s.storageError("unable to search books", err)
	}
	return toResponses(books, viewerID), nil
}

func (s *bookService) ownedBook(userID, bookID uuid.UUID) (*models.Book, error) {
	book, err := s.bookRepo.FindBookByID(bookID)
	if err != nil {
		return nil, s.storageError("unable to fetch book", err)
	}
	if book.CreatorID != userID {
		return nil, errs.Forbidden("You can only change books you added")
	}
	return book, nil
}

func (s *bookService) UpdateBook(userID, bookID uuid.UUID, request *models.UpdateBookRequest) (*models.Book, error) {
	if err := validate(request); err != nil {
		return nil, err
	}
	book, err := s.ownedBook(userID, bookID)
	if err != nil {
		return nil, err
	}
	if request.Title != "" {
		book.Title = request.Title
	}
	if request.Author != "" {
		book.Author = request.Author
	}
	book.Genre = request.Genre
	book.Review = request.Review
	if err := s.bookRepo.UpdateBook(book); err != nil {
		return nil, s.storageError("unable to update book", err)
	}
	return book, nil
}

func (s *bookService) DeleteBook(userID, bookID uuid.UUID) error {
	if _, err := s.ownedBook(userID, bookID); err != nil {
		return err
	}
	if err := s.bookRepo.DeleteBook(bookID); err != nil {
		return s.storageError("unable to delete book", err)
	}
	return nil
}

func (s *bookService) ToggleLike(userID, bookID uuid.UUID) (*models.LikeResult, error) {
	liked, total, err := s.bookRepo.ToggleLike(bookID, userID)
	if err != nil {
		return nil, s.storageError("unable to like book", err)
	}
	message := "Book unliked"
	if liked {
		message = "Book liked"
	}
	return &models.LikeResult{Message: message, TotalLikes: total, LikedByUser: liked}, nil
}
