package db

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/models"
	"gorm.io/gorm"
)

type BookRepository interface {
	CreateBook(book *models.Book) (*models.Book, error)
	FindBookByID(id uuid.UUID) (*models.Book, error)
	ListBooks() ([]models.Book, error)
	ListBooksByCreator(creatorID uuid.UUID) ([]models.Book, error)
	SearchBooks(query string) ([]models.Book, error)
	UpdateBook(book *models.Book) error
	DeleteBook(id uuid.UUID) error
	// ToggleLike likes the book for userID, or unlikes it when already liked.
	ToggleLike(bookID, userID uuid.UUID) (liked bool, total int, err error)
}

type bookRepo struct {
	DB *gorm.DB
}

func NewBookRepo(db *GormDB) BookRepository {
	return &bookRepo{db.DB}
}

func (r *bookRepo) CreateBook(book *models.Book) (*models.Book, error) {
	if err := r.DB.Create(book).Error; err != nil {
		return nil, errors.Wrap(err, "create book")
	}
	return book, nil
}

func (r *bookRepo) FindBookByID(id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.DB.Preload("Likes").Preload("Creator").Where("id = ?", id).First(&book).Error
	if err != nil {
		return nil, notFound(err, "find book")
	}
	return &book, nil
}

func (r *bookRepo) ListBooks() ([]models.Book, error) {
	var books []models.Book
	err := r.DB.Preload("Likes").Preload("Creator").Order("created_at DESC").Find(&books).Error
	return books, errors.Wrap(err, "list books")
}

func (r *bookRepo) ListBooksByCreator(creatorID uuid.UUID) ([]models.Book, error) {
	var books []models.Book
	err := r.DB.Preload("Likes").Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&books).Error
	return books, errors.Wrap(err, "list books by creator")
}

func (r *bookRepo) SearchBooks(query string) ([]models.Book, error) {
	var books []models.Book
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := r.DB.Preload("Likes").
		Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(genre) LIKE ? OR isbn = ?", like, like, like, strings.TrimSpace(query)).
		Order("title ASC").
		Find(&books).Error
	return books, errors.Wrap(err, "search books")
}

func (r *bookRepo) UpdateBook(book *models.Book) error {
	err := r.DB.Model(&models.Book{}).Where("id = ?", book.ID).Updates(map[string]interface{}{
		"title":  book.Title,
		"author": book.Author,
		"genre":  book.Genre,
		"review": book.Review,
	}).Error
	return errors.Wrap(err, "update book")
}

func (r *bookRepo) DeleteBook(id uuid.UUID) error {
	tx := r.DB.Begin()
	if err := tx.Where("book_id = ?", id).Delete(&models.BookLike{}).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "delete book likes")
	}
	result := tx.Where("id = ?", id).Delete(&models.Book{})
	if result.Error != nil {
		tx.Rollback()
		return errors.Wrap(result.Error, "delete book")
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return errors.Wrap(ErrNotFound, "delete book")
	}
	return errors.Wrap(tx.Commit().Error, "commit delete book")
}

func (r *bookRepo) ToggleLike(bookID, userID uuid.UUID) (bool, int, error) {
	tx := r.DB.Begin()

	var book models.Book
	if err := tx.Select("id").Where("id = ?", bookID).First(&book).Error; err != nil {
		tx.Rollback()
		return false, 0, notFound(err, "find book")
	}

	var existing int64
	if err := tx.Model(&models.BookLike{}).Where("book_id = ? AND user_id = ?", bookID, userID).Count(&existing).Error; err != nil {
		tx.Rollback()
		return false, 0, errors.Wrap(err, "check like")
	}

	liked := existing == 0
	if liked {
		if err := tx.Create(&models.BookLike{BookID: bookID, UserID: userID}).Error; err != nil {
			tx.Rollback()
			return false, 0, errors.Wrap(err, "record like")
		}
	} else {
		if err := tx.Where("book_id = ? AND user_id = ?", bookID, userID).Delete(&models.BookLike{}).Error; err != nil {
			tx.Rollback()
			return false, 0, errors.Wrap(err, "remove like")
		}
	}

	var total int64
	if err := tx.Model(&models.BookLike{}).Where("book_id = ?", bookID).Count(&total).Error; err != nil {
		tx.Rollback()
		return false, 0, errors.Wrap(err, "count likes")
	}

	if err := tx.Commit().Error; err != nil {
		return false, 0, errors.Wrap(err, "commit like")
	}
	return liked, int(total), nil
}
