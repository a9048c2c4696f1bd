package models

import (
	"time"

	"github.com/google/uuid"
)

type Book struct {
	Model
	ISBN      string     `json:"ISBN" gorm:"not null"`
	Title     string     `json:"title" gorm:"not null"`
	Author    string     `json:"author" gorm:"not null"`
	Review    string     `json:"review" gorm:"type:text;not null"`
	Genre     string     `json:"genre" gorm:"not null"`
	CreatorID uuid.UUID  `json:"creatorId" gorm:"type:uuid;not null;index"`
	Creator   *User      `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Likes     []BookLike `json:"-" gorm:"foreignKey:BookID"`
}

// BookLike records one user's like on a book.
type BookLike struct {
	BookID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func (b *Book) LikedBy(userID uuid.UUID) bool {
	for _, l := range b.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

type BookRequest struct {
	ISBN   string `json:"ISBN" validate:"required,len=13" conform:"trim"`
	Title  string `json:"title" validate:"required" conform:"trim"`
	Author string `json:"author" validate:"required" conform:"trim"`
	Genre  string `json:"genre" validate:"required" conform:"trim"`
	Review string `json:"review" validate:"required,min=6" conform:"trim"`
}

type UpdateBookRequest struct {
	Title  string `json:"title" conform:"trim"`
	Author string `json:"author" conform:"trim"`
	Genre  string `json:"genre" validate:"required" conform:"trim"`
	Review string `json:"review" validate:"required,min=6" conform:"trim"`
}

// BookResponse decorates a book with the caller's like state.
type BookResponse struct {
	Book
	LikedByUser bool `json:"likedByUser"`
	TotalLikes  int  `json:"totalLikes"`
}

type LikeResult struct {
	Message     string `json:"message"`
	TotalLikes  int    `json:"totalLikes"`
	LikedByUser bool   `json:"likedByUser"`
}
