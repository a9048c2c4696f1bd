package models

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultProfileImage is stored for accounts created without a picture.
const DefaultProfileImage = "uploads/default-profile.png"

// User represents a reader of the application
type User struct {
	Model
	FirstName      string  `json:"firstName" gorm:"not null"`
	LastName       string  `json:"lastName" gorm:"not null"`
	Username       string  `json:"username" gorm:"index"`
	Email          string  `json:"email" gorm:"uniqueIndex;not null"`
	HashedPassword string  `json:"-"`
	Image          *string `json:"image"`
	ThumbNailURL   string  `json:"thumbnailUrl,omitempty"`
	DeviceToken    string  `json:"-"`
	IsSocial       bool    `json:"-"`
	Books          []Book  `gorm:"foreignKey:CreatorID" json:"books,omitempty"`
}

// DisplayUsername is the username shown when the account did not pick one.
func (u *User) DisplayUsername() string {
	if u.Username != "" {
		return u.Username
	}
	initial := ""
	if u.LastName != "" {
		initial = strings.ToUpper(string([]rune(u.LastName)[0]))
	}
	return strings.TrimSpace(u.FirstName + " " + initial)
}

// VerifyPassword verifies the collected password with the user's hashed password
func (u *User) VerifyPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

type SignupRequest struct {
	FirstName  string `json:"firstName" validate:"required" conform:"trim"`
	LastName   string `json:"lastName" validate:"required" conform:"trim"`
	Username   string `json:"username" validate:"omitempty,min=2" conform:"trim"`
	Email      string `json:"email" validate:"required,email" conform:"trim,lower"`
	Password   string `json:"password" validate:"required,min=6"`
	ProfilePic string `json:"profilePic" conform:"trim"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" conform:"trim,lower"`
	Password string `json:"password" validate:"required"`
}

type UpdateUsernameRequest struct {
	Username string `json:"username" validate:"required,min=2" conform:"trim"`
}

type DeviceTokenRequest struct {
	Token string `json:"token" validate:"required" conform:"trim"`
}

type SignupResponse struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
}

type LoginResponse struct {
	Message   string    `json:"message"`
	UserID    uuid.UUID `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Username  string      `json:"username"`
	Email     string      `json:"email,omitempty"`
	Image     *string     `json:"image"`
	Books     []uuid.UUID `json:"books"`
}

func (u *User) ToResponse() UserResponse {
	books := make([]uuid.UUID, 0, len(u.Books))
	for _, b := range u.Books {
		books = append(books, b.ID)
	}
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.DisplayUsername(),
		Email:     u.Email,
		Image:     u.Image,
		Books:     books,
	}
}

// UserProfile carries the display fields joined into chat summaries.
type UserProfile struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
}

// GoogleUserInfo is the subset of the Google userinfo payload used to sign in.
type GoogleUserInfo struct {
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}
