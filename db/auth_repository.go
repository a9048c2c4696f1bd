package db

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/models"
	"gorm.io/gorm"
)

type AuthRepository interface {
	CreateUser(user *models.User) (*models.User, error)
	IsEmailExist(email string) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uuid.UUID) (*models.User, error)
	// FindProfilesByIDs returns the display fields of the users that exist among ids.
	FindProfilesByIDs(ids []uuid.UUID) (map[uuid.UUID]models.UserProfile, error)
	GetAllUsers() ([]models.User, error)
	SearchUsers(query string) ([]models.User, error)
	UpdateUsername(id uuid.UUID, username string) error
	UpdateUserImage(id uuid.UUID, image, thumbnail string) error
	ClearUserImage(id uuid.UUID) error
	UpdateDeviceToken(id uuid.UUID, token string) error
	AddToBlackList(blacklist *models.Blacklist) error
	TokenInBlacklist(token string) bool
}

type authRepo struct {
	DB *gorm.DB
}

func NewAuthRepo(db *GormDB) AuthRepository {
	return &authRepo{db.DB}
}

func (a *authRepo) CreateUser(user *models.User) (*models.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := a.DB.Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return user, nil
}

func (a *authRepo) IsEmailExist(email string) error {
	var count int64
	err := a.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "gorm count error")
	}
	if count > 0 {
		return errors.New("email already in use")
	}
	return nil
}

func (a *authRepo) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	if err := a.DB.Where("email = ?", email).First(user).Error; err != nil {
		return nil, notFound(err, "find user by email")
	}
	return user, nil
}

func (a *authRepo) FindUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := a.DB.Preload("Books").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, "find user by id")
	}
	return &user, nil
}

func (a *authRepo) FindProfilesByIDs(ids []uuid.UUID) (map[uuid.UUID]models.UserProfile, error) {
	profiles := make(map[uuid.UUID]models.UserProfile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	var users []models.User
	err := a.DB.Select("id", "first_name", "last_name").Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "find profiles")
	}
	for _, u := range users {
		profiles[u.ID] = models.UserProfile{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
	}
	return profiles, nil
}

func (a *authRepo) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := a.DB.Preload("Books").Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "fetch all users")
	}
	return users, nil
}

func (a *authRepo) SearchUsers(query string) ([]models.User, error) {
	var users []models.User
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := a.DB.
		Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(username) LIKE ?", like, like, like).
		Order("first_name ASC").
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "search users")
	}
	return users, nil
}

func (a *authRepo) UpdateUsername(id uuid.UUID, username string) error {
	return a.updateColumns(id, map[string]interface{}{"username": username})
}

func (a *authRepo) UpdateUserImage(id uuid.UUID, image, thumbnail string) error {
	return a.updateColumns(id, map[string]interface{}{"image": image, "thumb_nail_url": thumbnail})
}

func (a *authRepo) ClearUserImage(id uuid.UUID) error {
	return a.updateColumns(id, map[string]interface{}{"image": nil, "thumb_nail_url": ""})
}

func (a *authRepo) UpdateDeviceToken(id uuid.UUID, token string) error {
	return a.updateColumns(id, map[string]interface{}{"device_token": token})
}

func (a *authRepo) updateColumns(id uuid.UUID, values map[string]interface{}) error {
	result := a.DB.Model(&models.User{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return errors.Wrap(result.Error, "update user")
	}
	if result.RowsAffected == 0 {
		return errors.Wrap(ErrNotFound, "update user")
	}
	return nil
}

func (a *authRepo) AddToBlackList(blacklist *models.Blacklist) error {
	return errors.Wrap(a.DB.Create(blacklist).Error, "blacklist token")
}

func (a *authRepo) TokenInBlacklist(token string) bool {
	var count int64
	if err := a.DB.Model(&models.Blacklist{}).Where("token = ?", token).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
