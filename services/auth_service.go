package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/config"
	"github.com/techagentng/bookclub/db"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/mailingservices"
	"github.com/techagentng/bookclub/models"
	"github.com/techagentng/bookclub/services/jwt"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService covers accounts and profiles.
type AuthService interface {
	SignupUser(request *models.SignupRequest) (*models.SignupResponse, error)
	LoginUser(request *models.LoginRequest) (*models.LoginResponse, error)
	GoogleLoginUser(info *models.GoogleUserInfo) (*models.LoginResponse, error)
	Logout(token string) error
	GetUserProfile(userID uuid.UUID) (*models.User, error)
	GetAllUsers() ([]models.User, error)
	SearchUsers(query string) ([]models.User, error)
	UpdateUsername(userID uuid.UUID, request *models.UpdateUsernameRequest) error
	UpdateDeviceToken(userID uuid.UUID, request *models.DeviceTokenRequest) error
}

type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
	mail     mailingservices.Mailer
	logger   *zap.SugaredLogger
}

func NewAuthService(authRepo db.AuthRepository, conf *config.Config, mail mailingservices.Mailer, logger *zap.SugaredLogger) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
		mail:     mail,
		logger:   logger,
	}
}

func GenerateHashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashedPassword), err
}

func validate(request interface{}) error {
	if violations := models.ValidateStruct(request); len(violations) > 0 {
		return errs.Unprocessable(models.JoinErrors(violations))
	}
	return nil
}

func (s *authService) SignupUser(request *models.SignupRequest) (*models.SignupResponse, error) {
	if err := validate(request); err != nil {
		return nil, err
	}
	if err := models.ValidatePassword(request.Password); err != nil {
		return nil, errs.Unprocessable(err.Error())
	}

	if err := s.authRepo.IsEmailExist(request.Email); err != nil {
		s.logger.Infow("signup rejected", "email", request.Email, "error", err)
		return nil, errs.GetUniqueContraintError(err)
	}

	hashedPassword, err := GenerateHashPassword(request.Password)
	if err != nil {
		s.logger.Errorw("hash password", "error", err)
		return nil, errs.ErrInternalServerError
	}

	image := request.ProfilePic
	if image == "" {
		image = models.DefaultProfileImage
	}
	user, err := s.authRepo.CreateUser(&models.User{
		FirstName:      request.FirstName,
		LastName:       request.LastName,
		Username:       request.Username,
		Email:          request.Email,
		HashedPassword: hashedPassword,
		Image:          &image,
	})
	if err != nil {
		s.logger.Errorw("create user", "email", request.Email, "error", err)
		return nil, errs.GetUniqueContraintError(err)
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, s.Config.JWTSecret, s.Config.TokenTTL)
	if err != nil {
		s.logger.Errorw("generate token", "userId", user.ID, "error", err)
		return nil, errs.ErrInternalServerError
	}

	s.sendWelcome(user)

	return &models.SignupResponse{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.DisplayUsername(),
		Token:     token,
	}, nil
}

func (s *authService) sendWelcome(user *models.User) {
	if s.mail == nil {
		return
	}
	subject, body := mailingservices.WelcomeMail(user.FirstName)
	go func() {
		if err := s.mail.SendMail(context.Background(), subject, body, user.Email); err != nil {
			s.logger.Warnw("welcome mail not sent", "userId", user.ID, "error", err)
		}
	}()
}

func (s *authService) LoginUser(request *models.LoginRequest) (*models.LoginResponse, error) {
	if err := validate(request); err != nil {
		return nil, err
	}

	user, err := s.authRepo.FindUserByEmail(request.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		s.logger.Errorw("find user by email", "error", err)
		return nil, errs.Storage("unable to find user", err)
	}
	if user.HashedPassword == "" || user.VerifyPassword(request.Password) != nil {
		return nil, errs.ErrInvalidCredentials
	}

	return s.loginResponse(user)
}

func (s *authService) GoogleLoginUser(info *models.GoogleUserInfo) (*models.LoginResponse, error) {
	if info == nil || info.Email == "" {
		return nil, errs.Auth("Google account has no email")
	}
	user, err := s.authRepo.FindUserByEmail(info.Email)
	switch {
	case err == nil:
	case errors.Is(err, db.ErrNotFound):
		image := info.Picture
		if image == "" {
			image = models.DefaultProfileImage
		}
		user, err = s.authRepo.CreateUser(&models.User{
			FirstName: info.GivenName,
			LastName:  info.FamilyName,
			Email:     info.Email,
			Image:     &image,
			IsSocial:  true,
		})
		if err != nil {
			s.logger.Errorw("create google user", "email", info.Email, "error", err)
			return nil, errs.GetUniqueContraintError(err)
		}
		s.sendWelcome(user)
	default:
		s.logger.Errorw("find google user", "error", err)
		return nil, errs.Storage("unable to find user", err)
	}
	return s.loginResponse(user)
}

func (s *authService) loginResponse(user *models.User) (*models.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, user.Email, s.Config.JWTSecret, s.Config.TokenTTL)
	if err != nil {
		s.logger.Errorw("generate token", "userId", user.ID, "error", err)
		return nil, errs.ErrInternalServerError
	}
	return &models.LoginResponse{
		Message:   "Login successful",
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Token:     token,
	}, nil
}

// Logout revokes token until its own expiry.
func (s *authService) Logout(token string) error {
	claims, err := jwt.ValidateAndGetClaims(token, s.Config.JWTSecret)
	if err != nil {
		return errs.Auth("Invalid token")
	}
	err = s.authRepo.AddToBlackList(&models.Blacklist{
		Token:     token,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC(),
	})
	if err != nil {
		s.logger.Errorw("blacklist token", "error", err)
		return errs.Storage("unable to log out", err)
	}
	return nil
}

func (s *authService) GetUserProfile(userID uuid.UUID) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errs.NotFound("User not found")
		}
		return nil, errs.Storage("unable to fetch user", err)
	}
	return user, nil
}

func (s *authService) GetAllUsers() ([]models.User, error) {
	users, err := s.authRepo.GetAllUsers()
	if err != nil {
		s.logger.Errorw("list users", "error", err)
		return nil, errs.Storage("unable to fetch users", err)
	}
	return users, nil
}

func (s *authService) SearchUsers(query string) ([]models.User, error) {
	if strings.TrimSpace(query) == "" {
		return s.GetAllUsers()
	}
	users, err := s.authRepo.SearchUsers(query)
	if err != nil {
		s.logger.Errorw("search users", "error", err)
		return nil, errs.Storage("unable to search users", err)
	}
	return users, nil
}

func (s *authService) UpdateUsername(userID uuid.UUID, request *models.UpdateUsernameRequest) error {
	if err := validate(request); err != nil {
		return err
	}
	return s.updateUser(s.authRepo.UpdateUsername(userID, request.Username))
}

func (s *authService) UpdateDeviceToken(userID uuid.UUID, request *models.DeviceTokenRequest) error {
	if err := validate(request); err != nil {
		return err
	}
	return s.updateUser(s.authRepo.UpdateDeviceToken(userID, request.Token))
}

func (s *authService) updateUser(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return errs.NotFound("User not found")
	default:
		s.logger.Errorw("update user", "error", err)
		return errs.Storage("unable to update user", err)
	}
}
