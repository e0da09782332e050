package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user
func (s *userService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	var count int64
	s.db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:     strings.ToLower(email),
		Password:  string(hashedPassword),
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, storageError(err)
	}

	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(email), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storageError(err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storageError(err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// StoreRefreshTokenHash persists the hash of the user's current refresh token.
func (s *userService) StoreRefreshTokenHash(userID uint, tokenHash string) error {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("refresh_token_hash", tokenHash).Error; err != nil {
		return storageError(err)
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for the user.
func (s *userService) GetRefreshTokenHash(userID uint) (string, error) {
	var user models.User
	if err := s.db.Select("refresh_token_hash").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", storageError(err)
	}
	return user.RefreshTokenHash, nil
}
