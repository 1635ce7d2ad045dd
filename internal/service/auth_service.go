package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/HappyHacker143/taskflow/internal/apperror"
	"github.com/HappyHacker143/taskflow/internal/models"
)

const invalidCredentialsMessage = "please enter a correct username and password"

type AuthService struct {
	db      *gorm.DB
	options Options
}

func NewAuthService(db *gorm.DB, options Options) *AuthService {
	return &AuthService{db: db, options: options.withDefaults()}
}

// Login checks the credentials and opens a new session. Unknown users, wrong
// passwords and inactive accounts all fail with the same message.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return LoginResult{}, apperror.New(apperror.CodeValidation, invalidCredentialsMessage)
	}

	var user models.User
	err := s.db.WithContext(ctx).Preload("Profile.Department").Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResult{}, apperror.New(apperror.CodeValidation, invalidCredentialsMessage)
		}
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil || !user.IsActive {
		return LoginResult{}, apperror.New(apperror.CodeValidation, invalidCredentialsMessage)
	}

	now := s.options.Now().UTC()
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.options.SessionTTL),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at <= ?", now).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("purge expired sessions: %w", err)
		}
		if err := tx.Omit("User").Create(&session).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Update("last_login", now).Error
	})
	if err != nil {
		return LoginResult{}, err
	}

	user.LastLogin = &now
	return LoginResult{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      userToDTO(user),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its active user. Expired sessions
// are removed on sight.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, apperror.New(apperror.CodeUnauthorized, "authentication required")
	}

	var session models.Session
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperror.New(apperror.CodeUnauthorized, "authentication required")
		}
		return models.User{}, fmt.Errorf("load session: %w", err)
	}

	if !session.ExpiresAt.After(s.options.Now().UTC()) {
		if err := s.db.WithContext(ctx).Delete(&models.Session{}, session.ID).Error; err != nil {
			return models.User{}, fmt.Errorf("delete expired session: %w", err)
		}
		return models.User{}, apperror.New(apperror.CodeUnauthorized, "session expired")
	}

	user, err := loadUser(ctx, s.db, session.UserID)
	if err != nil {
		if apperror.GetCode(err) == apperror.CodeNotFound {
			return models.User{}, apperror.New(apperror.CodeUnauthorized, "authentication required")
		}
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, apperror.New(apperror.CodeUnauthorized, "account is inactive")
	}
	return user, nil
}
