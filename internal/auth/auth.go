// Package auth implements session-token authentication: bcrypt login against
// the users table, a sessions table holding opaque uuid tokens, and the gin
// middleware guarding admin routes.
package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// SessionTTL — how long a login stays valid.
const SessionTTL = 7 * 24 * time.Hour

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Login checks the credentials and returns a fresh session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.Unauthorized("invalid email or password")
		}
		return "", err
	}
	if !models.CheckPassword(user.PasswordHash, password) {
		return "", apperr.Unauthorized("invalid email or password")
	}
	session := models.Session{
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(SessionTTL),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return "", err
	}
	return session.Token, nil
}

// Logout invalidates the session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	var session models.Session
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unauthorized("invalid session token")
		}
		return err
	}
	return s.db.WithContext(ctx).Delete(&session).Error
}

// Verify checks that the token names a live session. Expired sessions are
// removed as a side effect.
func (s *Service) Verify(ctx context.Context, token string) error {
	var session models.Session
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unauthorized("invalid or expired session token")
		}
		return err
	}
	if session.Expired(time.Now()) {
		_ = s.db.WithContext(ctx).Delete(&session).Error
		return apperr.Unauthorized("session token has expired")
	}
	return nil
}

// Middleware rejects requests that do not carry a valid bearer token.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "no session token provided"})
			return
		}
		if err := s.Verify(c.Request.Context(), token); err != nil {
			c.AbortWithStatusJSON(apperr.StatusOf(err), gin.H{"message": err.Error()})
			return
		}
		c.Next()
	}
}

// SeedAdmin creates the admin account when it does not exist yet.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := models.HashPassword(password)
	if err != nil {
		return err
	}
	log.Printf("seeding admin user %s", email)
	return db.Create(&models.User{Email: email, Username: "admin", PasswordHash: hash}).Error
}
