// Package auth owns the credential and token lifecycle: password checks,
// access token issue/verify and the persisted refresh token record.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gearsphere/motorclub-backend/internal/hash"
	"github.com/gearsphere/motorclub-backend/internal/logging"
	"github.com/gearsphere/motorclub-backend/internal/models"
)

type Service struct {
	DB         *gorm.DB
	JWTSecret  []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Authenticate resolves the account by username first, then by email, and
// checks the password hash. A banned account fails even with valid credentials.
func (s *Service) Authenticate(ctx context.Context, usernameOrEmail, password string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("username = ?", usernameOrEmail).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.DB.WithContext(ctx).Where("email = ?", usernameOrEmail).First(&user).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}
	return &user, nil
}

func (s *Service) IssueAccessToken(user *models.User) (string, time.Time, error) {
	exp := time.Now().Add(s.AccessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefreshToken replaces any prior refresh token of the user with a fresh
// opaque value. Concurrent logins race on the replace; last writer wins and
// the loser's token surfaces as ErrRefreshTokenNotFound on next use.
func (s *Service) IssueRefreshToken(ctx context.Context, userID uint) (*models.RefreshToken, error) {
	token := models.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.RefreshTTL),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&token).Error
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// VerifyAccessToken fails closed: a bad signature, malformed token or past
// expiry all collapse to ErrAccessTokenInvalid.
func (s *Service) VerifyAccessToken(tokenStr string) (string, error) {
	claims, err := AccessClaimsFromToken(tokenStr, s.JWTSecret)
	if err != nil {
		return "", ErrAccessTokenInvalid
	}
	return claims.Subject, nil
}

// RefreshAccessToken exchanges a stored refresh token for a new access token
// scoped to the owner's current username. An expired record is deleted on
// sight, so a second attempt reports not-found rather than expired.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshValue string) (string, time.Time, error) {
	var stored models.RefreshToken
	if err := s.DB.WithContext(ctx).Where("token = ?", refreshValue).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, ErrRefreshTokenNotFound
		}
		return "", time.Time{}, err
	}

	if time.Now().After(stored.ExpiresAt) {
		if err := s.DB.WithContext(ctx).Delete(&stored).Error; err != nil {
			logging.FromContext(ctx).Error("failed to delete expired refresh token", "error", err)
		}
		return "", time.Time{}, ErrRefreshTokenExpired
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, ErrRefreshTokenNotFound
		}
		return "", time.Time{}, err
	}
	if user.Banned {
		return "", time.Time{}, ErrAccountBanned
	}

	return s.IssueAccessToken(&user)
}

// RevokeAllForUser deletes the user's refresh token if one exists. Idempotent;
// called on signout, account deletion and ban.
func (s *Service) RevokeAllForUser(ctx context.Context, userID uint) error {
	return s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

// ResolveUser re-reads the account so a valid signature for a banned or
// deleted user is still rejected at the boundary.
func (s *Service) ResolveUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}
	return &user, nil
}
