package auth

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAccountBanned        = errors.New("this account has been banned")
	ErrDuplicateUsername    = errors.New("username is already taken")
	ErrDuplicateEmail       = errors.New("email is already in use")
	ErrRefreshTokenNotFound = errors.New("refresh token is not in database")
	ErrRefreshTokenExpired  = errors.New("refresh token was expired")
	ErrAccessTokenInvalid   = errors.New("invalid access token")
	ErrUserNotFound         = errors.New("user not found")
	ErrLastAdmin            = errors.New("cannot remove the last admin user")
)
