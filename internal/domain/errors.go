package domain

import "errors"

// Account errors
var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already registered")
	ErrAccountNotFound = errors.New("account not found")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidState       = errors.New("invalid state token")
)

// Provider errors
var (
	ErrUpstream         = errors.New("spotify request failed")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrNoRefreshToken   = errors.New("no spotify refresh token on file")
	ErrNotLinked        = errors.New("account is not linked to spotify")
)
