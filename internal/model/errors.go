package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Field data related errors
	ErrDetectionNotFound = errors.New("image not found")
	ErrSettingsNotFound  = errors.New("settings not found")
)
