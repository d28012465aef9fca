package domain

import "errors"

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidPhone    = errors.New("invalid phone")
	ErrInvalidCategory = errors.New("invalid category")
	ErrNotFound        = errors.New("not found")
	ErrRemoteStore     = errors.New("remote store failure")
	ErrUnauthorized    = errors.New("unauthorized")
)
