package service

import (
	"errors"

	"car-rental-service/internal/auth"
	"car-rental-service/internal/repository"
)

var (
	// ErrNotFound aliases the store error so handlers depend on one package.
	ErrNotFound      = repository.ErrNotFound
	ErrWrongPassword = errors.New("wrong password")
	ErrForbidden     = errors.New("not the owner of this listing")

	// ErrPasswordTooLong is a client error: bcrypt rejects passwords over 72 bytes.
	ErrPasswordTooLong = auth.ErrPasswordTooLong
)
