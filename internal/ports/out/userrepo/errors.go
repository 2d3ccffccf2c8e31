package userrepo

import "errors"

var (
	ErrNotFound            = errors.New("user not found")
	ErrAlreadyExists       = errors.New("user already exists")
	ErrSubjectAlreadyBound = errors.New("subject already bound to a user")
	ErrHandleTaken         = errors.New("handle already taken")
	ErrEmailTaken          = errors.New("email already taken")
)
