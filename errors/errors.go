package errors

import "fmt"

var (
	ErrAlreadyConnected = fmt.Errorf("identity already connected")
	ErrNotConnected     = fmt.Errorf("identity not connected")

	ErrInvalidGroupName   = fmt.Errorf("group name must contain only letters and numbers")
	ErrInvalidGroupLength = fmt.Errorf("group name must be between 5-100 characters")
	ErrDuplicateGroup     = fmt.Errorf("another chat group with this name exists")
	ErrGroupNotFound      = fmt.Errorf("group not found")
	ErrNotGroupAdmin      = fmt.Errorf("only owner can delete this group")

	ErrMessageTooLong  = fmt.Errorf("message exceeds 500 characters")
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrUserExists      = fmt.Errorf("user already exists")
	ErrInvalidPassword = fmt.Errorf("password must mix upper, lower, digits and symbols")

	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrSinkClosed = fmt.Errorf("sink closed")
	ErrSinkFull   = fmt.Errorf("sink buffer full")
)
