package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrSlotBooked = errors.New("slot already holds an approved booking")

	ErrAlreadyDecided = errors.New("booking already carries a different terminal status")
)
