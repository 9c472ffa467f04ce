package types

import "errors"

// Session lifecycle errors.
var (
	ErrAlreadyStarted = errors.New("session is already started")
	ErrNotStarted     = errors.New("session is not started")
)

// Identity registry errors.
var (
	ErrBindingProtected = errors.New("id is bound to a user-authored behaviour")
	ErrNilBehaviour     = errors.New("behaviour must not be nil")
	ErrBehaviourDeleted = errors.New("behaviour was destroyed")
	ErrNotBound         = errors.New("no behaviour is bound to id")
)

// ErrInvalidStatus is returned when parsing an unknown status name.
var ErrInvalidStatus = errors.New("invalid status")

// Capture store errors.
var (
	ErrStoreDetached   = errors.New("capture store is detached")
	ErrAlreadyAttached = errors.New("capture store is already attached")
	ErrCaptureNotFound = errors.New("capture not found")
	ErrInvalidID       = errors.New("invalid capture ID")
)
