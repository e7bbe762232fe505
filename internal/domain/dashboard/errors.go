package dashboard

import "errors"

var (
	ErrConfirmationRequired = errors.New("deleting a service requires confirmation")
	ErrInvalidStatus        = errors.New("status must be approved or cancelled")
	ErrViewClosed           = errors.New("dashboard view is closed")
)
