package gallery

import "errors"

var (
	ErrEmptyGallery    = errors.New("pest has no images")
	ErrSessionNotFound = errors.New("gallery session not found")
	ErrCorruptSession  = errors.New("gallery session is corrupt")
	ErrSessionBusy     = errors.New("gallery session is being changed concurrently")
)
