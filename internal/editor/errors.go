package editor

import "errors"

var (
	ErrElementNotFound      = errors.New("element not found")
	ErrSectionNotFound      = errors.New("section not found")
	ErrEmptySectionName     = errors.New("section name must not be empty")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrSessionNotFound      = errors.New("session not found")
	ErrNothingToUndo        = errors.New("nothing to undo")
	ErrNothingToRedo        = errors.New("nothing to redo")
)
