package domain

import "errors"

var (
	ErrInvalidSession = errors.New("nick and minutes required")
	ErrStorageCorrupt = errors.New("state file is corrupt")
	ErrStorageWrite   = errors.New("failed to write state file")
)
