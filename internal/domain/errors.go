package domain

import "errors"

var (
	ErrMissingUserID   = errors.New("missing user id")
	ErrMissingPosterID = errors.New("missing poster id")
	ErrMissingTargetID = errors.New("missing target id")
)
