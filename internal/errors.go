package internal

import (
	"errors"
)

var (
	ENOTSUP           = errors.New("not supported")
	ErrInvalidConfig  = errors.New("invalid config")
	ErrUnknownBackend = errors.New("unknown backend")
)
