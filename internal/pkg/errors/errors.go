package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid")
	ErrConfig       = errors.New("configuration error")
	ErrStorage      = errors.New("storage error")
	ErrEmbedding    = errors.New("embedding error")
	ErrInternal     = errors.New("internal")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}
