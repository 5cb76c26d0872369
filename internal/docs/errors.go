package docs

import "errors"

var (
	ErrNotFound  = errors.New("docs: not found")
	ErrForbidden = errors.New("docs: forbidden")
)
