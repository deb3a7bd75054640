package templates

import "errors"

var (
	// ErrNotFound indicates no template row matched the lookup.
	ErrNotFound = errors.New("templates: template not found")

	// ErrSystemTemplate indicates an attempt to delete a system template.
	ErrSystemTemplate = errors.New("templates: system templates cannot be deleted")

	// ErrInvalidType indicates an unknown template type.
	ErrInvalidType = errors.New("templates: invalid template type")
)
