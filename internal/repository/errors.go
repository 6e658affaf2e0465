package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicateEmail indicates the unique email constraint rejected an insert.
var ErrDuplicateEmail = errors.New("repository: email already exists")
