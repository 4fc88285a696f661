package repo

import "errors"

// Errors shared by every store implementation so callers do not depend on
// driver specific values.
var (
	ErrNotFound    = errors.New("subscriber not found")
	ErrDuplicateID = errors.New("subscriber id already exists")
)
