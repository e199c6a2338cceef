package pathing

import "errors"

// ErrInvalidPath is an error that occurs when a given path cannot be
// normalized into a canonical mount-relative key.
var ErrInvalidPath = errors.New("invalid path")
