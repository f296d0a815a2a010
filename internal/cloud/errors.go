package cloud

import "errors"

// ErrNotFound means the sync service has no document with the given id
var ErrNotFound = errors.New("document not found")
