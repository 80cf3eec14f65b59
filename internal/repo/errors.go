package repo

import "errors"

// ErrNotFound is returned when a lookup matches no row, and by conditional
// updates (single-use marks, rotation) when the guarded predicate no longer
// holds. Callers map it to their own failure codes.
var ErrNotFound = errors.New("not found")
