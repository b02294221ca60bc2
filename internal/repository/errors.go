package repository

import "errors"

// ErrNotFound is returned when a required row does not exist. Callers use it
// to surface NotFound-equivalent failures; optional data (missing weather,
// missing readings) is reported as nil instead.
var ErrNotFound = errors.New("not found")
