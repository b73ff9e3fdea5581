package models

import "errors"

// ErrInvalidInput marks structurally invalid caller input such as a month
// outside 1-12 or a roster with colliding names.
var ErrInvalidInput = errors.New("invalid input")
