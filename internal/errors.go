package internal

import "errors"

var ErrNotFound = errors.New("not found")
