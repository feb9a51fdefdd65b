package usecase

import "errors"

// ErrQueryTooLong is returned when the search query exceeds MaxQueryLength.
var ErrQueryTooLong = errors.New("search query is too long")
