package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into coded domain errors:
//   - ErrNotFound: row does not exist
//   - ErrAlreadyUsed: a unique value (document, email, registration) is taken
//   - ErrInvalidState: row is in the wrong state for the requested write
//   - ErrUnavailable: backend temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
