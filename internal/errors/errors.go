package errors

import "errors"

// Sentinel errors for the storage layer; handlers translate them to 404/409
// responses.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}
