package shelter

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when an argument is not a mapping
	ErrValidation = errors.New("validation error")

	// ErrEmptyInput is returned when Create receives no record
	ErrEmptyInput = errors.New("nothing to save, record is empty")

	// ErrStoreFault matches any *StoreFault with errors.Is
	ErrStoreFault = errors.New("store fault")
)

// StoreFault reports a failure raised by the document store client.
// The client's own error is kept as text only so callers never depend
// on driver error types.
type StoreFault struct {
	Op    string
	Cause string
}

func newStoreFault(op string, err error) *StoreFault {
	return &StoreFault{Op: op, Cause: err.Error()}
}

func (f *StoreFault) Error() string {
	return fmt.Sprintf("store fault during %s: %s", f.Op, f.Cause)
}

// Is lets errors.Is(err, ErrStoreFault) match every StoreFault
func (f *StoreFault) Is(target error) bool {
	return target == ErrStoreFault
}

func validationError(what string, got interface{}) error {
	return fmt.Errorf("%w: %s must be a mapping, got %T", ErrValidation, what, got)
}
