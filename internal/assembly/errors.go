package assembly

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownCompute indicates a compute descriptor names an unsupported function.
	ErrUnknownCompute = errors.New("unknown compute function")

	// ErrComputeInput indicates the arguments of a compute descriptor could not be resolved.
	ErrComputeInput = errors.New("compute input unresolved")
)

// ValidationError carries every failing rule message in field order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Messages, "; "))
}

// AsValidation extracts the validation messages from err, if any.
func AsValidation(err error) ([]string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages, true
	}
	return nil, false
}
