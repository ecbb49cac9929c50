package finding

import (
	"errors"
	"fmt"
	"strings"
)

// Common engine errors
var (
	// ErrMissingDataType is returned when no data type was requested;
	// the wrapping error carries the available names.
	ErrMissingDataType = errors.New("data type not provided")

	// ErrUnknownDataType is returned when the requested data type is
	// absent from the resolved catalog.
	ErrUnknownDataType = errors.New("unknown data type")
)

// DataTypeError reports a missing or unknown data type together with
// the full set of valid names, so callers can self-correct.
type DataTypeError struct {
	DataType string
	Known    []string
	kind     error
}

// NewUnknownDataTypeError creates an error for a data type absent from
// the catalog.
func NewUnknownDataTypeError(dataType string, known []string) *DataTypeError {
	return &DataTypeError{DataType: dataType, Known: known, kind: ErrUnknownDataType}
}

// NewMissingDataTypeError creates the catalog-listing error returned
// when no data type was requested at all.
func NewMissingDataTypeError(known []string) *DataTypeError {
	return &DataTypeError{Known: known, kind: ErrMissingDataType}
}

// Error implements the error interface
func (e *DataTypeError) Error() string {
	if errors.Is(e.kind, ErrMissingDataType) {
		return fmt.Sprintf("data type not provided; available data types: %s", strings.Join(e.Known, ", "))
	}
	return fmt.Sprintf("unknown data type %q; available data types: %s", e.DataType, strings.Join(e.Known, ", "))
}

// Unwrap returns the sentinel kind
func (e *DataTypeError) Unwrap() error {
	return e.kind
}

// IsUnknownDataType checks whether an error reports an unknown data type
func IsUnknownDataType(err error) bool {
	return errors.Is(err, ErrUnknownDataType)
}

// IsMissingDataType checks whether an error reports an omitted data type
func IsMissingDataType(err error) bool {
	return errors.Is(err, ErrMissingDataType)
}
