// Package precision - Precision plugins for delegating numeric-precision
// concerns to a training backend.
//
// A plugin holds a validated precision mode and does three things: casts
// input tensors to the representation the mode dictates, forwards the
// backward pass to the backend engine, and forwards the optimizer step to the
// backend's optimizer. All gradient and optimizer logic stays inside the
// backend; the plugins never apply their own updates.
package precision

import (
	"fmt"

	"github.com/weave-ml/go-train/dtype"
)

// Precision is the floating-point mode a training session runs in.
type Precision string

// Supported precision modes.
const (
	// PrecisionHalf runs inputs in IEEE 754 half precision.
	PrecisionHalf Precision = "16"
	// PrecisionFull runs inputs in single precision.
	PrecisionFull Precision = "32"
	// PrecisionBF16 runs inputs in bfloat16.
	PrecisionBF16 Precision = "bf16"
)

// Supported is the closed set of modes a backend-delegating plugin accepts.
var Supported = []Precision{PrecisionHalf, PrecisionFull, PrecisionBF16}

// precisionToDType is the fixed mode-to-representation mapping.
var precisionToDType = map[Precision]dtype.DType{
	PrecisionHalf: dtype.Float16,
	PrecisionFull: dtype.Float32,
	PrecisionBF16: dtype.BFloat16,
}

// DType returns the tensor representation the mode dictates.
func (p Precision) DType() dtype.DType { return precisionToDType[p] }

// Valid reports whether p is one of the supported modes.
func (p Precision) Valid() bool {
	_, ok := precisionToDType[p]
	return ok
}

// UnsupportedPrecisionError reports a requested mode outside the supported
// set. It carries the rejected value and the supported modes so callers can
// surface an actionable message.
type UnsupportedPrecisionError struct {
	Value     any
	Supported []Precision
}

func (e *UnsupportedPrecisionError) Error() string {
	return fmt.Sprintf("precision=%v is not supported; precision must be one of %v", e.Value, e.Supported)
}

// ParsePrecision normalizes a requested mode into a Precision.
//
// Accepted spellings: the integers 16 and 32, the strings "16", "32" and
// "bf16", or a Precision value. Anything else fails with
// *UnsupportedPrecisionError.
//
// Arguments:
// - v: The requested mode in any accepted spelling.
//
// Returns:
// - Precision: The validated mode.
// - error: *UnsupportedPrecisionError for any value outside the supported set.
func ParsePrecision(v any) (Precision, error) {
	var p Precision
	switch m := v.(type) {
	case Precision:
		p = m
	case string:
		p = Precision(m)
	case int:
		p = Precision(fmt.Sprintf("%d", m))
	case int32:
		p = Precision(fmt.Sprintf("%d", m))
	case int64:
		p = Precision(fmt.Sprintf("%d", m))
	case float64:
		// JSON decodes numbers as float64; accept exact integer spellings.
		if m == float64(int64(m)) {
			p = Precision(fmt.Sprintf("%d", int64(m)))
		}
	}
	if !p.Valid() {
		return "", &UnsupportedPrecisionError{Value: v, Supported: Supported}
	}
	return p, nil
}
