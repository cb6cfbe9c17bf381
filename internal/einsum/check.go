package einsum

import (
	"fmt"
	"math"
	"math/cmplx"
	"reflect"

	"github.com/born-ml/einsum/internal/tensor"
)

// magnitude returns |x| for any real or complex element type, including
// named ones.
func magnitude[T tensor.Scalar](x T) float64 {
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Complex64, reflect.Complex128:
		return cmplx.Abs(v.Complex())
	default:
		return math.Abs(v.Float())
	}
}

func isFinite[T tensor.Scalar](x T) bool {
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Complex64, reflect.Complex128:
		z := v.Complex()
		return !cmplx.IsNaN(z) && !cmplx.IsInf(z)
	default:
		f := v.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
}

// compare checks got against the generic evaluator's result. Elements agree
// when |got-expected| <= tol*max(1, |expected|).
func compare[T tensor.Scalar](algo Algorithm, expected *tensor.Dense[T], got tensor.Mutable[T], tol float64) error {
	var mismatch *VerificationError
	tensor.ForEachIndex(expected.Shape(), func(idx []int) {
		if mismatch != nil {
			return
		}
		e, g := expected.At(idx), got.At(idx)
		if magnitude(g-e) <= tol*math.Max(1, magnitude(e)) {
			return
		}
		mismatch = &VerificationError{
			Algorithm: algo,
			Index:     append([]int(nil), idx...),
			Expected:  fmt.Sprint(e),
			Got:       fmt.Sprint(g),
		}
	})
	if mismatch != nil {
		return mismatch
	}
	return nil
}

// checkFinite reports the first NaN or infinite element of c.
func checkFinite[T tensor.Scalar](c tensor.Operand[T]) error {
	var bad []int
	tensor.ForEachIndex(c.Shape(), func(idx []int) {
		if bad == nil && !isFinite(c.At(idx)) {
			bad = append([]int(nil), idx...)
		}
	})
	if bad != nil {
		return fmt.Errorf("%w: C%v", ErrNonFinite, bad)
	}
	return nil
}
