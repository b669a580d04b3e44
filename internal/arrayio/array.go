package arrayio

import (
	"errors"
	"fmt"
	"reflect"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnsupportedType is returned for element types the .npy writer or
	// reader in this package does not map.
	ErrUnsupportedType = errors.New("arrayio: unsupported element type")

	// ErrUnsupportedRank is returned when Matrix is called on an array that
	// is not rank 2.
	ErrUnsupportedRank = errors.New("arrayio: unsupported rank")

	// ErrShapeMismatch is returned when Data does not hold product(Shape) elements.
	ErrShapeMismatch = errors.New("arrayio: data length does not match shape")
)

// Array is an n-dimensional array with flat, typed storage.
type Array struct {
	// Shape lists the size of every dimension; empty for a scalar.
	Shape []int

	// DType is the NumPy type descriptor, e.g. "<f8". Set by ReadFile.
	DType string

	// Fortran reports that Data is stored column-major. ReadFile always
	// returns C order; the flag only matters for arrays built by hand.
	Fortran bool

	// Data is a flat slice such as []float64, []int32 or []bool, in C order
	// unless Fortran is set.
	Data any
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.Shape) }

// Len returns the number of stored elements.
func (a *Array) Len() int {
	v := reflect.ValueOf(a.Data)
	if v.Kind() != reflect.Slice {
		return 0
	}
	return v.Len()
}

// Matrix returns a rank-2 float64 array as a gonum matrix.
func (a *Array) Matrix() (*mat.Dense, error) {
	if a.Rank() != 2 {
		return nil, fmt.Errorf("%w: matrix needs rank 2, have %d", ErrUnsupportedRank, a.Rank())
	}
	data, ok := a.Data.([]float64)
	if !ok {
		return nil, fmt.Errorf("%w: matrix needs float64, have %T", ErrUnsupportedType, a.Data)
	}
	rows, cols := a.Shape[0], a.Shape[1]
	if len(data) != rows*cols {
		return nil, ErrShapeMismatch
	}

	if a.Fortran {
		return mat.DenseCopyOf(mat.NewDense(cols, rows, data).T()), nil
	}
	return mat.NewDense(rows, cols, data), nil
}

// value converts the array to something npyio.Write understands: the bare
// element for rank 0, the slice for rank 1, and a nested Go array such as
// [2][3][4]int32 above that.
func (a *Array) value() (any, error) {
	if a.Data == nil {
		return nil, fmt.Errorf("%w: nil data", ErrUnsupportedType)
	}
	data := reflect.ValueOf(a.Data)
	if data.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: data must be a slice, have %T", ErrUnsupportedType, a.Data)
	}
	if data.Len() != numElements(a.Shape) {
		return nil, fmt.Errorf("%w: %d elements for shape %v", ErrShapeMismatch, data.Len(), a.Shape)
	}
	if a.Fortran {
		data = fortranToC(data, a.Shape)
	}

	switch a.Rank() {
	case 0:
		return data.Index(0).Interface(), nil
	case 1:
		return data.Interface(), nil
	}

	typ := data.Type().Elem()
	for i := len(a.Shape) - 1; i >= 0; i-- {
		typ = reflect.ArrayOf(a.Shape[i], typ)
	}
	nested := reflect.New(typ).Elem()
	fillNested(nested, data, 0)
	return nested.Interface(), nil
}

// fillNested copies flat C-order elements starting at offset into the
// nested array dst and returns the offset after the last one copied.
func fillNested(dst, flat reflect.Value, offset int) int {
	if dst.Kind() != reflect.Array {
		dst.Set(flat.Index(offset))
		return offset + 1
	}
	for i := 0; i < dst.Len(); i++ {
		offset = fillNested(dst.Index(i), flat, offset)
	}
	return offset
}

// fortranToC reorders column-major data of the given shape into row-major.
func fortranToC(data reflect.Value, shape []int) reflect.Value {
	n := data.Len()
	out := reflect.MakeSlice(data.Type(), n, n)
	idx := make([]int, len(shape))

	for c := 0; c < n; c++ {
		f, stride := 0, 1
		for k, d := range shape {
			f += idx[k] * stride
			stride *= d
		}
		out.Index(c).Set(data.Index(f))

		// Advance the C-order index, last dimension fastest.
		for k := len(shape) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}
	return out
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
