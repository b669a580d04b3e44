package arrayio

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// Ext is appended to file names that lack it.
const Ext = ".npy"

// SaveFile writes data to filename in .npy format and returns the path
// written. Ext is appended when filename does not already end with it.
//
// data may be a numeric or bool scalar (rank 0), a numeric or bool slice
// (rank 1), a mat.Matrix (rank 2, float64), or an *Array of any rank and
// element type.
func SaveFile(filename string, data any) (string, error) {
	if !strings.HasSuffix(filename, Ext) {
		filename += Ext
	}

	val, err := writable(data)
	if err != nil {
		return "", err
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}

	werr := npyio.Write(f, val)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(filename)
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	return filename, nil
}

// ReadFile reads a .npy file. Shape, element type and values are those that
// were saved; Data is always returned in C order, also for files written
// with fortran_order.
func ReadFile(filename string) (*Array, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	descr := r.Header.Descr
	data, err := readData(r, descr.Type, descr.Shape)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	shape := append([]int{}, descr.Shape...)
	if descr.Fortran && len(shape) > 1 {
		data = fortranToC(reflect.ValueOf(data), shape).Interface()
	}

	return &Array{
		Shape: shape,
		DType: descr.Type,
		Data:  data,
	}, nil
}

func writable(data any) (any, error) {
	switch v := data.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedType)
	case *Array:
		return v.value()
	case Array:
		return v.value()
	case mat.Matrix:
		return v, nil
	default:
		return data, nil
	}
}

// readData decodes the payload into a slice matching the descriptor.
func readData(r *npyio.Reader, dtype string, shape []int) (any, error) {
	switch strings.TrimLeft(dtype, "<>|=") {
	case "f8":
		return readAs[float64](r, shape)
	case "f4":
		return readAs[float32](r, shape)
	case "i8":
		return readAs[int64](r, shape)
	case "i4":
		return readAs[int32](r, shape)
	case "i2":
		return readAs[int16](r, shape)
	case "i1":
		return readAs[int8](r, shape)
	case "u8":
		return readAs[uint64](r, shape)
	case "u4":
		return readAs[uint32](r, shape)
	case "u2":
		return readAs[uint16](r, shape)
	case "u1":
		return readAs[uint8](r, shape)
	case "b1":
		return readAs[bool](r, shape)
	default:
		return nil, fmt.Errorf("%w: dtype %q", ErrUnsupportedType, dtype)
	}
}

func readAs[T any](r *npyio.Reader, shape []int) ([]T, error) {
	if len(shape) == 0 {
		var v T
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return []T{v}, nil
	}

	out := make([]T, numElements(shape))
	if err := r.Read(&out); err != nil {
		return nil, err
	}
	return out, nil
}
