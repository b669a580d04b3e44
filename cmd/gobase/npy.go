package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/handiism/gobase/internal/arrayio"
	"github.com/handiism/gobase/internal/config"
)

func runNpy(ctx context.Context, _ *config.Settings, args []string) error {
	if len(args) == 0 {
		npyUsage()
		return flag.ErrHelp
	}
	switch args[0] {
	case "save":
		return runNpySave(args[1:])
	case "show":
		return runNpyShow(args[1:])
	}
	npyUsage()
	return flag.ErrHelp
}

func npyUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  gobase npy save -o FILE [-dtype float64|int64] [-rows N] VALUE...")
	fmt.Fprintln(out, "  gobase npy show FILE")
}

func runNpySave(args []string) error {
	fs := flag.NewFlagSet("npy save", flag.ContinueOnError)
	var (
		out   = fs.String("o", "", "Output file (.npy is appended when missing)")
		dtype = fs.String("dtype", "float64", "Element type: float64 or int64")
		rows  = fs.Int("rows", 0, "Save a matrix with this many rows")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" || fs.NArg() == 0 {
		npyUsage()
		return flag.ErrHelp
	}

	data, err := buildArray(*dtype, *rows, fs.Args())
	if err != nil {
		return err
	}
	path, err := arrayio.SaveFile(*out, data)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// buildArray turns command line values into something arrayio.SaveFile
// accepts: a slice, or a matrix when rows > 0. float64 matrices are
// *mat.Dense, int64 ones *arrayio.Array.
func buildArray(dtype string, rows int, values []string) (any, error) {
	switch dtype {
	case "int64":
		n, err := parseInts(values)
		if err != nil || rows <= 0 {
			return n, err
		}
		if len(n)%rows != 0 {
			return nil, fmt.Errorf("%d values do not fill %d rows", len(n), rows)
		}
		return &arrayio.Array{Shape: []int{rows, len(n) / rows}, Data: n}, nil
	case "float64":
		f, err := parseFloats(values)
		if err != nil {
			return nil, err
		}
		if rows <= 0 {
			return f, nil
		}
		if len(f)%rows != 0 {
			return nil, fmt.Errorf("%d values do not fill %d rows", len(f), rows)
		}
		return mat.NewDense(rows, len(f)/rows, f), nil
	}
	return nil, fmt.Errorf("%w: %s", arrayio.ErrUnsupportedType, dtype)
}

func runNpyShow(args []string) error {
	if len(args) != 1 {
		npyUsage()
		return flag.ErrHelp
	}

	arr, err := arrayio.ReadFile(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("dtype:   %s\n", arr.DType)
	fmt.Printf("shape:   %v\n", arr.Shape)
	fmt.Printf("fortran: %v\n", arr.Fortran)

	if m, err := arr.Matrix(); err == nil {
		fmt.Printf("%v\n", mat.Formatted(m, mat.Squeeze()))
		return nil
	}
	fmt.Printf("%v\n", arr.Data)
	return nil
}

func parseFloats(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

func parseInts(values []string) ([]int64, error) {
	out := make([]int64, len(values))
	for i, v := range values {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		out[i] = n
	}
	return out, nil
}
