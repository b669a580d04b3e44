// Package arrayio saves a numeric array to a NumPy .npy file and reads it
// back. The file format and its encoding are handled by
// github.com/sbinet/npyio; files are interchangeable with numpy.save and
// numpy.load.
//
// # Saving
//
//	path, err := arrayio.SaveFile("weights", []float64{1, 1, 1, 1, 1})
//	// path == "weights.npy"
//
//	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
//	_, err = arrayio.SaveFile("matrix.npy", m)
//
// # Reading
//
//	arr, err := arrayio.ReadFile("weights.npy")
//	arr.Shape // [5]
//	arr.Data  // []float64{1, 1, 1, 1, 1}
//
// Files of any rank can be read; Data always holds the elements flattened in
// the file's storage order. Writing supports ranks 0 to 2.
package arrayio
