// SPDX-License-Identifier: MIT

package npy

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// WriteArray writes a rows×cols little-endian float64 array in C order.
// data is row-major and must hold rows*cols values.
func WriteArray(path string, rows, cols int, data []float64) error {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return pathErrorf(path, fmt.Errorf("%d values for shape (%d, %d): %w", len(data), rows, cols, ErrShape))
	}

	return writeFile(path, encodeHeader(Float64, []int{rows, cols}), func(w *bufio.Writer) error {
		var b [8]byte
		for _, v := range data {
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
			if _, err := w.Write(b[:]); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteRecords writes r as a 1-D structured array.
func WriteRecords(path string, r *Records) error {
	d := r.Dtype()

	return writeFile(path, encodeHeader(d, []int{r.Len()}), func(w *bufio.Writer) error {
		row := make([]byte, d.Size)
		for i := 0; i < r.Len(); i++ {
			for _, f := range d.Fields {
				f.Type.putInt(row[f.Offset:f.Offset+f.Type.Size], r.columns[f.Name][i])
			}
			if _, err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeFile(path string, header []byte, body func(*bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return pathErrorf(path, err)
	}
	w := bufio.NewWriter(f)
	if _, err = w.Write(header); err == nil {
		if err = body(w); err == nil {
			err = w.Flush()
		}
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return pathErrorf(path, err)
	}

	return nil
}
