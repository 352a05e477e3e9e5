package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when a column's length does not match the frame.
	ErrShapeMismatch = errors.New("column length does not match frame length")
	// ErrUnknownColumn is returned when a requested column does not exist.
	ErrUnknownColumn = errors.New("unknown column")
)

// Frame is a column-oriented table of float64 values. Column order is
// preserved as columns are added, so projections come out in a stable order.
type Frame struct {
	names []string
	cols  map[string][]float64
	n     int
	sized bool
}

// NewFrame creates an empty frame expecting columns of length n.
func NewFrame(n int) *Frame {
	return &Frame{
		cols:  make(map[string][]float64),
		n:     n,
		sized: true,
	}
}

// Len returns the number of rows in the frame.
func (f *Frame) Len() int {
	return f.n
}

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the values of the named column. The returned slice is the
// frame's backing storage and must not be mutated by callers.
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	return col, nil
}

// AddColumn appends a named column to the frame. Replacing an existing
// column keeps its original position.
func (f *Frame) AddColumn(name string, values []float64) error {
	if f.sized && len(values) != f.n {
		return fmt.Errorf("%w: column %q has %d values, frame has %d rows",
			ErrShapeMismatch, name, len(values), f.n)
	}
	if !f.sized {
		f.n = len(values)
		f.sized = true
	}
	if _, exists := f.cols[name]; !exists {
		f.names = append(f.names, name)
	}
	f.cols[name] = values
	return nil
}

// Select returns a new frame containing only the named columns, in the
// given order. The underlying column slices are shared, not copied.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := NewFrame(f.n)
	for _, name := range names {
		col, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Join merges the columns of other into f. Both frames must have the same
// number of rows.
func (f *Frame) Join(other *Frame) error {
	if other.n != f.n {
		return fmt.Errorf("%w: joining %d rows onto %d rows", ErrShapeMismatch, other.n, f.n)
	}
	for _, name := range other.names {
		if err := f.AddColumn(name, other.cols[name]); err != nil {
			return err
		}
	}
	return nil
}

// Row returns the values of row i across all columns, in column order.
func (f *Frame) Row(i int) []float64 {
	out := make([]float64, len(f.names))
	for j, name := range f.names {
		out[j] = f.cols[name][i]
	}
	return out
}
