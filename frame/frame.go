// Package frame provides the named-column numeric table that the pipeline
// threads through its stages. A Table pairs a gonum dense matrix with an
// ordered column-name set; every structural operation validates the name set
// so train/test column drift is caught at the point it happens.
package frame

import (
	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/pkg/errors"
)

// Table is a rectangular numeric table with named columns.
type Table struct {
	names []string
	data  *mat.Dense
}

// New creates a Table from column names and a backing matrix. The matrix
// column count must match the number of names.
func New(names []string, data *mat.Dense) (*Table, error) {
	if data == nil || len(names) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.New")
	}
	_, c := data.Dims()
	if c != len(names) {
		return nil, errors.NewDimensionError("frame.New", len(names), c, 1)
	}
	return &Table{names: append([]string(nil), names...), data: data}, nil
}

// FromRows creates a Table from row slices. Every row must have one value per
// column name.
func FromRows(names []string, rows [][]float64) (*Table, error) {
	if len(rows) == 0 || len(names) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.FromRows")
	}
	data := mat.NewDense(len(rows), len(names), nil)
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, errors.NewDimensionError("frame.FromRows", len(names), len(row), 1)
		}
		data.SetRow(i, row)
	}
	return New(names, data)
}

// Rows returns the row count.
func (t *Table) Rows() int {
	r, _ := t.data.Dims()
	return r
}

// Cols returns the column count.
func (t *Table) Cols() int {
	_, c := t.data.Dims()
	return c
}

// Names returns a copy of the ordered column names.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Matrix exposes the backing matrix for estimator and transform calls.
// Callers must not resize it.
func (t *Table) Matrix() *mat.Dense {
	return t.data
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	data := mat.DenseCopyOf(t.data)
	out, _ := New(t.names, data)
	return out
}

// ColumnIndex returns the position of a named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, n := range t.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Column returns a copy of a named column as a vector.
func (t *Table) Column(name string) (*mat.VecDense, error) {
	j, ok := t.ColumnIndex(name)
	if !ok {
		return nil, errors.NewColumnNotFoundError("frame.Column", name, "feature")
	}
	r := t.Rows()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, t.data.At(i, j))
	}
	return v, nil
}

// Drop removes the named columns. Unknown names fail with a
// ColumnNotFoundError naming the missing column; there is no silent skip.
func (t *Table) Drop(names []string, tableName string) (*Table, error) {
	if len(names) == 0 {
		return t.Clone(), nil
	}
	dropSet := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := t.ColumnIndex(n); !ok {
			return nil, errors.NewColumnNotFoundError("frame.Drop", n, tableName)
		}
		dropSet[n] = true
	}
	keep := make([]int, 0, t.Cols())
	for j, n := range t.names {
		if !dropSet[n] {
			keep = append(keep, j)
		}
	}
	if len(keep) == 0 {
		return nil, errors.NewValueError("frame.Drop", "dropping all columns leaves an empty table")
	}
	return t.Select(keep)
}

// Select returns a new table containing only the columns at the given
// positions, in the given order.
func (t *Table) Select(indices []int) (*Table, error) {
	if len(indices) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.Select")
	}
	r := t.Rows()
	names := make([]string, len(indices))
	data := mat.NewDense(r, len(indices), nil)
	for k, j := range indices {
		if j < 0 || j >= t.Cols() {
			return nil, errors.NewValueError("frame.Select", "column index out of range")
		}
		names[k] = t.names[j]
		for i := 0; i < r; i++ {
			data.Set(i, k, t.data.At(i, j))
		}
	}
	return New(names, data)
}

// AppendColumns returns a new table with extra columns appended on the right.
func (t *Table) AppendColumns(names []string, cols *mat.Dense) (*Table, error) {
	r, c := cols.Dims()
	if r != t.Rows() {
		return nil, errors.NewDimensionError("frame.AppendColumns", t.Rows(), r, 0)
	}
	if c != len(names) {
		return nil, errors.NewDimensionError("frame.AppendColumns", len(names), c, 1)
	}
	outNames := append(t.Names(), names...)
	data := mat.NewDense(r, t.Cols()+c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < t.Cols(); j++ {
			data.Set(i, j, t.data.At(i, j))
		}
		for j := 0; j < c; j++ {
			data.Set(i, t.Cols()+j, cols.At(i, j))
		}
	}
	return New(outNames, data)
}

// SameColumns reports whether two tables share an identical ordered column set.
func (t *Table) SameColumns(other *Table) bool {
	if other == nil || len(t.names) != len(other.names) {
		return false
	}
	for i, n := range t.names {
		if other.names[i] != n {
			return false
		}
	}
	return true
}

// TakeRows returns a new table containing the rows at the given positions,
// in the given order.
func (t *Table) TakeRows(indices []int) (*Table, error) {
	if len(indices) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.TakeRows")
	}
	data := mat.NewDense(len(indices), t.Cols(), nil)
	for k, i := range indices {
		if i < 0 || i >= t.Rows() {
			return nil, errors.NewValueError("frame.TakeRows", "row index out of range")
		}
		for j := 0; j < t.Cols(); j++ {
			data.Set(k, j, t.data.At(i, j))
		}
	}
	return New(t.names, data)
}

// Concat stacks top above bottom. The column sets must be identical in name
// and order; a mismatch is the fatal shape error of the merge step.
func Concat(top, bottom *Table) (*Table, error) {
	if !top.SameColumns(bottom) {
		return nil, errors.NewShapeMismatchError("frame.Concat",
			top.Rows(), top.Cols(), bottom.Rows(), bottom.Cols())
	}
	r := top.Rows() + bottom.Rows()
	data := mat.NewDense(r, top.Cols(), nil)
	for i := 0; i < top.Rows(); i++ {
		for j := 0; j < top.Cols(); j++ {
			data.Set(i, j, top.data.At(i, j))
		}
	}
	for i := 0; i < bottom.Rows(); i++ {
		for j := 0; j < top.Cols(); j++ {
			data.Set(top.Rows()+i, j, bottom.data.At(i, j))
		}
	}
	return New(top.names, data)
}

// SplitAt cuts the table into rows [0,row) and [row,end). The split point must
// lie strictly inside the table.
func (t *Table) SplitAt(row int) (*Table, *Table, error) {
	r := t.Rows()
	if row <= 0 || row >= r {
		return nil, nil, errors.NewValueError("frame.SplitAt", "split point must lie strictly inside the table")
	}
	topIdx := make([]int, row)
	for i := range topIdx {
		topIdx[i] = i
	}
	bottomIdx := make([]int, r-row)
	for i := range bottomIdx {
		bottomIdx[i] = row + i
	}
	top, err := t.TakeRows(topIdx)
	if err != nil {
		return nil, nil, err
	}
	bottom, err := t.TakeRows(bottomIdx)
	if err != nil {
		return nil, nil, err
	}
	return top, bottom, nil
}
