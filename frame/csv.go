package frame

import (
	"encoding/csv"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/pkg/errors"
)

// ReadCSV loads a headed numeric CSV file into a feature table, splitting off
// the named target column as a label vector. When target is empty or the file
// carries no such column, the returned target vector is nil; the labeled and
// unlabeled cases are both valid inputs to the pipeline.
func ReadCSV(path, target string) (*Table, *mat.VecDense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "frame.ReadCSV: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "frame.ReadCSV: parse %s", path)
	}
	if len(records) < 2 {
		return nil, nil, errors.Wrapf(errors.ErrEmptyData, "frame.ReadCSV: %s", path)
	}

	header := records[0]
	targetIdx := -1
	if target != "" {
		for j, name := range header {
			if name == target {
				targetIdx = j
				break
			}
		}
	}

	names := make([]string, 0, len(header))
	for j, name := range header {
		if j != targetIdx {
			names = append(names, name)
		}
	}

	nRows := len(records) - 1
	data := mat.NewDense(nRows, len(names), nil)
	var y *mat.VecDense
	if targetIdx >= 0 {
		y = mat.NewVecDense(nRows, nil)
	}

	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, nil, errors.NewDimensionError("frame.ReadCSV", len(header), len(record), 1)
		}
		col := 0
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "frame.ReadCSV: row %d column %q", i+1, header[j])
			}
			if j == targetIdx {
				y.SetVec(i, v)
				continue
			}
			data.Set(i, col, v)
			col++
		}
	}

	table, err := New(names, data)
	if err != nil {
		return nil, nil, err
	}
	return table, y, nil
}

// WriteCSV writes a table (optionally with a prediction vector appended under
// the given name) to a headed CSV file.
func WriteCSV(path string, t *Table, predName string, pred *mat.VecDense) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "frame.WriteCSV: create %s", path)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := t.Names()
	if pred != nil {
		if pred.Len() != t.Rows() {
			return errors.NewDimensionError("frame.WriteCSV", t.Rows(), pred.Len(), 0)
		}
		header = append(header, predName)
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "frame.WriteCSV: header")
	}

	for i := 0; i < t.Rows(); i++ {
		record := make([]string, 0, len(header))
		for j := 0; j < t.Cols(); j++ {
			record = append(record, strconv.FormatFloat(t.Matrix().At(i, j), 'g', -1, 64))
		}
		if pred != nil {
			record = append(record, strconv.FormatFloat(pred.AtVec(i), 'g', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "frame.WriteCSV: row %d", i)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrapf(err, "frame.WriteCSV: flush %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "frame.WriteCSV: close %s", path)
	}
	return nil
}
