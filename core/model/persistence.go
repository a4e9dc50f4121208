package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/modelpipe/modelpipe/pkg/errors"
)

// SaveModel encodes a fitted model to a file with gob. The value must have
// its concrete type registered via gob.Register when saved behind an
// interface.
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "model.SaveModel: create %s", filename)
	}
	defer file.Close()

	if err := SaveModelToWriter(model, file); err != nil {
		return errors.Wrapf(err, "model.SaveModel: %s", filename)
	}
	return nil
}

// LoadModel decodes a model from a file into the given pointer.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "model.LoadModel: open %s", filename)
	}
	defer file.Close()

	if err := LoadModelFromReader(model, file); err != nil {
		return errors.Wrapf(err, "model.LoadModel: %s", filename)
	}
	return nil
}

// SaveModelToWriter encodes a model onto an io.Writer.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(model); err != nil {
		return errors.Wrap(err, "model.SaveModelToWriter: encode")
	}
	return nil
}

// LoadModelFromReader decodes a model from an io.Reader into the given
// pointer.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(model); err != nil {
		return errors.Wrap(err, "model.LoadModelFromReader: decode")
	}
	return nil
}
