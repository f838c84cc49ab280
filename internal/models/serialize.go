package models

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

func init() {
	gob.Register(&DecisionTree{})
	gob.Register(&NaiveBayes{})
	gob.Register(&RandomForest{})
	gob.Register(&Bagging{})
}

type envelope struct {
	Model Classifier
}

// Save writes c to path with encoding/gob, creating the directory on demand.
func Save(path string, c Classifier) (err error) {
	if c == nil || c.Header() == nil {
		return ErrNotTrained
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(&envelope{Model: c}); err != nil {
		return fmt.Errorf("serialize %s: %w", c.Name(), err)
	}
	return w.Flush()
}

// Load reads a model written by Save.
func Load(path string) (Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var env envelope
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if env.Model == nil || env.Model.Header() == nil {
		return nil, errors.New(path + ": file holds no trained model")
	}
	return env.Model, nil
}
