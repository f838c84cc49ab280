package data

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Load reads a dataset choosing the format from the file extension, falling
// back to content detection for unknown extensions.
func Load(path string, opts CSVOptions) (*Instances, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".arff":
		return LoadARFF(path)
	case ".csv":
		return LoadCSV(path, opts)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, err
	}
	if mt.Is("text/csv") {
		return LoadCSV(path, opts)
	}
	if mt.Is("text/plain") {
		return LoadARFF(path)
	}
	return nil, fmt.Errorf("%s: unsupported dataset type %s", path, mt.String())
}
