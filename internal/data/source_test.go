package data

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSniffsContent(t *testing.T) {
	raw, err := os.ReadFile("testdata/mixed.csv")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "mixed.dat")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	inst, err := Load(path, DefaultCSVOptions())
	if err != nil {
		t.Fatal(err)
	}
	if inst.NumAttributes() != 4 || inst.NumInstances() != 4 {
		t.Errorf("got %d attributes, %d rows", inst.NumAttributes(), inst.NumInstances())
	}
}

func TestLoadByExtension(t *testing.T) {
	inst, err := Load("testdata/weather.nominal.arff", CSVOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if inst.Relation != "weather.symbolic" {
		t.Errorf("relation = %q", inst.Relation)
	}
}

func TestLoadRejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, DefaultCSVOptions()); err == nil {
		t.Error("binary input should be rejected")
	}
}
