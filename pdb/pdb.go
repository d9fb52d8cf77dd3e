package pdb

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PDB represents a single parsed structure file.
type PDB struct {
	ID    string  // file base name without extensions
	Path  string  // path the structure was read from
	Atoms []*Atom // ATOM and HETATM records in file order

	Raw []byte // decompressed file contents
}

// NewPDBFromFile reads and parses a structure file.
// Files ending in ".gz", in any case, are decompressed.
func NewPDBFromFile(path string) (*PDB, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}

	pdb, err := NewPDBFromRaw(StructureID(path), raw)
	if err != nil {
		return nil, err
	}
	pdb.Path = path

	return pdb, nil
}

// NewPDBFromRaw constructs a new instance from raw bytes, extracting ATOM and HETATM records.
func NewPDBFromRaw(id string, raw []byte) (*PDB, error) {
	pdb := PDB{ID: id, Raw: raw}

	atoms, err := extractPDBATMRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("extract ATOM records: %w", err)
	}
	pdb.Atoms = atoms

	return &pdb, nil
}

// StructureID returns the identifier of a structure file: its base name
// without the ".gz" suffix and format extension.
func StructureID(path string) string {
	name := filepath.Base(path)
	if isGzip(name) {
		name = name[:len(name)-len(".gz")]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// isGzip matches the ".gz" suffix in any case.
func isGzip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}

// WriteFile writes the raw PDB contents to a file.
func (pdb *PDB) WriteFile(path string) error {
	err := os.WriteFile(path, pdb.Raw, 0644)
	if err != nil {
		return fmt.Errorf("write PDB file: %w", err)
	}

	return nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if isGzip(path) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return raw, nil
}
