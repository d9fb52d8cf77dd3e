package pdb

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func LoadTestFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func TestAtoms(t *testing.T) {
	pdb, err := NewPDBFromFile("./testdata/small.pdb")
	if err != nil {
		t.Fatalf("cannot parse file: %s", err)
	}

	if pdb.ID != "small" {
		t.Errorf("expected ID small, got %s", pdb.ID)
	}

	actual := len(pdb.Atoms)
	expected := 14
	if actual != expected {
		t.Fatalf("expected %d atoms, got %d", expected, actual)
	}

	atom := pdb.Atoms[1]
	want := Atom{
		Record:        "ATOM",
		Number:        2,
		Name:          "CA",
		Residue:       "ALA",
		Chain:         "A",
		ResidueNumber: 1,
		X:             11.639,
		Y:             6.071,
		Z:             -5.147,
		Occupancy:     1.0,
		BFactor:       11.0,
		Element:       "C",
	}
	if *atom != want {
		t.Errorf("expected %+v, got %+v", want, *atom)
	}

	het := pdb.Atoms[12]
	if het.Record != "HETATM" || het.Residue != "HOH" || het.ResidueNumber != 101 {
		t.Errorf("unexpected HETATM record %+v", *het)
	}

	zn := pdb.Atoms[13]
	if zn.Chain != NoChain {
		t.Errorf("expected blank chain to be %q, got %q", NoChain, zn.Chain)
	}
	if zn.Element != "ZN" {
		t.Errorf("expected element ZN, got %s", zn.Element)
	}
}

func TestParseIdempotent(t *testing.T) {
	raw, err := LoadTestFile("./testdata/small.pdb")
	if err != nil {
		t.Fatalf("cannot open file: %s", err)
	}

	p1, err := NewPDBFromRaw("small", raw)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := NewPDBFromRaw("small", raw)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(p1.Atoms, p2.Atoms) {
		t.Errorf("parsing the same file twice gave different atoms")
	}
}

func TestParseError(t *testing.T) {
	_, err := NewPDBFromFile("./testdata/corrupt.pdb")
	if err == nil {
		t.Fatal("expected parse error")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T: %s", err, err)
	}
	if perr.Line != 5 || perr.Field != "x" {
		t.Errorf("expected error on line 5 field x, got line %d field %s", perr.Line, perr.Field)
	}
}

func TestShortRecord(t *testing.T) {
	// Record without element column and trailing spaces.
	raw := []byte("ATOM      1  CA  GLY A   7      15.168   5.654  -3.867  1.00  9.80\n")

	pdb, err := NewPDBFromRaw("short", raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(pdb.Atoms) != 1 {
		t.Fatalf("expected 1 atom, got %d", len(pdb.Atoms))
	}
	if pdb.Atoms[0].Element != "" {
		t.Errorf("expected empty element, got %q", pdb.Atoms[0].Element)
	}
	if pdb.Atoms[0].ResidueNumber != 7 {
		t.Errorf("expected residue 7, got %d", pdb.Atoms[0].ResidueNumber)
	}
}

func TestIgnoredRecords(t *testing.T) {
	raw := []byte("REMARK 465 MISSING\nANISOU    1  N   ALA A   1\nTER\nEND\n")

	pdb, err := NewPDBFromRaw("empty", raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(pdb.Atoms) != 0 {
		t.Errorf("expected no atoms, got %d", len(pdb.Atoms))
	}
	if len(pdb.Residues()) != 0 {
		t.Errorf("expected no residues")
	}
}

func TestGzip(t *testing.T) {
	raw, err := LoadTestFile("./testdata/small.pdb")
	if err != nil {
		t.Fatalf("cannot open file: %s", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(raw)
	zw.Close()

	path := filepath.Join(t.TempDir(), "1abc.pdb.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	pdb, err := NewPDBFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if pdb.ID != "1abc" {
		t.Errorf("expected ID 1abc, got %s", pdb.ID)
	}
	if len(pdb.Atoms) != 14 {
		t.Errorf("expected 14 atoms, got %d", len(pdb.Atoms))
	}
	if !bytes.Equal(pdb.Raw, raw) {
		t.Errorf("expected decompressed raw contents")
	}
}

func TestGzipUpperCase(t *testing.T) {
	raw, err := LoadTestFile("./testdata/small.pdb")
	if err != nil {
		t.Fatalf("cannot open file: %s", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(raw)
	zw.Close()

	path := filepath.Join(t.TempDir(), "1ABC.PDB.GZ")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	pdb, err := NewPDBFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if pdb.ID != "1ABC" {
		t.Errorf("expected ID 1ABC, got %s", pdb.ID)
	}
	if len(pdb.Atoms) != 14 {
		t.Errorf("expected 14 atoms, got %d", len(pdb.Atoms))
	}
}

func TestResidues(t *testing.T) {
	pdb, err := NewPDBFromFile("./testdata/small.pdb")
	if err != nil {
		t.Fatal(err)
	}

	residues := pdb.Residues()
	if len(residues) != 5 {
		t.Fatalf("expected 5 residues, got %d", len(residues))
	}

	expected := []struct {
		key   ResidueKey
		name  string
		atoms int
	}{
		{ResidueKey{"A", 1}, "ALA", 5},
		{ResidueKey{"A", 2}, "GLY", 4},
		{ResidueKey{"B", 1}, "SER", 3},
		{ResidueKey{"A", 101}, "HOH", 1},
		{ResidueKey{NoChain, 201}, "ZN", 1},
	}
	for i, e := range expected {
		res := residues[i]
		if res.Key != e.key || res.Name != e.name || len(res.Atoms) != e.atoms {
			t.Errorf("residue %d: expected %v %s with %d atoms, got %v %s with %d atoms",
				i, e.key, e.name, e.atoms, res.Key, res.Name, len(res.Atoms))
		}
	}
}

func TestIsCanonical(t *testing.T) {
	for _, name := range CanonicalResidues {
		if !IsCanonical(name) {
			t.Errorf("expected %s to be canonical", name)
		}
	}
	if !IsCanonical("ala") {
		t.Errorf("expected lowercase match")
	}
	for _, name := range []string{"HOH", "ZN", "MSE", ""} {
		if IsCanonical(name) {
			t.Errorf("expected %s not to be canonical", name)
		}
	}
}

func TestStructureID(t *testing.T) {
	cases := map[string]string{
		"/data/1mso.pdb":   "1mso",
		"1mso.pdb.gz":      "1mso",
		"dir/model_01.ent": "model_01",
		"noext":            "noext",
		"1ABC.PDB.GZ":      "1ABC",
		"2xyz.pdb.Gz":      "2xyz",
	}
	for path, want := range cases {
		if got := StructureID(path); got != want {
			t.Errorf("StructureID(%s): expected %s, got %s", path, want, got)
		}
	}
}
