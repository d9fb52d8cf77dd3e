package pdb

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// NoChain replaces a blank chain identifier so residues without a chain
// never group together with residues of a chain named by an empty string.
const NoChain = "_"

// recordWidth is the width of an ATOM record up to the end of the element
// column. Shorter lines are padded with spaces before slicing.
const recordWidth = 80

// Atom represents a single atom in the structure.
// It contains the columns of an ATOM or HETATM record in a PDB file.
type Atom struct {
	Record        string
	Number        int64
	Name          string
	Residue       string
	Chain         string
	ResidueNumber int64
	X             float64
	Y             float64
	Z             float64
	Occupancy     float64
	BFactor       float64
	Element       string
}

// Key returns the residue group the atom belongs to.
func (a *Atom) Key() ResidueKey {
	return ResidueKey{Chain: a.Chain, Number: a.ResidueNumber}
}

// ParseError is returned when a numeric column of an ATOM or HETATM record
// cannot be parsed. It means the file is corrupt.
type ParseError struct {
	Line  int    // 1-based line number in the file
	Field string // column name
	Value string // raw column contents
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// isAtomRecord reports whether the line is an ATOM or HETATM record.
func isAtomRecord(line string) bool {
	return strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM")
}

// extractPDBATMRecords extracts ATOM and HETATM records in file order.
func extractPDBATMRecords(raw []byte) ([]*Atom, error) {
	var atoms []*Atom

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r")
		if !isAtomRecord(line) {
			continue
		}

		atom, err := parseAtom(n, line)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, atom)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	return atoms, nil
}

// parseAtom slices a single record by fixed columns.
func parseAtom(n int, line string) (*Atom, error) {
	if len(line) < recordWidth {
		line += strings.Repeat(" ", recordWidth-len(line))
	}

	var atom Atom
	var err error

	toInt := func(field, s string) int64 {
		if err != nil {
			return 0
		}
		v, e := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if e != nil {
			err = &ParseError{Line: n, Field: field, Value: s, Err: e}
		}
		return v
	}
	toFloat := func(field, s string) float64 {
		if err != nil {
			return 0
		}
		v, e := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if e != nil {
			err = &ParseError{Line: n, Field: field, Value: s, Err: e}
		}
		return v
	}

	// https://www.wwpdb.org/documentation/file-format-content/format23/sect9.html#ATOM
	atom.Record = strings.TrimSpace(line[0:6])
	atom.Number = toInt("serial", line[6:11])
	atom.Name = strings.TrimSpace(line[12:16])
	atom.Residue = strings.TrimSpace(line[17:20])
	atom.Chain = strings.TrimSpace(line[21:22])
	if atom.Chain == "" {
		atom.Chain = NoChain
	}
	atom.ResidueNumber = toInt("residue number", line[22:26])
	atom.X = toFloat("x", line[30:38])
	atom.Y = toFloat("y", line[38:46])
	atom.Z = toFloat("z", line[46:54])
	atom.Occupancy = toFloat("occupancy", line[54:60])
	atom.BFactor = toFloat("temperature factor", line[60:66])
	atom.Element = strings.TrimSpace(line[76:78])

	if err != nil {
		return nil, err
	}
	return &atom, nil
}
