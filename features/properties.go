package features

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tikz/corefeatures/pdb"
)

// Properties is the per aminoacid physicochemical property table.
// It is loaded once and only read afterwards.
type Properties struct {
	Names  []string             // property names in file order
	Values map[string][]float64 // canonical aminoacid to values, aligned with Names
}

// LoadProperties reads a property table file.
func LoadProperties(path string) (*Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	props, err := ReadProperties(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return props, nil
}

// ReadProperties parses a tab separated property table.
//
// The first column holds metadata and is dropped, the second is the residue
// three letter code (case-insensitive) and the remaining columns are the
// properties, named by the header line. Every canonical aminoacid must have a row.
// Rows for other residues are ignored.
func ReadProperties(r io.Reader) (*Properties, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty property table")
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("expected at least 3 columns, got %d", len(header))
	}

	props := &Properties{Values: make(map[string][]float64)}
	seen := make(map[string]bool)
	for _, name := range header[2:] {
		name = strings.TrimSpace(name)
		key := strings.ToUpper(name)
		switch {
		case name == "":
			return nil, errors.New("empty property name")
		case reservedColumn(key):
			return nil, fmt.Errorf("property %s clashes with a count column", name)
		case seen[key]:
			return nil, fmt.Errorf("duplicate property %s", name)
		}
		seen[key] = true
		props.Names = append(props.Names, name)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		res := strings.ToUpper(strings.TrimSpace(record[1]))
		if !pdb.IsCanonical(res) {
			continue
		}
		if _, ok := props.Values[res]; ok {
			return nil, fmt.Errorf("line %d: duplicate row for %s", line, res)
		}

		values := make([]float64, len(props.Names))
		for i, field := range record[2:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s %s: %w", line, res, props.Names[i], err)
			}
			values[i] = v
		}
		props.Values[res] = values
	}

	var missing []string
	for _, name := range pdb.CanonicalResidues {
		if _, ok := props.Values[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing aminoacids: %s", strings.Join(missing, ", "))
	}

	return props, nil
}

// reservedColumn reports whether an upper-cased property name is also a count statistic.
func reservedColumn(name string) bool {
	if name == "TOTAL" || pdb.IsCanonical(name) {
		return true
	}
	for _, el := range Elements {
		if name == el {
			return true
		}
	}
	return false
}

// Score returns, for each property, the mean value over the residues of a region
// weighted by residue count. A region without residues scores 0.
func (p *Properties) Score(c Counts) []float64 {
	scores := make([]float64, len(p.Names))
	if c.Total == 0 {
		return scores
	}

	for i := range p.Names {
		var sum float64
		for _, name := range pdb.CanonicalResidues {
			sum += float64(c.Residues[name]) * p.Values[name][i]
		}
		scores[i] = sum / float64(c.Total)
	}

	return scores
}
