package features

import (
	"fmt"

	"github.com/tikz/corefeatures/pdb"
	"github.com/tikz/corefeatures/region"
)

// Schema enumerates the feature columns. It is built once per run from the
// property table and every row is filled in this exact order.
type Schema struct {
	Columns    []string
	Properties []string
}

// NewSchema builds the column list: for each region the residue total, the
// canonical aminoacid counts and the C, N, O counts, followed by the property
// averages of each region.
func NewSchema(props *Properties) *Schema {
	s := &Schema{Properties: props.Names}

	for _, r := range region.Regions {
		s.Columns = append(s.Columns, column(r, "total"))
		for _, name := range pdb.CanonicalResidues {
			s.Columns = append(s.Columns, column(r, name))
		}
		for _, el := range Elements {
			s.Columns = append(s.Columns, column(r, el))
		}
	}
	for _, r := range region.Regions {
		for _, name := range props.Names {
			s.Columns = append(s.Columns, column(r, name))
		}
	}

	return s
}

func column(r region.Region, stat string) string {
	return fmt.Sprintf("%s.%s", r, stat)
}

// countColumns is the number of count columns per region.
const countColumns = 1 + len(pdb.CanonicalResidues) + len(Elements)

// Row is the feature vector of a single structure, aligned with Schema.Columns.
type Row struct {
	ID     string
	Values []float64
}

// Extract computes the counts and property averages of each region of a partition.
func Extract(id string, part *region.Partition, props *Properties) Row {
	row := Row{
		ID:     id,
		Values: make([]float64, 0, len(region.Regions)*(countColumns+len(props.Names))),
	}

	var counts [len(region.Regions)]Counts
	for i, r := range region.Regions {
		c := Count(part.Atoms(r))
		counts[i] = c

		row.Values = append(row.Values, float64(c.Total))
		for _, name := range pdb.CanonicalResidues {
			row.Values = append(row.Values, float64(c.Residues[name]))
		}
		for _, el := range Elements {
			row.Values = append(row.Values, float64(c.Elements[el]))
		}
	}
	for _, c := range counts {
		row.Values = append(row.Values, props.Score(c)...)
	}

	return row
}

// Table is the ordered collection of feature rows of a batch.
type Table struct {
	Schema *Schema
	Rows   []Row
}

// NewTable creates an empty table for the given schema.
func NewTable(s *Schema) *Table {
	return &Table{Schema: s}
}

// Append adds a row, checking it matches the schema.
func (t *Table) Append(row Row) error {
	if len(row.Values) != len(t.Schema.Columns) {
		return fmt.Errorf("row %s: expected %d values, got %d", row.ID, len(t.Schema.Columns), len(row.Values))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Value returns the value of a named column in a row.
func (t *Table) Value(row Row, column string) (float64, bool) {
	for i, c := range t.Schema.Columns {
		if c == column {
			return row.Values[i], true
		}
	}
	return 0, false
}
