package sasa

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseArea parses an MSMS .area file and returns the SES value of each atom.
//
// Header and comment lines are skipped. Every other line holds the atom index
// followed by the SES and SAS areas. Indexes must be consecutive so a dropped or
// reordered atom is reported instead of being silently joined.
func ParseArea(r io.Reader) ([]float64, error) {
	var values []float64

	scanner := bufio.NewScanner(r)
	n := 0
	var first int64
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.Contains(line, "Atom") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected at least 2 fields, got %d", n, len(fields))
		}

		index, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: atom index: %w", n, err)
		}
		if len(values) == 0 {
			first = index
		}
		if want := first + int64(len(values)); index != want {
			return nil, fmt.Errorf("line %d: expected atom %d, got %d", n, want, index)
		}

		ses, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: SES value: %w", n, err)
		}
		values = append(values, ses)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(values) == 0 {
		return nil, errors.New("no atoms in area file")
	}

	return values, nil
}
