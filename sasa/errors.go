package sasa

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTool matches every failure of the external surface computation.
var ErrTool = errors.New("external tool failed")

// ToolError reports a failed MSMS step: non-zero exit, timeout, or missing or unreadable output.
type ToolError struct {
	Step   string // pdb_to_xyzr, msms, area or scratch
	Output string // combined output of the step, if any
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Step, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func (e *ToolError) Is(target error) bool {
	return target == ErrTool
}

// AlignmentError is returned when the number of exposure values differs from the number of atoms.
type AlignmentError struct {
	Atoms  int
	Values int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("exposure values misaligned: %d atoms, %d values", e.Atoms, e.Values)
}

func (e *AlignmentError) Is(target error) bool {
	return target == ErrTool
}
