package pipeline

import (
	"errors"
	"fmt"
)

// Processing stages, used in StructureError and as metric and span names.
const (
	StageDiscover  = "discover"
	StageParse     = "parse"
	StageExposure  = "exposure"
	StageClassify  = "classify"
	StageAggregate = "aggregate"
)

// ErrDuplicateID is returned for a file whose structure id was already taken by another input file.
var ErrDuplicateID = errors.New("duplicate structure id")

// StructureError reports why a single structure produced no feature row.
type StructureError struct {
	ID    string
	Path  string
	Stage string
	Err   error
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("structure %s: %s: %v", e.ID, e.Stage, e.Err)
}

func (e *StructureError) Unwrap() error {
	return e.Err
}
