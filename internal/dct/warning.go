package dct

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// WarningClass names one of the §7 "named but not fully specified"
// PipelineWarning categories; SPEC_FULL.md §3 gives this enumeration a
// concrete shape.
type WarningClass string

const (
	WarnInvalidDctLimit         WarningClass = "InvalidDctLimit"
	WarnMalformedTimeTable      WarningClass = "MalformedTimeTable"
	WarnUnreachableAirwaySegment WarningClass = "UnreachableAirwaySegment"
)

// PipelineWarning aggregates warning counts by class across one pipeline
// run, persisted as msgpack alongside the run for later inspection.
type PipelineWarning struct {
	Counts map[WarningClass]int
}

func NewPipelineWarning() *PipelineWarning {
	return &PipelineWarning{Counts: map[WarningClass]int{}}
}

func (w *PipelineWarning) Add(class WarningClass) {
	w.Counts[class]++
}

// Save persists w as msgpack at path.
func (w *PipelineWarning) Save(path string) error {
	b, err := msgpack.Marshal(w)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// LoadPipelineWarning reads a PipelineWarning previously saved with Save.
func LoadPipelineWarning(path string) (*PipelineWarning, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w PipelineWarning
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	return &w, nil
}
