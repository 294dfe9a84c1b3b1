package graph

import "fmt"

// StructureError reports an invalid mutation of a graph's structure,
// such as rooting a graph at a foreign notion or attaching a relation
// where none fits.
type StructureError struct {
	Op      string
	Element any
	Reason  string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("graph: %s %s: %s", e.Op, describe(e.Element), e.Reason)
}
