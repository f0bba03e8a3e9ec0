package physical

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ActionError indicates that an action was rejected before simulation
// because it is not a member of the declared action space. The step that
// triggers an ActionError has no side effect: the rejection happens before
// the physical system is touched.
type ActionError struct {
	Action mat.Vector
	Stage  string
}

func (e *ActionError) Error() string {
	if e.Action == nil {
		return fmt.Sprintf("%v: nil action outside action space", e.Stage)
	}
	return fmt.Sprintf("%v: action %v outside action space", e.Stage,
		mat.Formatted(e.Action.T()))
}
