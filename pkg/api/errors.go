package api

import "fmt"

// UnknownComponentError is returned when an API is called with a component
// id that was never registered in the dependency graph. It is a caller
// error and is never swallowed.
type UnknownComponentError struct {
	ID string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown component: %q", e.ID)
}
