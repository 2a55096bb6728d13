package link

import (
	"fmt"

	"github.com/sesimgo/sesim/internal/core/entity"
)

// UnknownLinkError reports an operation naming a link that was never created.
type UnknownLinkError struct {
	Name string
}

func (e *UnknownLinkError) Error() string {
	return fmt.Sprintf("unknown link %q", e.Name)
}

// NotLinkedError reports an attempt to remove an edge that does not exist.
type NotLinkedError struct {
	Name   string
	Source entity.ID
	Target entity.ID
}

func (e *NotLinkedError) Error() string {
	return fmt.Sprintf("no %q link from %s to %s", e.Name, e.Source, e.Target)
}
