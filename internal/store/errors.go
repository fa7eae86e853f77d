package store

import (
	"fmt"
	"strings"
)

// NotRegisteredError reports an operation attempted by an agent identity
// that has never registered.
type NotRegisteredError struct {
	Name string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("agent %q is not registered; call register first", e.Name)
}

// UnknownRecipientError reports a send whose recipient does not resolve to
// a registered agent. Known carries the display names of all registered
// agents so the caller can self-correct without a discovery call.
type UnknownRecipientError struct {
	Name  string
	Known []string
}

func (e *UnknownRecipientError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown recipient %q: no agents are registered", e.Name)
	}
	return fmt.Sprintf("unknown recipient %q: registered agents are %s", e.Name, strings.Join(e.Known, ", "))
}
