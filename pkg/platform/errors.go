package platform

import (
	"errors"
	"fmt"
)

// The adapter error taxonomy. Every error raised while handling a recognized
// tool name is caught at the dispatch boundary and rendered into the call
// result with IsError set; none of these ever surface as a transport failure.
var (
	ErrManagerUnavailable          = errors.New("extension manager not available")
	ErrToolRouteManagerUnavailable = errors.New("tool route manager not available")
)

// UnknownToolError reports a call_tool name outside the adapter's recognized
// set.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Tool)
}

// MissingParameterError reports an absent required argument.
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Param)
}

// InvalidActionError reports a manage_extensions action outside the
// recognized set.
type InvalidActionError struct {
	Action string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action: %s. Must be 'enable' or 'disable'", e.Action)
}

// OperationFailedError wraps a backing-component failure. The underlying
// message is preserved verbatim; the backing component's own error types
// never cross the adapter boundary.
type OperationFailedError struct {
	Message string
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("operation failed: %s", e.Message)
}

// DeserializationError reports an argument object that does not match the
// expected parameter shape.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to deserialize parameters: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}
