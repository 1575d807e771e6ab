package lookup

import "errors"

// Sentinel kinds for tool errors.
var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrInvalidArgument = errors.New("invalid tool argument")
)
