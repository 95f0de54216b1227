package quake

import (
	"errors"
	"fmt"
)

// Domain errors for loading and interaction.
var (
	// ErrFetch indicates the CSV resource was missing or unreachable.
	ErrFetch = errors.New("quake: resource fetch failed")

	// ErrParse indicates the resource was reachable but not a usable CSV.
	ErrParse = errors.New("quake: resource parse failed")

	// ErrInvalidSelector indicates a year selector that is neither a 4-digit year nor "all".
	ErrInvalidSelector = errors.New("quake: invalid year selector")

	// ErrUnknownAttribute indicates a color attribute outside year/mag/depth.
	ErrUnknownAttribute = errors.New("quake: unknown attribute")

	// ErrUnknownDistribution indicates an unsupported distribution chart kind.
	ErrUnknownDistribution = errors.New("quake: unknown distribution kind")

	// ErrUnknownInterval indicates an unsupported timeline bucket width.
	ErrUnknownInterval = errors.New("quake: unknown bin interval")

	// ErrInvalidTimestamp indicates a record whose time field could not be parsed.
	ErrInvalidTimestamp = errors.New("quake: unparseable timestamp")
)

// FetchError wraps a load failure with the selector and resource path.
// Kind is ErrFetch or ErrParse; errors.Is matches both Kind and the cause.
type FetchError struct {
	Selector string
	Path     string
	Kind     error
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Selector, e.Path, e.Err)
}

func (e *FetchError) Unwrap() []error {
	kind := e.Kind
	if kind == nil {
		kind = ErrFetch
	}
	return []error{kind, e.Err}
}
