package library

import "fmt"

// LoadError means there is no usable library root. It is the only fatal
// library error.
type LoadError struct {
	Root string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load library %s: %v", e.Root, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// MalformedEntryError is a folder or deck whose name does not follow the
// "<sequence>-<title>" or "<sequence>-<artist>-<title>" layout
type MalformedEntryError struct {
	Name   string
	Reason string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed entry %q: %s", e.Name, e.Reason)
}
