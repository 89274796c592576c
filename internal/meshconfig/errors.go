package meshconfig

import "fmt"

// ValidationError reports a structural invariant violation at a specific
// locator path, e.g. "root.commands[2].commands[0].flags[1]".
type ValidationError struct {
	Locator string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Locator, e.Message)
}

func newValidationError(locator, format string, args ...any) *ValidationError {
	return &ValidationError{Locator: locator, Message: fmt.Sprintf(format, args...)}
}

// CycleError reports an import cycle, naming the full chain of files.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	msg := "import cycle detected: "
	for i, p := range e.Chain {
		if i > 0 {
			msg += " -> "
		}
		msg += p
	}
	return msg
}

// LoadError wraps an I/O or parse failure encountered while reading a
// config file, naming the file that failed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
