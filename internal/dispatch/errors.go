package dispatch

import "fmt"

// DispatchError is a user-facing dispatch failure (§7 Dispatch errors).
// Its Error() text, combined with HelpText when non-empty, is exactly what
// gets sent back over the mesh as the reply.
type DispatchError struct {
	Message  string
	HelpText string
}

func (e *DispatchError) Error() string {
	return e.Message
}

// Reply renders the full user-facing text for this error: the message,
// followed by a blank line and any attached help text.
func (e *DispatchError) Reply() string {
	if e.HelpText == "" {
		return e.Message
	}
	return e.Message + "\n\n" + e.HelpText
}

func unknownCommand(token, helpText string) *DispatchError {
	return &DispatchError{Message: fmt.Sprintf("unknown command: '%s'", token), HelpText: helpText}
}

func unknownFlag(token string) *DispatchError {
	return &DispatchError{Message: fmt.Sprintf("unknown flag: '%s'", token)}
}

func missingFlagValue(long string) *DispatchError {
	return &DispatchError{Message: fmt.Sprintf("missing value for flag: '%s'", long)}
}

func missingRequiredArg(name string) *DispatchError {
	return &DispatchError{Message: fmt.Sprintf("missing required argument: %s", name)}
}

func missingRequiredFlag(long string) *DispatchError {
	return &DispatchError{Message: fmt.Sprintf("missing required flag: %s", long)}
}

func tooManyArgs(expected int) *DispatchError {
	return &DispatchError{Message: fmt.Sprintf("too many arguments: expected %d", expected)}
}
