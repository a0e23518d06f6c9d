package lantern

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a malformed path, manifest or command payload.
	ErrInvalidArgument = errors.New("lantern: invalid argument")
	// ErrNotFound reports a missing asset or path.
	ErrNotFound = errors.New("lantern: not found")
	// ErrNotDirectory reports a scan of something that is not a directory.
	ErrNotDirectory = errors.New("lantern: not a directory")
	// ErrAudioUnavailable reports that the mixer could not be constructed.
	ErrAudioUnavailable = errors.New("lantern: audio unavailable")
	// ErrScriptFault is wrapped by every ScriptFault.
	ErrScriptFault = errors.New("lantern: script fault")
)

// ScriptFault is an uncaught error or panic raised by the tick callback.
type ScriptFault struct {
	Frame uint64
	Cause error
}

func (f *ScriptFault) Error() string {
	return fmt.Sprintf("script fault at frame %d: %v", f.Frame, f.Cause)
}

// Unwrap allows errors.Is(err, ErrScriptFault) and access to the cause.
func (f *ScriptFault) Unwrap() []error {
	return []error{ErrScriptFault, f.Cause}
}
