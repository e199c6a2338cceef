package mount

// State is the lifecycle state of a single mount.
type State int

const (
	// StateUnmounted is the initial and final state of a mount.
	StateUnmounted State = iota

	// StateMounting covers backend initialization; no adapter calls are
	// admitted yet.
	StateMounting

	// StateMounted admits adapter calls.
	StateMounted

	// StateUnmounting rejects new adapter calls while in-flight calls
	// drain.
	StateUnmounting

	// StateFailed is terminal for one mount attempt; a fresh mount
	// request for the same mount point may retry.
	StateFailed
)

// String returns a human-readable name for the [State].
func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateMounting:
		return "mounting"
	case StateMounted:
		return "mounted"
	case StateUnmounting:
		return "unmounting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
