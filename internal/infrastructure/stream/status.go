package stream

// Status is the externally observable state of a Client.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusOpen
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// canTransition reports whether from -> to is a legal status change.
// Any active status may fall back to idle on teardown.
func canTransition(from, to Status) bool {
	switch to {
	case StatusConnecting:
		return from == StatusIdle || from == StatusClosed
	case StatusOpen:
		return from == StatusConnecting
	case StatusClosed:
		return from == StatusConnecting || from == StatusOpen
	case StatusIdle:
		return from == StatusConnecting || from == StatusOpen || from == StatusClosed
	}
	return false
}
