package types

// MessageLevel classifies user-facing messages published to the message sink
type MessageLevel string

const (
	MessageSuccess MessageLevel = "success"
	MessageError   MessageLevel = "error"
)

// String returns the string representation of the message level
func (l MessageLevel) String() string {
	return string(l)
}
