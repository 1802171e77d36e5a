package model

// ServerState represents the lifecycle state of a server.
type ServerState uint32

// ServerState constants. Connecting is transient: a failed connect
// attempt reverts the server to Disconnected.
const (
	Disconnected ServerState = iota
	Connecting
	Connected
)

func (s ServerState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	}
	return "Unknown"
}
