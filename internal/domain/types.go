package domain

import "fmt"

// Kind tags a Message on the wire. Values outside the known set are carried
// unchanged; the codec never validates them.
type Kind uint8

const (
	KindUnspecified           Kind = 0
	KindTest                  Kind = 1
	KindSmsPayload            Kind = 2
	KindPublicKeyAnnouncement Kind = 3
	KindEncryptedOtp          Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindUnspecified:
		return "Unspecified"
	case KindTest:
		return "Test"
	case KindSmsPayload:
		return "SmsPayload"
	case KindPublicKeyAnnouncement:
		return "PublicKeyAnnouncement"
	case KindEncryptedOtp:
		return "EncryptedOtp"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Known reports whether k is one of the defined kinds.
func (k Kind) Known() bool { return k <= KindEncryptedOtp }

// Message is the unit of communication between the two roles.
//
// A zero-length Payload is valid and distinct from "no message".
type Message struct {
	Kind    Kind
	Payload []byte
}

// NewMessage returns a Message; a nil payload is normalised to an empty slice.
func NewMessage(kind Kind, payload []byte) Message {
	if payload == nil {
		payload = []byte{}
	}
	return Message{Kind: kind, Payload: payload}
}

// State is the lifecycle state of a session.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// TransportType names the medium a stream provider runs over.
type TransportType int

const (
	TransportUnknown TransportType = iota
	TransportBluetooth
	TransportWifi
)

func (t TransportType) String() string {
	switch t {
	case TransportBluetooth:
		return "bluetooth"
	case TransportWifi:
		return "wifi"
	default:
		return "unknown"
	}
}

// Fingerprint is a short hex digest of a public key, for display and pinning.
type Fingerprint string

func (f Fingerprint) String() string { return string(f) }
