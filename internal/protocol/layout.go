// Package protocol implements the wire codec for the live event stream:
// a fixed 16-byte header followed by a body that is either a single text
// payload or a zlib-compressed batch of complete frames.
package protocol

import "fmt"

// HeaderSize is the fixed header size in bytes.
const HeaderSize = 16

// field is a half-open byte range [Start, End) within the header.
type field struct {
	Start, End int
}

// Header field layout. All fields are big-endian.
var (
	PacketLengthField = field{0, 4}   // total frame length, header included
	HeaderLengthField = field{4, 6}   // always 16
	VersionField      = field{6, 8}   // low byte significant
	OperationField    = field{8, 12}  // low byte significant
	SequenceIDField   = field{12, 16} // opaque
)

// Operation identifies the purpose of a frame. Values the client does not
// know are kept as-is.
type Operation uint8

const (
	OpHeartbeat      Operation = 2
	OpHeartbeatReply Operation = 3
	OpSendSmsReply   Operation = 5
	OpAuth           Operation = 7
	OpAuthReply      Operation = 8
)

// String returns the string representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpHeartbeat:
		return "Heartbeat"
	case OpHeartbeatReply:
		return "HeartbeatReply"
	case OpSendSmsReply:
		return "SendSmsReply"
	case OpAuth:
		return "Auth"
	case OpAuthReply:
		return "AuthReply"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Version is the body encoding code carried in the header.
type Version uint8

const (
	VersionRaw        Version = 0 // body is one text payload
	VersionCompressed Version = 2 // body is a zlib-compressed batch of frames
)

// VersionKind is the closed set a Version resolves to.
type VersionKind int

const (
	KindUnknown VersionKind = iota
	KindRaw
	KindCompressed
)

// Kind maps the wire code to its VersionKind.
func (v Version) Kind() VersionKind {
	switch v {
	case VersionRaw:
		return KindRaw
	case VersionCompressed:
		return KindCompressed
	default:
		return KindUnknown
	}
}

// String returns the string representation of the version.
func (v Version) String() string {
	switch v.Kind() {
	case KindRaw:
		return "Raw"
	case KindCompressed:
		return "Compressed"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(v))
	}
}
