package protocol

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Header is the fixed 16-byte frame header.
type Header struct {
	PacketLength uint32 // header + body, in bytes
	HeaderLength uint16 // 16 on the wire
	Version      Version
	Operation    Operation
	SequenceID   uint32
}

// ParseHeader reads a Header from the first HeaderSize bytes of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, errors.Wrapf(ErrMalformedHeader, "need %d bytes, got %d", HeaderSize, len(b))
	}
	return Header{
		PacketLength: binary.BigEndian.Uint32(b[PacketLengthField.Start:PacketLengthField.End]),
		HeaderLength: binary.BigEndian.Uint16(b[HeaderLengthField.Start:HeaderLengthField.End]),
		Version:      Version(b[VersionField.End-1]),
		Operation:    Operation(b[OperationField.End-1]),
		SequenceID:   binary.BigEndian.Uint32(b[SequenceIDField.Start:SequenceIDField.End]),
	}, nil
}

// Encode serializes the header into a new 16-byte slice.
func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

// AppendTo appends the serialized header to dst. The header length is
// always written as HeaderSize and the high bytes of version and operation
// are always zero.
func (h Header) AppendTo(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, h.PacketLength)
	dst = binary.BigEndian.AppendUint16(dst, HeaderSize)
	dst = append(dst, 0, byte(h.Version))
	dst = append(dst, 0, 0, 0, byte(h.Operation))
	return binary.BigEndian.AppendUint32(dst, h.SequenceID)
}
