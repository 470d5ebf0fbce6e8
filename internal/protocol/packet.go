package protocol

// Packet is a decoded, application-facing message: a header and a text body.
// Packets are values and never reference the buffer they were decoded from.
type Packet struct {
	header Header
	body   string
}

// NewPacket creates a Raw-version packet with the given operation, sequence
// id and body. The packet length is derived from the body.
func NewPacket(op Operation, seq uint32, body string) Packet {
	return Packet{
		header: Header{
			PacketLength: uint32(HeaderSize + len(body)),
			HeaderLength: HeaderSize,
			Version:      VersionRaw,
			Operation:    op,
			SequenceID:   seq,
		},
		body: body,
	}
}

// NewAuthPacket creates the authentication packet sent right after the
// connection opens.
func NewAuthPacket(body string) Packet {
	return NewPacket(OpAuth, 0, body)
}

// NewHeartbeatReplyPacket creates an empty heartbeat reply.
func NewHeartbeatReplyPacket() Packet {
	return NewPacket(OpHeartbeatReply, 0, "")
}

// Header returns the packet header.
func (p Packet) Header() Header { return p.header }

// Body returns the packet body.
func (p Packet) Body() string { return p.body }

// Operation returns the header operation.
func (p Packet) Operation() Operation { return p.header.Operation }

// SequenceID returns the header sequence id.
func (p Packet) SequenceID() uint32 { return p.header.SequenceID }

// Len returns the encoded size of the packet.
func (p Packet) Len() int { return HeaderSize + len(p.body) }

// Decode parses one inbound buffer into packets.
//
// A Raw frame yields exactly one packet. A Compressed frame yields every
// frame of its batch, in order. Any failure fails the whole call.
func Decode(data []byte) ([]Packet, error) {
	frame, err := parseFrame(data)
	if err != nil {
		return nil, err
	}
	return frame.resolve(0)
}

// Encode serializes a packet: the 16-byte header followed by the body.
func Encode(p Packet) []byte {
	buf := make([]byte, 0, p.Len())
	buf = p.header.AppendTo(buf)
	return append(buf, p.body...)
}
