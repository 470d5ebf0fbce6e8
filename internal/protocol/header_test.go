package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// TestHeaderRoundTrip verifies that ParseHeader and Encode are inverse
// operations for headers with the canonical header length.
func TestHeaderRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		h    Header
	}{
		{"zero values", Header{HeaderLength: HeaderSize}},
		{"heartbeat", Header{PacketLength: 18, HeaderLength: HeaderSize, Version: VersionRaw, Operation: OpHeartbeat, SequenceID: 1}},
		{"compressed auth reply", Header{PacketLength: 1024, HeaderLength: HeaderSize, Version: VersionCompressed, Operation: OpAuthReply, SequenceID: 7}},
		{"unknown operation", Header{PacketLength: 16, HeaderLength: HeaderSize, Operation: Operation(0xFE)}},
		{"unknown version", Header{PacketLength: 16, HeaderLength: HeaderSize, Version: Version(9)}},
		{"max values", Header{PacketLength: 0xFFFFFFFF, HeaderLength: HeaderSize, Version: 0xFF, Operation: 0xFF, SequenceID: 0xFFFFFFFF}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := tc.h.Encode()
			if len(encoded) != HeaderSize {
				t.Fatalf("encoded size = %d, want %d", len(encoded), HeaderSize)
			}

			decoded, err := ParseHeader(encoded)
			if err != nil {
				t.Fatalf("ParseHeader failed: %v", err)
			}
			if decoded != tc.h {
				t.Errorf("round trip mismatch: got %+v, want %+v", decoded, tc.h)
			}
		})
	}
}

// TestParseHeaderExample decodes the documented heartbeat header.
func TestParseHeaderExample(t *testing.T) {
	raw := []byte{0, 0, 0, 255, 0, 16, 0, 0, 0, 0, 0, 2, 0, 0, 0, 1}

	h, err := ParseHeader(raw)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}

	want := Header{PacketLength: 255, HeaderLength: 16, Version: VersionRaw, Operation: OpHeartbeat, SequenceID: 1}
	if h != want {
		t.Errorf("got %+v, want %+v", h, want)
	}
}

// TestParseHeaderTooShort verifies that short input fails with
// ErrMalformedHeader instead of panicking.
func TestParseHeaderTooShort(t *testing.T) {
	for _, n := range []int{0, 1, 4, 15} {
		_, err := ParseHeader(make([]byte, n))
		if !errors.Is(err, ErrMalformedHeader) {
			t.Errorf("%d bytes: got %v, want ErrMalformedHeader", n, err)
		}
	}
}

// TestEncodeZeroesHighBytes verifies the fixed bytes written by Encode no
// matter what the header holds.
func TestEncodeZeroesHighBytes(t *testing.T) {
	h := Header{PacketLength: 0x01020304, HeaderLength: 99, Version: 0xAB, Operation: 0xCD, SequenceID: 0x05060708}

	got := h.Encode()
	want := []byte{
		0x01, 0x02, 0x03, 0x04,
		0x00, 0x10,
		0x00, 0xAB,
		0x00, 0x00, 0x00, 0xCD,
		0x05, 0x06, 0x07, 0x08,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode = %v, want %v", got, want)
	}
}

// TestParseHeaderIgnoresHighBytes verifies that only the low byte of the
// version and operation fields is kept.
func TestParseHeaderIgnoresHighBytes(t *testing.T) {
	raw := []byte{0, 0, 0, 16, 0, 16, 0x7F, 2, 0x11, 0x22, 0x33, 7, 0, 0, 0, 0}

	h, err := ParseHeader(raw)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.Version != VersionCompressed {
		t.Errorf("Version = %v, want %v", h.Version, VersionCompressed)
	}
	if h.Operation != OpAuth {
		t.Errorf("Operation = %v, want %v", h.Operation, OpAuth)
	}
}

func TestVersionKind(t *testing.T) {
	testCases := []struct {
		v    Version
		want VersionKind
		str  string
	}{
		{VersionRaw, KindRaw, "Raw"},
		{VersionCompressed, KindCompressed, "Compressed"},
		{Version(1), KindUnknown, "Unknown(1)"},
		{Version(3), KindUnknown, "Unknown(3)"},
	}

	for _, tc := range testCases {
		if got := tc.v.Kind(); got != tc.want {
			t.Errorf("Version(%d).Kind() = %v, want %v", tc.v, got, tc.want)
		}
		if got := tc.v.String(); got != tc.str {
			t.Errorf("Version(%d).String() = %q, want %q", tc.v, got, tc.str)
		}
	}
}

func TestOperationString(t *testing.T) {
	if got := OpHeartbeatReply.String(); got != "HeartbeatReply" {
		t.Errorf("OpHeartbeatReply.String() = %q", got)
	}
	if got := Operation(5).String(); got != "SendSmsReply" {
		t.Errorf("Operation(5).String() = %q", got)
	}
	if got := Operation(42).String(); got != "Op(42)" {
		t.Errorf("Operation(42).String() = %q", got)
	}
}
