package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

const (
	// MaxBatchDepth bounds how many compressed batches may nest inside one
	// another.
	MaxBatchDepth = 4

	// MaxDecompressedSize is the largest decompressed batch accepted.
	MaxDecompressedSize = 16 * 1024 * 1024
)

// rawFrame pairs a parsed header with the bytes that followed it. It only
// lives for the duration of a Decode call.
type rawFrame struct {
	header Header
	body   []byte
}

// parseFrame splits b into header and body. The body aliases b.
func parseFrame(b []byte) (rawFrame, error) {
	if len(b) < HeaderSize {
		return rawFrame{}, errors.Wrapf(ErrTruncatedInput, "need %d bytes, got %d", HeaderSize, len(b))
	}
	h, err := ParseHeader(b[:HeaderSize])
	if err != nil {
		return rawFrame{}, err
	}
	return rawFrame{header: h, body: b[HeaderSize:]}, nil
}

// resolve turns the frame into packets according to its version.
func (f rawFrame) resolve(depth int) ([]Packet, error) {
	switch f.header.Version.Kind() {
	case KindRaw:
		if !utf8.Valid(f.body) {
			return nil, errors.Wrapf(ErrInvalidEncoding, "op=%s len=%d", f.header.Operation, len(f.body))
		}
		return []Packet{{header: f.header, body: string(f.body)}}, nil

	case KindCompressed:
		if depth >= MaxBatchDepth {
			return nil, errors.Wrapf(ErrMalformedBatch, "batches nested deeper than %d", MaxBatchDepth)
		}
		data, err := inflate(f.body)
		if err != nil {
			return nil, err
		}
		return unframe(data, depth+1)

	case KindUnknown:
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", uint8(f.header.Version))

	default:
		panic("protocol: unhandled version kind")
	}
}

// inflate decompresses a whole zlib stream.
func inflate(body []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(ErrDecompressionFailed, err.Error())
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, MaxDecompressedSize+1))
	if err != nil {
		return nil, errors.Wrap(ErrDecompressionFailed, err.Error())
	}
	if len(data) > MaxDecompressedSize {
		return nil, errors.Wrapf(ErrDecompressionFailed, "output exceeds %d bytes", MaxDecompressedSize)
	}
	return data, nil
}

// unframe splits a decompressed batch into its frames by their length
// prefixes and resolves each one in order.
func unframe(data []byte, depth int) ([]Packet, error) {
	var packets []Packet
	offset := 0

	for offset < len(data) {
		remaining := len(data) - offset
		if remaining < PacketLengthField.End {
			return nil, errors.Wrapf(ErrTrailingBytes, "%d bytes left at offset %d", remaining, offset)
		}

		length := binary.BigEndian.Uint32(data[offset+PacketLengthField.Start : offset+PacketLengthField.End])
		switch {
		case length == 0:
			return nil, errors.Wrapf(ErrMalformedBatch, "zero length at offset %d", offset)
		case length < HeaderSize:
			return nil, errors.Wrapf(ErrMalformedBatch, "length %d shorter than header at offset %d", length, offset)
		case uint64(length) > uint64(remaining):
			return nil, errors.Wrapf(ErrMalformedBatch, "length %d overruns %d remaining bytes at offset %d", length, remaining, offset)
		}

		end := offset + int(length)
		frame, err := parseFrame(data[offset:end])
		if err != nil {
			return nil, err
		}
		sub, err := frame.resolve(depth)
		if err != nil {
			return nil, errors.WithMessagef(err, "batch frame at offset %d", offset)
		}
		packets = append(packets, sub...)
		offset = end
	}

	return packets, nil
}
