package protocol

import "github.com/pkg/errors"

// Decode errors. All are recoverable; callers match them with errors.Is.
var (
	ErrMalformedHeader     = errors.New("protocol: malformed header")
	ErrTruncatedInput      = errors.New("protocol: truncated input")
	ErrInvalidEncoding     = errors.New("protocol: body is not valid UTF-8")
	ErrDecompressionFailed = errors.New("protocol: decompression failed")
	ErrMalformedBatch      = errors.New("protocol: malformed batch")
	ErrTrailingBytes       = errors.New("protocol: trailing bytes after batch")
	ErrUnsupportedVersion  = errors.New("protocol: unsupported version")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrMalformedHeader, "malformed_header"},
	{ErrTruncatedInput, "truncated_input"},
	{ErrInvalidEncoding, "invalid_encoding"},
	{ErrDecompressionFailed, "decompression_failed"},
	{ErrMalformedBatch, "malformed_batch"},
	{ErrTrailingBytes, "trailing_bytes"},
	{ErrUnsupportedVersion, "unsupported_version"},
}

// ErrorKind returns a short label for a decode error, suitable for metrics.
// Errors outside the protocol taxonomy map to "other", nil to "".
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "other"
}
