// Package auth signs requests for the open live platform. It produces the
// HTTP header map handed to the transport when the stream connection is
// opened.
package auth

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Header names used by the signature scheme.
const (
	HeaderSignatureMethod  = "x-bili-signature-method"
	HeaderSignatureVersion = "x-bili-signature-version"
	HeaderSignatureNonce   = "x-bili-signature-nonce"
	HeaderTimestamp        = "x-bili-timestamp"
	HeaderAccessKeyID      = "x-bili-accesskeyid"
	HeaderContentMD5       = "x-bili-content-md5"
	HeaderAuthorization    = "Authorization"
)

// ErrEmptySecret is returned by NewSigner when no access secret is given.
var ErrEmptySecret = errors.New("auth: empty access secret")

// Signer builds signed request headers from an access key pair.
type Signer struct {
	accessKey    string
	accessSecret string

	now   func() time.Time
	nonce func() string
}

// NewSigner creates a Signer for the given key pair.
func NewSigner(accessKey, accessSecret string) (*Signer, error) {
	if accessSecret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{
		accessKey:    accessKey,
		accessSecret: accessSecret,
		now:          time.Now,
		nonce:        uuid.NewString,
	}, nil
}

// AccessKey returns the access key id.
func (s *Signer) AccessKey() string { return s.accessKey }

// BuildHeader returns the complete signed header map for a request whose
// body is content.
func (s *Signer) BuildHeader(content []byte) map[string]string {
	sum := md5.Sum(content)

	headers := map[string]string{
		HeaderSignatureMethod:  "HMAC-SHA256",
		HeaderSignatureVersion: "1.0",
		HeaderSignatureNonce:   s.nonce(),
		HeaderTimestamp:        strconv.FormatInt(s.now().Unix(), 10),
		HeaderAccessKeyID:      s.accessKey,
		HeaderContentMD5:       hex.EncodeToString(sum[:]),
	}
	headers[HeaderAuthorization] = s.Signature(headers)
	headers["Accept"] = "application/json"
	headers["Content-Type"] = "application/json"
	return headers
}

// AuthRoom returns the signed headers for a stream info request for roomID.
func (s *Signer) AuthRoom(roomID uint64) map[string]string {
	return s.BuildHeader([]byte(RoomInfoBody(roomID)))
}

// Signature returns the hex HMAC-SHA256 of the canonical form of headers.
func (s *Signer) Signature(headers map[string]string) string {
	mac := hmac.New(sha256.New, []byte(s.accessSecret))
	mac.Write([]byte(CanonicalString(headers)))
	return hex.EncodeToString(mac.Sum(nil))
}

// CanonicalString renders headers as sorted "key:value" lines joined by a
// newline, with no trailing newline.
func CanonicalString(headers map[string]string) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(headers[k])
	}
	return b.String()
}

// RoomInfoBody returns the request body asking for a room's stream info.
func RoomInfoBody(roomID uint64) string {
	return fmt.Sprintf(`{"room_id": %d}`, roomID)
}
