// Package signer builds the canonical query string of a request and computes
// its HMAC-SHA256 signature.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// SignatureParam is the name of the signature query parameter.
const SignatureParam = "Signature"

// Signer signs requests with a secret key.
type Signer struct {
	secret []byte
}

// New returns a signer for secret.
func New(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Encode percent-encodes s per RFC 3986: only A-Z a-z 0-9 - _ . ~ are left
// as is, everything else (including space) becomes %XX with uppercase hex.
func Encode(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)

			continue
		}

		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}

	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	default:
		return false
	}
}

// CanonicalQuery sorts parameters by key (byte order), drops any Signature
// parameter and joins key=value pairs with '&'. Only the first value of a
// repeated key is used.
func CanonicalQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if key == SignatureParam {
			continue
		}

		keys = append(keys, key)
	}

	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, key := range keys {
		pairs[i] = Encode(key) + "=" + Encode(params.Get(key))
	}

	return strings.Join(pairs, "&")
}

// StringToSign assembles METHOD\nHOST\nPATH\nQUERY. An empty path is
// signed as "/".
func StringToSign(method, host, path, canonicalQuery string) string {
	if path == "" {
		path = "/"
	}

	return strings.Join([]string{strings.ToUpper(method), strings.ToLower(host), path, canonicalQuery}, "\n")
}

// Sign computes base64(HMAC-SHA256(secret, data)).
func (s *Signer) Sign(data string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(data))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignParams returns the final query string: the canonical query followed by
// the Signature parameter.
func (s *Signer) SignParams(method, host, path string, params url.Values) string {
	canonical := CanonicalQuery(params)
	signature := s.Sign(StringToSign(method, host, path, canonical))

	if canonical == "" {
		return SignatureParam + "=" + Encode(signature)
	}

	return canonical + "&" + SignatureParam + "=" + Encode(signature)
}
