package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Signer produces a request signature over query parameters. The signing
// scheme is provider-defined, so each adapter takes its own Signer.
type Signer interface {
	Sign(params url.Values) string
}

// HMACSigner signs requests with HMAC-SHA256 over the canonical parameter
// string: keys sorted lexicographically, each key immediately followed by its
// value, no separators. The signature is uppercase hex.
type HMACSigner struct {
	secret string
}

// NewHMACSigner creates a signer for the given shared secret.
func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{secret: secret}
}

func (s *HMACSigner) Sign(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var canonical strings.Builder
	for _, k := range keys {
		canonical.WriteString(k)
		canonical.WriteString(params.Get(k))
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(canonical.String()))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}
