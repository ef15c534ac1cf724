package crypto

import (
	"encoding/base64"
	"strings"
)

// ToBase64 encodes bytes to standard base64 with padding.
// Frames use this form when carried as text.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes standard base64 (with padding) to bytes. Surrounding
// whitespace is ignored.
func FromBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}
