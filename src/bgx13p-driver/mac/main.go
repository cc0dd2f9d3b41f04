// Package mac parses and formats the 48-bit BLE addresses the BGX13P
// protocol uses in "con" commands and scan/connection-parameter replies.
package mac

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// MAC is a 6-octet BLE device address.
type MAC [6]byte

// Parse accepts colon-separated or bare hex, case-insensitively, and
// rejects anything that doesn't decode to exactly 6 bytes.
func Parse(s string) (MAC, error) {
	cleaned := strings.ReplaceAll(s, ":", "")
	var m MAC
	b, err := hex.DecodeString(cleaned)
	if err != nil {
		return m, fmt.Errorf("mac: invalid hex %q: %w", s, err)
	}
	if len(b) != len(m) {
		return m, fmt.Errorf("mac: %q decodes to %d bytes, want %d", s, len(b), len(m))
	}
	copy(m[:], b)
	return m, nil
}

// String renders the canonical lowercase, separator-free form, e.g.
// "d0cf5e828506".
func (m MAC) String() string {
	return hex.EncodeToString(m[:])
}
