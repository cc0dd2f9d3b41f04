// Package firmwarever extracts and classifies the BGX13P firmware version
// string reported by the "ver" command.
package firmwarever

import (
	"fmt"
	"strings"
)

// knownGoodSubstring is deliberately "BGX13P.1.2.2738" and not
// "BGX13P.1.2.2738." — older firmware strings vary in their suffix.
const knownGoodSubstring = "BGX13P.1.2.2738"

// marker is deliberately "BGX13" and not "BGX13P." — some older firmware
// reports omit the "P.".
const marker = "BGX13"

// Parse finds the first occurrence of "BGX13" in buf and returns the
// substring from there up to (excluding) the next "\r\n".
func Parse(buf string) (string, error) {
	idx := strings.Index(buf, marker)
	if idx < 0 {
		return "", fmt.Errorf("firmwarever: no %q marker found in %q", marker, buf)
	}
	rest := buf[idx:]
	end := strings.Index(rest, "\r\n")
	if end < 0 {
		return "", fmt.Errorf("firmwarever: unterminated version string in %q", buf)
	}
	return rest[:end], nil
}

// IsKnownGood reports whether version is the firmware this driver's default
// settings were validated against.
func IsKnownGood(version string) bool {
	return strings.Contains(version, knownGoodSubstring)
}
