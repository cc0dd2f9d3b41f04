// Package conparam decodes the "con params" reply body enough to tell
// "currently connected" from "not connected" and extract the peer MAC.
package conparam

import (
	"strings"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/mac"
)

// Info is the MAC of the currently connected peer. Its presence is the
// driver's ground truth for "am I connected?" (spec §3).
type Info struct {
	MAC mac.MAC
}

// Parse looks for a line "#  Addr  <hex12>" in body. ok is false when the
// body doesn't contain an Addr line, meaning the module is not connected.
func Parse(body string) (info Info, ok bool) {
	for _, line := range strings.Split(body, "\r\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if fields[0] != "#" || fields[1] != "Addr" {
			continue
		}
		m, err := mac.Parse(fields[2])
		if err != nil {
			continue
		}
		return Info{MAC: m}, true
	}
	return Info{}, false
}
