// Package scan decodes the human-readable scan table returned by the
// BGX13P "scan results" command into structured device entries.
package scan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/mac"
	"github.com/sirupsen/logrus"
)

// Device is one row of the scan table: "#  <index>  <rssi> <mac> <name>".
type Device struct {
	MAC          mac.MAC
	FriendlyName string
	RSSI         int8
}

// Parse decodes the body of a framed reply to "scan results". The first
// line is a header row and is skipped; malformed rows are logged and
// skipped rather than aborting the scan (spec §4.4).
func Parse(log *logrus.Entry, body string) []Device {
	lines := strings.Split(body, "\r\n")
	var devices []Device
	for i, line := range lines {
		if i == 0 {
			continue // header row: "!  # RSSI BD_ADDR  Device Name"
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		d, err := parseLine(line)
		if err != nil {
			if log != nil {
				log.WithField("line", line).WithField("error", err).Warn("Skipping malformed scan row")
			}
			continue
		}
		devices = append(devices, d)
	}
	return devices
}

func parseLine(line string) (Device, error) {
	fields := strings.Fields(line)
	// "#  1  -47 d0:cf:5e:82:85:06 LOR-8090" -> fields[0]="#" [1]="1" [2]="-47" [3]="d0:..." [4]="LOR-8090"
	if len(fields) < 5 {
		return Device{}, fmt.Errorf("scan: expected at least 5 fields, got %d", len(fields))
	}
	rssi, err := strconv.ParseInt(fields[2], 10, 8)
	if err != nil {
		return Device{}, fmt.Errorf("scan: invalid rssi %q: %w", fields[2], err)
	}
	m, err := mac.Parse(fields[3])
	if err != nil {
		return Device{}, fmt.Errorf("scan: invalid mac %q: %w", fields[3], err)
	}
	return Device{
		MAC:          m,
		FriendlyName: fields[4],
		RSSI:         int8(rssi),
	}, nil
}
