// Package enumerate lists USB serial ports that look like a BGX13P
// module, so a caller can hand a port name to transport.OpenSerial. It
// is a thin external collaborator: it never touches the protocol state
// machine (spec §6).
package enumerate

import (
	"strings"

	"github.com/sirupsen/logrus"
	serialenumerator "go.bug.st/serial/enumerator"
)

// candidateManufacturers are the USB manufacturer-string substrings BGX13P
// eval boards and carrier modules report, via Silicon Labs' CP210x USB-UART
// bridge chip.
var candidateManufacturers = []string{"Silicon Labs", "Cygnal", "CP21"}

// CandidatePort describes one serial port that looks like a BGX13P module.
type CandidatePort struct {
	Name         string
	Manufacturer string
	Product      string
	VID          string
	PID          string
}

// ListCandidatePorts enumerates local serial ports and returns those whose
// USB manufacturer string matches a known BGX13P carrier.
func ListCandidatePorts(log *logrus.Entry) ([]CandidatePort, error) {
	ports, err := serialenumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var matching []CandidatePort
	for _, port := range ports {
		if log != nil {
			log.WithField("name", port.Name).WithField("manufacturer", port.Manufacturer).Debug("Considering serial port.")
		}
		if !isBGXLike(*port) {
			continue
		}
		matching = append(matching, CandidatePort{
			Name:         port.Name,
			Manufacturer: port.Manufacturer,
			Product:      port.Product,
			VID:          port.VID,
			PID:          port.PID,
		})
	}
	return matching, nil
}

func isBGXLike(port serialenumerator.PortDetails) bool {
	for _, candidate := range candidateManufacturers {
		if strings.Contains(port.Manufacturer, candidate) {
			return true
		}
	}
	return false
}
