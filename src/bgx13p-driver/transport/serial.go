package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialTransport wraps a go.bug.st/serial port opened at 115200 8N1, the
// physical layer named in spec §6.
type SerialTransport struct {
	port serial.Port
}

// OpenSerial opens portName at 115200 baud, 8 data bits, no parity, 1 stop
// bit, no flow control — mirroring the serial.Mode built by
// sensitronics.ConnectSerial in the teacher driver.
func OpenSerial(portName string) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open serial port %q: %w", portName, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("transport: reset input buffer on %q: %w", portName, err)
	}
	return &SerialTransport{port: port}, nil
}

// SetTimeouts applies read as the port's read timeout. go.bug.st/serial has
// no write-timeout knob and write is not applied: Write blocks until the
// port has accepted the bytes, with no time bound.
func (s *SerialTransport) SetTimeouts(read, write time.Duration) error {
	return s.port.SetReadTimeout(read)
}

func (s *SerialTransport) Read(buf []byte) (int, error) {
	return s.port.Read(buf)
}

func (s *SerialTransport) Write(buf []byte) (int, error) {
	return s.port.Write(buf)
}

func (s *SerialTransport) Close() error {
	return s.port.Close()
}
