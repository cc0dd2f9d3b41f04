package enumerate

import (
	"testing"

	serialenumerator "go.bug.st/serial/enumerator"
)

func TestIsBGXLike(t *testing.T) {
	cases := []struct {
		manufacturer string
		want         bool
	}{
		{"Silicon Labs", true},
		{"Cygnal Integrated Products", true},
		{"CP2102 USB to UART Bridge Controller", true},
		{"FTDI", false},
		{"", false},
	}
	for _, c := range cases {
		port := serialenumerator.PortDetails{Manufacturer: c.manufacturer}
		if got := isBGXLike(port); got != c.want {
			t.Errorf("isBGXLike(%q) = %v, want %v", c.manufacturer, got, c.want)
		}
	}
}
