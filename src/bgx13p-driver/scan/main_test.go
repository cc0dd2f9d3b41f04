package scan

import (
	"testing"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/mac"
	"github.com/sirupsen/logrus"
)

func TestParseScanResultsSample(t *testing.T) {
	// S2 from spec.md §8
	body := "!  # RSSI BD_ADDR           Device Name\r\n" +
		"#  1  -47 d0:cf:5e:82:85:06 LOR-8090\r\n" +
		"#  2  -52 00:0d:6f:a7:a1:54 LOR-8090\r\n"

	devices := Parse(logrus.NewEntry(logrus.New()), body)
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}

	m1, _ := mac.Parse("d0cf5e828506")
	m2, _ := mac.Parse("000d6fa7a154")

	if devices[0].MAC != m1 || devices[0].RSSI != -47 || devices[0].FriendlyName != "LOR-8090" {
		t.Fatalf("devices[0] = %+v", devices[0])
	}
	if devices[1].MAC != m2 || devices[1].RSSI != -52 || devices[1].FriendlyName != "LOR-8090" {
		t.Fatalf("devices[1] = %+v", devices[1])
	}
}

func TestParseSkipsMalformedRows(t *testing.T) {
	body := "!  header\r\n" +
		"garbage row: rssi not a number\r\n" +
		"#  1  -47 d0:cf:5e:82:85:06 LOR-8090\r\n"

	devices := Parse(logrus.NewEntry(logrus.New()), body)
	if len(devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(devices))
	}
}

func TestParseEmptyBody(t *testing.T) {
	devices := Parse(logrus.NewEntry(logrus.New()), "")
	if len(devices) != 0 {
		t.Fatalf("got %d devices, want 0", len(devices))
	}
}
