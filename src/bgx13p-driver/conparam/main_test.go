package conparam

import (
	"testing"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/mac"
)

func TestParseConnected(t *testing.T) {
	// S3 from spec.md §8
	body := "!  Param Value\r\n" +
		"#  Addr  D0CF5E828DF6\r\n" +
		"#  Itvl  12\r\n" +
		"#  Mtu   250\r\n" +
		"#  Phy   1m\r\n" +
		"#  Tout  400\r\n" +
		"#  Err   0000\r\n"

	info, ok := Parse(body)
	if !ok {
		t.Fatalf("expected a connection to be reported")
	}
	want, _ := mac.Parse("d0cf5e828df6")
	if info.MAC != want {
		t.Fatalf("MAC = %v, want %v", info.MAC, want)
	}
}

func TestParseNotConnected(t *testing.T) {
	// S4 from spec.md §8
	body := "!  Param Value\r\n#  Err   0208\r\n"

	_, ok := Parse(body)
	if ok {
		t.Fatalf("expected no connection to be reported")
	}
}
