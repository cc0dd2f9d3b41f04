// Package discover browses for BGX13P-over-TCP bridges advertised over
// mDNS, the discovery mechanism for the "(b) TCP socket fronting a
// serial link" transport named in spec §6. It has no influence on
// protocol parsing or the state machine; it only produces an address
// that transport.DialTCP can dial.
package discover

import (
	"context"
	"fmt"
	"net"

	"github.com/libp2p/zeroconf/v2"
	"github.com/sirupsen/logrus"
)

// serviceName is the mDNS service type a BGX13P TCP bridge advertises.
const serviceName = "_bgx13p._tcp"

// Found is one discovered bridge.
type Found struct {
	Name      string
	Addresses []net.IP
	Port      int
}

// Scan browses for bridges until ctx is cancelled, sending each distinct
// bridge found on the returned channel, which is closed when the browse
// ends.
func Scan(ctx context.Context, log *logrus.Entry) (<-chan Found, error) {
	entries := make(chan *zeroconf.ServiceEntry)
	out := make(chan Found)

	if err := zeroconf.Browse(ctx, serviceName, "local.", entries); err != nil {
		return nil, fmt.Errorf("discover: browse: %w", err)
	}

	go func() {
		defer close(out)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if entry == nil {
					continue
				}
				addrs := make([]net.IP, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
				addrs = append(addrs, entry.AddrIPv4...)
				addrs = append(addrs, entry.AddrIPv6...)
				found := Found{Name: entry.Instance, Addresses: addrs, Port: entry.Port}
				if log != nil {
					log.WithField("name", found.Name).WithField("port", found.Port).Debug("Discovered BGX13P bridge")
				}
				select {
				case out <- found:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
