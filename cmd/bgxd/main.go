// Command bgxd runs the BGX13P driver's websocket API as a background
// service, the way dividat-driver is packaged for its host application.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/kardianos/service"
	"github.com/sirupsen/logrus"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/bgx"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/transport"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/wsapi"
)

var (
	serialPort  = flag.String("serial", "", "serial port the BGX13P is attached to, e.g. /dev/ttyUSB0")
	tcpAddress  = flag.String("tcp", "", "TCP address of a BGX13P bridge, e.g. 192.168.1.50:6379")
	listenAddr  = flag.String("listen", "127.0.0.1:8765", "address the websocket API listens on")
	serviceCmd  = flag.String("service", "", "control the OS service: install, uninstall, start, stop")
	logLevelStr = flag.String("log-level", "info", "logrus level: debug, info, warn, error")
)

type program struct {
	log    *logrus.Entry
	cancel context.CancelFunc
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.run(ctx)
	return nil
}

func (p *program) Stop(s service.Service) error {
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

func (p *program) run(ctx context.Context) {
	t, err := openTransport()
	if err != nil {
		p.log.WithError(err).Fatal("Could not open transport")
	}

	d := bgx.New(t, p.log.WithField("component", "bgx"))
	handle := wsapi.New(d, p.log.WithField("component", "wsapi"))

	go startMonitor(p.log.WithField("component", "monitor"))

	server := &http.Server{Addr: *listenAddr, Handler: handle}
	go func() {
		<-ctx.Done()
		d.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	p.log.WithField("address", *listenAddr).Info("Serving BGX13P websocket API")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		p.log.WithError(err).Error("Websocket server stopped")
	}
}

func openTransport() (transport.Transport, error) {
	switch {
	case *serialPort != "":
		return transport.OpenSerial(*serialPort)
	case *tcpAddress != "":
		return transport.DialTCP(*tcpAddress, 5*time.Second)
	default:
		return nil, fmt.Errorf("bgxd: one of -serial or -tcp must be given")
	}
}

// startMonitor periodically logs basic runtime stats, a lightweight
// health signal for a background service with no other supervision.
func startMonitor(log *logrus.Entry) {
	var m runtime.MemStats
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		runtime.ReadMemStats(&m)
		log.WithField("sysMem", m.Sys/1024).WithField("routines", runtime.NumGoroutine()).Info("Monitoring runtime")
	}
}

func main() {
	flag.Parse()

	log := logrus.New()
	if level, err := logrus.ParseLevel(*logLevelStr); err == nil {
		log.SetLevel(level)
	}
	entry := logrus.NewEntry(log)

	svcConfig := &service.Config{
		Name:        "bgxd",
		DisplayName: "BGX13P Driver",
		Description: "Serves the BGX13P BLE bridge driver over a websocket API.",
	}

	prg := &program{log: entry}
	svc, err := service.New(prg, svcConfig)
	if err != nil {
		entry.WithError(err).Fatal("Could not initialize service")
	}

	if *serviceCmd != "" {
		if err := service.Control(svc, *serviceCmd); err != nil {
			entry.WithError(err).Fatal("Service control action failed")
		}
		return
	}

	if err := svc.Run(); err != nil {
		entry.WithError(err).Fatal("Service exited with error")
		os.Exit(1)
	}
}
