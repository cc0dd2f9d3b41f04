// Package wsapi exposes a bgx.Driver to a host process over a
// websocket: a synchronous command/reply channel plus a broadcast feed
// of passthrough data, mirroring the teacher's util/websocket handle.
package wsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cskr/pubsub"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/bgx"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/util"
)

const brokerTopicRx = "rx"

// Handle serves the websocket API for a single bgx.Driver. All commands
// are serialized onto the driver via cmdMutex, preserving the
// exclusive-owner invariant the core driver assumes.
type Handle struct {
	Driver *bgx.Driver
	Log    *logrus.Entry

	broker    *pubsub.PubSub
	cmdMutex  sync.Mutex
	connected bool
	peer      *string
}

// New returns a Handle serving d.
func New(d *bgx.Driver, log *logrus.Entry) *Handle {
	return &Handle{
		Driver: d,
		Log:    log,
		broker: pubsub.New(32),
	}
}

// PublishPassthrough broadcasts bytes read from a connected peer to all
// subscribed websocket clients. A caller (such as a dedicated read-pump
// goroutine) is responsible for calling this with data obtained from
// Driver.Read; nothing in this package calls it.
func (h *Handle) PublishPassthrough(data []byte) {
	h.broker.TryPub(data, brokerTopicRx)
}

func (h *Handle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithFields(logrus.Fields{
		"clientAddress": r.RemoteAddr,
		"userAgent":     r.UserAgent(),
	})

	conn, err := webSocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("Could not upgrade connection to WebSocket.")
		http.Error(w, "WebSocket upgrade error", http.StatusBadRequest)
		return
	}
	log.Info("WebSocket connection opened")

	var writeMutex sync.Mutex
	ctx, cancel := context.WithCancel(context.Background())

	sendMessage := func(message Message) error {
		writeMutex.Lock()
		defer writeMutex.Unlock()
		conn.SetWriteDeadline(time.Now().Add(50 * time.Millisecond))
		return conn.WriteJSON(&message)
	}

	rx := h.broker.Sub(brokerTopicRx)
	go h.rxLoop(ctx, rx, conn, &writeMutex)

	defer func() {
		h.broker.Unsub(rx)
		cancel()
		conn.Close()
		log.Info("WebSocket connection closed")
	}()

	for {
		messageType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Error("WebSocket error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var command Command
		if err := json.Unmarshal(msg, &command); err != nil {
			log.WithField("rawCommand", string(msg)).WithError(err).Warning("Can not decode command.")
			continue
		}
		log.WithField("command", prettyPrintCommand(command)).Debug("Received command.")

		if err := h.dispatch(log, command, sendMessage); err != nil {
			return
		}
	}
}

func (h *Handle) rxLoop(ctx context.Context, rx chan interface{}, conn *websocket.Conn, writeMutex *sync.Mutex) {
	for {
		select {
		case <-ctx.Done():
			return
		case i := <-rx:
			data, ok := i.([]byte)
			if !ok {
				continue
			}
			writeMutex.Lock()
			conn.SetWriteDeadline(time.Now().Add(50 * time.Millisecond))
			err := conn.WriteMessage(websocket.BinaryMessage, data)
			writeMutex.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (h *Handle) dispatch(log *logrus.Entry, command Command, send func(Message) error) error {
	h.cmdMutex.Lock()
	defer h.cmdMutex.Unlock()

	switch {
	case command.GetStatus != nil:
		return send(Message{StatusMessage: h.status()})

	case command.Scan != nil:
		devices, err := h.Driver.Scan()
		if err != nil {
			log.WithError(err).Warn("Scan failed")
			return send(Message{ErrorMessage: &ErrorMessage{Command: "Scan", Reason: err.Error()}})
		}
		return send(Message{ScanResultMessage: &ScanResultMessage{Devices: devices}})

	case command.Connect != nil:
		m, err := parseAddress(command.Connect.Address)
		if err != nil {
			return send(Message{ErrorMessage: &ErrorMessage{Command: "Connect", Reason: err.Error()}})
		}
		if err := h.Driver.Connect(m, 2); err != nil {
			log.WithError(err).Warn("Connect failed")
			return send(Message{ErrorMessage: &ErrorMessage{Command: "Connect", Reason: err.Error()}})
		}
		h.connected = true
		h.peer = util.PointerTo(m.String())
		return send(Message{StatusMessage: h.status()})

	case command.Disconnect != nil:
		if err := h.Driver.Disconnect(); err != nil {
			log.WithError(err).Warn("Disconnect failed")
			return send(Message{ErrorMessage: &ErrorMessage{Command: "Disconnect", Reason: err.Error()}})
		}
		h.connected = false
		h.peer = nil
		return send(Message{StatusMessage: h.status()})

	case command.Read != nil:
		timeout := time.Duration(command.Read.TimeoutMs) * time.Millisecond
		data, err := h.Driver.Read(timeout)
		if err != nil {
			log.WithError(err).Warn("Read failed")
			return send(Message{ErrorMessage: &ErrorMessage{Command: "Read", Reason: err.Error()}})
		}
		return send(Message{PassthroughMessage: &PassthroughMessage{Data: data}})

	case command.Write != nil:
		if err := h.Driver.Write(command.Write.Data, 0); err != nil {
			log.WithError(err).Warn("Write failed")
			return send(Message{ErrorMessage: &ErrorMessage{Command: "Write", Reason: err.Error()}})
		}
		return nil
	}
	return nil
}

func (h *Handle) status() *StatusMessage {
	return &StatusMessage{
		Connected: h.connected,
		Peer:      h.peer,
		Firmware:  h.Driver.FirmwareVersion(),
	}
}

var webSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
