package wsapi

import (
	"encoding/json"
	"errors"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/mac"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/scan"
)

// Command is the tagged union of requests a client can send over the
// websocket, one pointer field set per concrete command.
type Command struct {
	*GetStatus
	*Scan
	*Connect
	*Disconnect
	*Read
	*Write
}

func prettyPrintCommand(command Command) string {
	switch {
	case command.GetStatus != nil:
		return "GetStatus"
	case command.Scan != nil:
		return "Scan"
	case command.Connect != nil:
		return "Connect"
	case command.Disconnect != nil:
		return "Disconnect"
	case command.Read != nil:
		return "Read"
	case command.Write != nil:
		return "Write"
	default:
		return "Unknown"
	}
}

// GetStatus asks for the driver's current connection status.
type GetStatus struct{}

// Scan triggers a BLE scan and asks for the result list.
type Scan struct{}

// Connect asks the driver to connect to the peer at Address (hex MAC,
// colon-separated or bare).
type Connect struct {
	Address string `json:"address"`
}

// Disconnect asks the driver to drop any connected peer.
type Disconnect struct{}

// Read asks for passthrough bytes accumulated since the last Read,
// waiting up to TimeoutMs for them.
type Read struct {
	TimeoutMs int `json:"timeoutMs"`
}

// Write sends passthrough bytes to a connected peer.
type Write struct {
	Data []byte `json:"data"`
}

// UnmarshalJSON decodes a {"type": "...", ...} envelope into the
// matching Command field.
func (command *Command) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}

	switch tag.Type {
	case "GetStatus":
		command.GetStatus = &GetStatus{}
	case "Scan":
		command.Scan = &Scan{}
	case "Connect":
		return json.Unmarshal(data, &command.Connect)
	case "Disconnect":
		command.Disconnect = &Disconnect{}
	case "Read":
		return json.Unmarshal(data, &command.Read)
	case "Write":
		return json.Unmarshal(data, &command.Write)
	default:
		return errors.New("wsapi: cannot decode unknown command type " + tag.Type)
	}
	return nil
}

// Message is the tagged union of replies and events sent up to a client.
type Message struct {
	*StatusMessage
	*ScanResultMessage
	*PassthroughMessage
	*ErrorMessage
}

// StatusMessage reports the driver's current connection state.
type StatusMessage struct {
	Connected bool    `json:"connected"`
	Peer      *string `json:"peer,omitempty"`
	Firmware  string  `json:"firmware,omitempty"`
}

// ScanResultMessage carries the devices found by a Scan command.
type ScanResultMessage struct {
	Devices []scan.Device
}

// PassthroughMessage carries bytes read from a connected peer.
type PassthroughMessage struct {
	Data []byte
}

// ErrorMessage reports that a command failed.
type ErrorMessage struct {
	Command string
	Reason  string
}

// MarshalJSON encodes whichever field of Message is set as a
// {"type": "...", ...} envelope.
func (message *Message) MarshalJSON() ([]byte, error) {
	switch {
	case message.StatusMessage != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*StatusMessage
		}{"Status", message.StatusMessage})

	case message.ScanResultMessage != nil:
		devices := make([]scanResultDevice, len(message.ScanResultMessage.Devices))
		for i, d := range message.ScanResultMessage.Devices {
			devices[i] = scanResultDevice{
				MAC:          d.MAC.String(),
				FriendlyName: d.FriendlyName,
				RSSI:         d.RSSI,
			}
		}
		return json.Marshal(struct {
			Type    string             `json:"type"`
			Devices []scanResultDevice `json:"devices"`
		}{"ScanResult", devices})

	case message.PassthroughMessage != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			Data []byte `json:"data"`
		}{"Passthrough", message.PassthroughMessage.Data})

	case message.ErrorMessage != nil:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Command string `json:"command"`
			Reason  string `json:"reason"`
		}{"Error", message.ErrorMessage.Command, message.ErrorMessage.Reason})
	}
	return nil, errors.New("wsapi: could not marshal message")
}

type scanResultDevice struct {
	MAC          string `json:"mac"`
	FriendlyName string `json:"friendlyName"`
	RSSI         int8   `json:"rssi"`
}

func parseAddress(s string) (mac.MAC, error) {
	return mac.Parse(s)
}
