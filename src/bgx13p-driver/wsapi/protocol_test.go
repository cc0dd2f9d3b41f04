package wsapi

import (
	"encoding/json"
	"testing"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/mac"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/scan"
)

func TestUnmarshalConnectCommand(t *testing.T) {
	var cmd Command
	if err := json.Unmarshal([]byte(`{"type":"Connect","address":"d0:cf:5e:82:85:06"}`), &cmd); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if cmd.Connect == nil || cmd.Connect.Address != "d0:cf:5e:82:85:06" {
		t.Fatalf("got %+v", cmd)
	}
}

func TestUnmarshalGetStatusCommand(t *testing.T) {
	var cmd Command
	if err := json.Unmarshal([]byte(`{"type":"GetStatus"}`), &cmd); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if cmd.GetStatus == nil {
		t.Fatalf("got %+v, want GetStatus set", cmd)
	}
}

func TestUnmarshalUnknownCommandTypeFails(t *testing.T) {
	var cmd Command
	if err := json.Unmarshal([]byte(`{"type":"Frobnicate"}`), &cmd); err == nil {
		t.Fatalf("expected error for unknown command type")
	}
}

func TestMarshalStatusMessage(t *testing.T) {
	peer := "d0cf5e828506"
	msg := Message{StatusMessage: &StatusMessage{Connected: true, Peer: &peer, Firmware: "BGX13P.1.2.2738"}}
	out, err := json.Marshal(&msg)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if decoded["type"] != "Status" || decoded["peer"] != "d0cf5e828506" {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestMarshalScanResultMessage(t *testing.T) {
	m, _ := mac.Parse("d0:cf:5e:82:85:06")
	msg := Message{ScanResultMessage: &ScanResultMessage{Devices: []scan.Device{
		{MAC: m, FriendlyName: "LOR-8090", RSSI: -47},
	}}}
	out, err := json.Marshal(&msg)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var decoded struct {
		Type    string `json:"type"`
		Devices []struct {
			MAC          string `json:"mac"`
			FriendlyName string `json:"friendlyName"`
			RSSI         int8   `json:"rssi"`
		} `json:"devices"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if decoded.Type != "ScanResult" || len(decoded.Devices) != 1 || decoded.Devices[0].MAC != "d0cf5e828506" {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestMarshalErrorMessage(t *testing.T) {
	msg := Message{ErrorMessage: &ErrorMessage{Command: "Connect", Reason: "timeout"}}
	out, err := json.Marshal(&msg)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var decoded map[string]interface{}
	json.Unmarshal(out, &decoded)
	if decoded["type"] != "Error" || decoded["reason"] != "timeout" {
		t.Fatalf("decoded = %+v", decoded)
	}
}
