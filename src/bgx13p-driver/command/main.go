// Package command holds the canonical byte strings for every BGX13P
// command the driver issues, plus the driver's timeout constants.
//
// Payloads are given without a trailing CRLF — the transport layer appends
// it, matching the module's line-oriented framing (spec §4.1).
package command

import (
	"strconv"
	"time"
)

var (
	GetVersion       = []byte("ver")
	Disconnect       = []byte("dct")
	ConParams        = []byte("con params")
	Scan             = []byte("scan")
	ScanResults      = []byte("scan results")
	ClearAllBondings = []byte("clrb")
	Save             = []byte("save")
	BreakSequence    = []byte("$$$")
	Linebreak        = []byte("\r\n")

	SetModuleToMachineMode      = []byte("set sy c m machine")
	SystemRemoteCommandingFalse = []byte("set sy r e 0")
	AdvertiseHighDuration       = []byte("set bl v h d 0")
	BLEEncryptionPairingAny     = []byte("set bl e p any")
	BLEPHYMultiplexFalse        = []byte("set bl p m 0")
	BLEPHYPreference1M          = []byte("set bl p p 1m")
	SetDeviceName               = []byte("set sy d n JugglerBGX")
)

// Connect builds the "con <mac> <seconds>" payload. seconds is the
// module-side connect timeout in whole seconds (spec §4.1 default: 2).
func Connect(macHex string, seconds int) []byte {
	return []byte("con " + macHex + " " + strconv.Itoa(seconds))
}

// DefaultConnectSeconds is the module-side connect timeout used unless a
// caller overrides it.
const DefaultConnectSeconds = 2

// Timeouts (spec §4.1).
const (
	// TIMEOUT_COMMON bounds the idle gap between bytes for most commands.
	Common = 20 * time.Millisecond

	// Settings covers "save", which may take longer than a plain command.
	Settings = 500 * time.Millisecond

	// DisconnectTimeout bounds the reply to "dct".
	DisconnectTimeout = 100 * time.Millisecond

	// BreakSilence is the minimum UART silence required on both sides of
	// the "$$$" break sequence.
	BreakSilence = 500 * time.Millisecond

	// SettingsApplyDelay is slept after writing each provisioning command,
	// since the framed envelope cannot yet be relied upon to pace reads.
	SettingsApplyDelay = 200 * time.Millisecond

	// ScanWindow is how long the module accumulates scan results after
	// "scan" before "scan results" is read.
	ScanWindow = 10 * time.Second
)

// ConnectTimeout computes TIMEOUT_CONNECT = 100ms + seconds*1000ms.
func ConnectTimeout(seconds int) time.Duration {
	return 100*time.Millisecond + time.Duration(seconds)*time.Second
}
