// Package bgx implements the BGX13P driver's core state machine: mode
// reconciliation, provisioning into a well-known state, scanning,
// connecting, disconnecting, and passthrough I/O once a BLE peer is
// attached (spec §4.7).
package bgx

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/command"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/conparam"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/firmwarever"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/mac"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/response"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/scan"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/transport"
)

// maxModeRecoveryAttempts caps the break-sequence retry loop in
// EnterCommandMode (spec §4.7.1, §9: "recursion must become a bounded loop").
const maxModeRecoveryAttempts = 3

// Driver owns a single BGX13P transport and serializes access to it. A
// Driver instance is reusable for the life of the transport (spec §4.8);
// callers needing concurrent access must provide their own higher-level
// queuing the way the teacher driver's senso.DeviceBackend does.
type Driver struct {
	log *logrus.Entry
	mu  sync.Mutex
	t   transport.Transport

	defaultSettingsApplied bool
	firmwareVersion        string
	otherFW                bool
}

// New returns a Driver that issues commands over t. log is expected to
// already carry module-identifying fields (port name, MAC, etc).
func New(t transport.Transport, log *logrus.Entry) *Driver {
	return &Driver{t: t, log: log}
}

// Close releases the underlying transport.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.t.Close()
}

// EnterCommandMode reconciles the module into Command Mode per spec
// §4.7.1. It assumes no particular entry state and leaves the transport
// buffer drained on exit.
func (d *Driver) EnterCommandMode() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enterCommandModeLocked()
}

func (d *Driver) enterCommandModeLocked() error {
	for attempt := 0; attempt < maxModeRecoveryAttempts; attempt++ {
		if err := d.t.SetTimeouts(command.Common, command.Common); err != nil {
			return fmt.Errorf("bgx: enter command mode: %w", err)
		}
		if _, err := transport.Drain(d.t); err != nil {
			return fmt.Errorf("bgx: enter command mode: drain: %w", err)
		}

		if err := transport.WriteLine(d.t, nil); err != nil {
			return fmt.Errorf("bgx: enter command mode: %w", err)
		}
		if err := transport.WriteLine(d.t, nil); err != nil {
			return fmt.Errorf("bgx: enter command mode: %w", err)
		}

		buf, err := transport.Drain(d.t)
		if err != nil {
			return fmt.Errorf("bgx: enter command mode: drain: %w", err)
		}
		if len(buf) > 0 {
			return nil
		}

		d.log.Debug("Assuming stream mode, sending break sequence")
		time.Sleep(command.BreakSilence)
		if err := transport.WriteAll(d.t, command.BreakSequence); err != nil {
			return fmt.Errorf("bgx: enter command mode: break sequence: %w", err)
		}
		time.Sleep(command.BreakSilence)
		if _, err := transport.Drain(d.t); err != nil {
			return fmt.Errorf("bgx: enter command mode: drain: %w", err)
		}
	}
	return ErrModeRecoveryExhausted
}

// ReachWellKnownState provisions the module into the state described in
// the glossary as "well-known state" (spec §4.7.2). It is idempotent:
// once default settings have been applied on this Driver instance, it
// returns immediately.
func (d *Driver) ReachWellKnownState() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.defaultSettingsApplied {
		return nil
	}

	var version string
	for attempt := 1; ; attempt++ {
		if err := d.enterCommandModeLocked(); err != nil {
			return err
		}

		if err := transport.WriteLine(d.t, command.GetVersion); err != nil {
			return fmt.Errorf("bgx: reach well known state: %w", err)
		}
		verBuf, err := transport.Drain(d.t)
		if err != nil {
			return fmt.Errorf("bgx: reach well known state: read version: %w", err)
		}
		version, err = firmwarever.Parse(string(verBuf))
		if err == nil {
			break
		}
		if attempt >= maxModeRecoveryAttempts {
			return &ParseFailureError{Cause: err}
		}
		d.log.WithError(err).Debug("Could not parse firmware version, retrying mode recovery")
	}
	d.firmwareVersion = version
	d.otherFW = !firmwarever.IsKnownGood(version)

	settingsCmds := []([]byte){
		command.SetModuleToMachineMode,
		command.SystemRemoteCommandingFalse,
		command.AdvertiseHighDuration,
		command.BLEEncryptionPairingAny,
	}
	if !d.otherFW {
		settingsCmds = append(settingsCmds, command.BLEPHYMultiplexFalse)
	}
	settingsCmds = append(settingsCmds,
		command.BLEPHYPreference1M,
		command.SetDeviceName,
		command.ClearAllBondings,
		command.Save,
	)
	expected := len(settingsCmds)

	for _, cmd := range settingsCmds {
		if err := d.t.SetTimeouts(command.Settings, command.Settings); err != nil {
			return fmt.Errorf("bgx: reach well known state: %w", err)
		}
		if err := transport.WriteLine(d.t, cmd); err != nil {
			return fmt.Errorf("bgx: reach well known state: apply %q: %w", cmd, err)
		}
		time.Sleep(command.SettingsApplyDelay)
	}

	applyBuf, err := transport.Drain(d.t)
	if err != nil {
		return fmt.Errorf("bgx: reach well known state: drain settings replies: %w", err)
	}
	got := strings.Count(string(applyBuf), "Success")
	if got != expected {
		return &SettingsApplicationError{Got: got, Expected: expected}
	}

	if err := d.t.SetTimeouts(command.Common, command.Common); err != nil {
		return fmt.Errorf("bgx: reach well known state: %w", err)
	}
	if err := transport.WriteLine(d.t, nil); err != nil {
		return fmt.Errorf("bgx: reach well known state: %w", err)
	}
	verifyBuf, err := transport.Drain(d.t)
	if err != nil {
		return fmt.Errorf("bgx: reach well known state: verify: %w", err)
	}
	resp, err := response.Parse(verifyBuf)
	if err != nil {
		return err
	}
	if !resp.Framed {
		return ErrUnexpectedRaw
	}
	if resp.Header.Code != response.Success {
		return &UnexpectedResponseError{Code: resp.Header.Code}
	}

	d.defaultSettingsApplied = true
	d.log.WithField("firmware", d.firmwareVersion).Info("BGX13P reached well-known state")
	return nil
}

// Scan puts the module into Command Mode, disconnects any existing peer,
// triggers a scan, and decodes the accumulated results (spec §4.7.3).
func (d *Driver) Scan() ([]scan.Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enterCommandModeLocked(); err != nil {
		return nil, err
	}
	if err := d.disconnectLocked(); err != nil {
		return nil, err
	}

	if err := d.t.SetTimeouts(command.Common, command.Common); err != nil {
		return nil, fmt.Errorf("bgx: scan: %w", err)
	}
	if err := transport.WriteLine(d.t, command.Scan); err != nil {
		return nil, fmt.Errorf("bgx: scan: %w", err)
	}
	scanBuf, err := transport.Drain(d.t)
	if err != nil {
		return nil, fmt.Errorf("bgx: scan: %w", err)
	}
	if _, err := response.Parse(scanBuf); err != nil {
		return nil, err
	}

	time.Sleep(command.ScanWindow)

	if err := transport.WriteLine(d.t, command.ScanResults); err != nil {
		return nil, fmt.Errorf("bgx: scan: %w", err)
	}
	resultsBuf, err := transport.Drain(d.t)
	if err != nil {
		return nil, fmt.Errorf("bgx: scan: %w", err)
	}
	resp, err := response.Parse(resultsBuf)
	if err != nil {
		return nil, err
	}
	if !resp.Framed {
		return nil, ErrUnexpectedRaw
	}

	return scan.Parse(d.log, resp.Body), nil
}

// Connect puts the module into Command Mode, disconnects any existing
// peer, and attempts to connect to m with the module-side timeout of
// seconds (spec §4.7.4).
func (d *Driver) Connect(m mac.MAC, seconds int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enterCommandModeLocked(); err != nil {
		return err
	}
	if err := d.disconnectLocked(); err != nil {
		return err
	}

	connectTimeout := command.ConnectTimeout(seconds)
	if err := d.t.SetTimeouts(connectTimeout, connectTimeout); err != nil {
		return fmt.Errorf("bgx: connect: %w", err)
	}
	if err := transport.WriteLine(d.t, command.Connect(m.String(), seconds)); err != nil {
		return fmt.Errorf("bgx: connect: %w", err)
	}
	buf, err := transport.Drain(d.t)
	if err != nil {
		return fmt.Errorf("bgx: connect: %w", err)
	}
	resp, err := response.Parse(buf)
	if err != nil {
		return err
	}
	if !resp.Framed {
		return ErrUnexpectedRaw
	}

	switch resp.Header.Code {
	case response.Success:
		return nil
	case response.CommandFailed:
		if err := d.disconnectLocked(); err != nil {
			d.log.WithError(err).Warn("Disconnect after CommandFailed also failed")
		}
		return &ConnectFailureError{Cause: CommandFailedButCleared}
	case response.SecurityMismatch:
		if err := d.clearBondingsLocked(); err != nil {
			return &ConnectFailureError{Cause: SecurityMismatchUnrecoverable}
		}
		return &ConnectFailureError{Cause: SecurityMismatchBondingsCleared}
	case response.Timeout:
		return &ConnectFailureError{Cause: ConnectTimeout}
	default:
		return &UnexpectedResponseError{Code: resp.Header.Code}
	}
}

// clearBondingsLocked sends "clrb" and reports whether the module
// confirmed it with a framed Success.
func (d *Driver) clearBondingsLocked() error {
	if err := d.t.SetTimeouts(command.Settings, command.Settings); err != nil {
		return fmt.Errorf("bgx: clear bondings: %w", err)
	}
	if err := transport.WriteLine(d.t, command.ClearAllBondings); err != nil {
		return fmt.Errorf("bgx: clear bondings: %w", err)
	}
	buf, err := transport.Drain(d.t)
	if err != nil {
		return fmt.Errorf("bgx: clear bondings: %w", err)
	}
	resp, err := response.Parse(buf)
	if err != nil {
		return err
	}
	if !resp.Framed || resp.Header.Code != response.Success {
		return fmt.Errorf("bgx: clear bondings: module did not confirm")
	}
	return nil
}

// Disconnect puts the module into Command Mode and ensures no BLE peer
// remains attached (spec §4.7.5). It is idempotent.
func (d *Driver) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.enterCommandModeLocked(); err != nil {
		return err
	}
	return d.disconnectLocked()
}

func (d *Driver) disconnectLocked() error {
	if err := d.t.SetTimeouts(command.Common, command.Common); err != nil {
		return fmt.Errorf("bgx: disconnect: %w", err)
	}
	if err := transport.WriteLine(d.t, command.ConParams); err != nil {
		return fmt.Errorf("bgx: disconnect: %w", err)
	}
	buf, err := transport.Drain(d.t)
	if err != nil {
		return fmt.Errorf("bgx: disconnect: %w", err)
	}
	resp, err := response.Parse(buf)
	if err != nil {
		return err
	}
	if !resp.Framed {
		return ErrUnexpectedRaw
	}
	if resp.Header.Code != response.Success {
		return &UnexpectedResponseError{Code: resp.Header.Code}
	}

	if _, connected := conparam.Parse(resp.Body); !connected {
		return nil
	}

	if err := d.t.SetTimeouts(command.DisconnectTimeout, command.DisconnectTimeout); err != nil {
		return fmt.Errorf("bgx: disconnect: %w", err)
	}
	if err := transport.WriteLine(d.t, command.Disconnect); err != nil {
		return fmt.Errorf("bgx: disconnect: %w", err)
	}
	dctBuf, err := transport.Drain(d.t)
	if err != nil {
		return fmt.Errorf("bgx: disconnect: %w", err)
	}
	dctResp, err := response.Parse(dctBuf)
	if err != nil {
		return err
	}
	if !dctResp.Framed {
		return ErrUnexpectedRaw
	}
	if dctResp.Header.Code != response.Success {
		return &UnexpectedResponseError{Code: dctResp.Header.Code}
	}
	return nil
}

// Write sends payload over the transport without framing. The caller is
// responsible for having reached Stream Mode first (spec §4.7.6).
func (d *Driver) Write(payload []byte, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timeout <= 0 {
		timeout = command.Common
	}
	if err := d.t.SetTimeouts(timeout, timeout); err != nil {
		return fmt.Errorf("bgx: write: %w", err)
	}
	if err := transport.WriteAll(d.t, payload); err != nil {
		return fmt.Errorf("bgx: write: %w", err)
	}
	return nil
}

// Read drains the transport and returns the bytes as passthrough payload.
// A framed reply at this point is a protocol violation: framed replies
// only occur in Command Mode (spec §9).
func (d *Driver) Read(timeout time.Duration) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timeout <= 0 {
		timeout = command.Common
	}
	if err := d.t.SetTimeouts(timeout, timeout); err != nil {
		return nil, fmt.Errorf("bgx: read: %w", err)
	}
	buf, err := transport.Drain(d.t)
	if err != nil {
		return nil, fmt.Errorf("bgx: read: %w", err)
	}
	resp, err := response.Parse(buf)
	if err != nil {
		return nil, err
	}
	if resp.Framed {
		return nil, &UnexpectedFramedError{Header: resp.Header}
	}
	return resp.Raw, nil
}

// FirmwareVersion returns the version string decoded during the most
// recent ReachWellKnownState call, or "" if none has succeeded yet.
func (d *Driver) FirmwareVersion() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.firmwareVersion
}
