package bgx

import (
	"fmt"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/response"
)

// UnexpectedResponseError is returned when a framed reply arrives with a
// response code the current flow has no plan for (spec §7).
type UnexpectedResponseError struct {
	Code response.Code
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("bgx: unexpected response code %s", e.Code)
}

// UnexpectedFramedError is returned when a framed reply arrives where raw
// passthrough payload was expected (spec §4.7.6).
type UnexpectedFramedError struct {
	Header response.Header
}

func (e *UnexpectedFramedError) Error() string {
	return fmt.Sprintf("bgx: got framed response %+v, expected passthrough payload", e.Header)
}

// ErrUnexpectedRaw is returned when a raw reply arrives where a framed
// reply was required (scan, connect, disconnect all expect framing).
var ErrUnexpectedRaw = fmt.Errorf("bgx: got unframed data where a framed response was expected")

// SettingsApplicationError reports the wrong number of "Success" lines
// during provisioning (spec §4.7.2).
type SettingsApplicationError struct {
	Got, Expected int
}

func (e *SettingsApplicationError) Error() string {
	return fmt.Sprintf("bgx: settings application reported %d successes, expected %d", e.Got, e.Expected)
}

// ErrModeRecoveryExhausted is returned when repeated break-sequence
// attempts fail to re-enter Command Mode (spec §4.7.1).
var ErrModeRecoveryExhausted = fmt.Errorf("bgx: exhausted attempts to recover command mode")

// ConnectFailureCause classifies why Connect did not succeed, letting the
// caller decide whether and how to retry (spec §7).
type ConnectFailureCause int

const (
	CommandFailedButCleared ConnectFailureCause = iota
	SecurityMismatchBondingsCleared
	SecurityMismatchUnrecoverable
	ConnectTimeout
)

func (c ConnectFailureCause) String() string {
	switch c {
	case CommandFailedButCleared:
		return "CommandFailedButCleared"
	case SecurityMismatchBondingsCleared:
		return "SecurityMismatchBondingsCleared"
	case SecurityMismatchUnrecoverable:
		return "SecurityMismatchUnrecoverable"
	case ConnectTimeout:
		return "ConnectTimeout"
	default:
		return fmt.Sprintf("ConnectFailureCause(%d)", int(c))
	}
}

// ConnectFailureError wraps the outcome of a failed Connect attempt,
// including whatever recovery the driver already performed.
type ConnectFailureError struct {
	Cause ConnectFailureCause
}

func (e *ConnectFailureError) Error() string {
	return fmt.Sprintf("bgx: connect failed: %s", e.Cause)
}

// ParseFailureError wraps a firmware-version decode failure, returned once
// ReachWellKnownState has retried mode recovery maxModeRecoveryAttempts
// times without a parseable version (spec §4.6). Malformed scan rows are
// skipped by scan.Parse and never produce this error.
type ParseFailureError struct {
	Cause error
}

func (e *ParseFailureError) Error() string {
	return fmt.Sprintf("bgx: parse failure: %v", e.Cause)
}

func (e *ParseFailureError) Unwrap() error { return e.Cause }
