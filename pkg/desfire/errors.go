package desfire

import (
	"errors"
	"fmt"
)

// Status is the single-byte DESFire status code returned as the first
// byte of a native-framed response (or encoded into the ISO 7816-4 status
// word 0x91XX for wrapped framing).
type Status byte

const (
	StatusOK                  Status = 0x00
	StatusNoChanges           Status = 0x0C
	StatusOutOfMemory         Status = 0x0E
	StatusIllegalCommandCode  Status = 0x1C
	StatusIntegrityError      Status = 0x1E
	StatusNoSuchKey           Status = 0x40
	StatusLengthError         Status = 0x7E
	StatusPermissionDenied    Status = 0x9D
	StatusParameterError      Status = 0x9E
	StatusApplicationNotFound Status = 0xA0
	StatusApplIntegrityError  Status = 0xA1
	StatusAuthenticationError Status = 0xAE
	StatusAdditionalFrame     Status = 0xAF
	StatusBoundaryError       Status = 0xBE
	StatusPiccIntegrityError  Status = 0xC1
	StatusCommandAborted      Status = 0xCA
	StatusPiccDisabled        Status = 0xCD
	StatusCountError          Status = 0xCE
	StatusDuplicateError      Status = 0xDE
	StatusEEPROMError         Status = 0xEE
	StatusFileNotFound        Status = 0xF0
	StatusFileIntegrityError  Status = 0xF1
)

var statusNames = map[Status]string{
	StatusOK:                  "OK",
	StatusNoChanges:           "NO_CHANGES",
	StatusOutOfMemory:         "OUT_OF_MEMORY",
	StatusIllegalCommandCode:  "ILLEGAL_COMMAND_CODE",
	StatusIntegrityError:      "INTEGRITY_ERROR",
	StatusNoSuchKey:           "NO_SUCH_KEY",
	StatusLengthError:         "LENGTH_ERROR",
	StatusPermissionDenied:    "PERMISSION_DENIED",
	StatusParameterError:      "PARAMETER_ERROR",
	StatusApplicationNotFound: "APPLICATION_NOT_FOUND",
	StatusApplIntegrityError:  "APPL_INTEGRITY_ERROR",
	StatusAuthenticationError: "AUTHENTICATION_ERROR",
	StatusAdditionalFrame:     "ADDITIONAL_FRAME",
	StatusBoundaryError:       "BOUNDARY_ERROR",
	StatusPiccIntegrityError:  "PICC_INTEGRITY_ERROR",
	StatusCommandAborted:      "COMMAND_ABORTED",
	StatusPiccDisabled:        "PICC_DISABLED",
	StatusCountError:          "COUNT_ERROR",
	StatusDuplicateError:      "DUPLICATE_ERROR",
	StatusEEPROMError:         "EEPROM_ERROR",
	StatusFileNotFound:        "FILE_NOT_FOUND",
	StatusFileIntegrityError:  "FILE_INTEGRITY_ERROR",
}

// String returns the symbolic name for a status code, or a hex fallback
// for values outside the known taxonomy.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", byte(s))
}

// ProtocolError wraps a known-but-non-OK DESFire status returned by the
// card. The session may continue after a ProtocolError if the status is a
// business-logic rejection (e.g. PERMISSION_DENIED) rather than a
// channel-integrity problem.
type ProtocolError struct {
	Command byte
	Status  Status
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("desfire: command 0x%02X failed: %s (0x%02X)", e.Command, e.Status, byte(e.Status))
}

// TransportError wraps a failure from the underlying Card transport.
// Session integrity is indeterminate after a TransportError and the
// session must be discarded.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string { return fmt.Sprintf("desfire: transport error: %v", e.Cause) }
func (e *TransportError) Unwrap() error { return e.Cause }

// AuthenticationError reports that the three-pass mutual authentication
// exchange did not verify. authenticated is cleared on the session.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string { return fmt.Sprintf("desfire: authentication failed: %s", e.Reason) }

// IntegrityError reports that a received CMAC failed to verify, or a CRC
// embedded in a decrypted payload was wrong. The session is cleared
// unconditionally because host/card running IVs may have diverged.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string { return fmt.Sprintf("desfire: integrity error: %s", e.Reason) }

// IsAuthenticationError reports whether err is (or wraps) an
// *AuthenticationError.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsIntegrityError reports whether err is (or wraps) an *IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// IsProtocolError reports whether err is (or wraps) a *ProtocolError, and
// if so returns its status.
func IsProtocolError(err error) (Status, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Status, true
	}
	return 0, false
}

// IsTransportError reports whether err is (or wraps) a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
