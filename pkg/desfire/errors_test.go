package desfire

import "testing"

func TestStatusStringKnownAndUnknown(t *testing.T) {
	if got := StatusPermissionDenied.String(); got != "PERMISSION_DENIED" {
		t.Fatalf("String() = %q, want PERMISSION_DENIED", got)
	}
	if got := Status(0x77).String(); got != "UNKNOWN(0x77)" {
		t.Fatalf("String() = %q, want UNKNOWN(0x77)", got)
	}
}

func TestIsProtocolErrorExtractsStatus(t *testing.T) {
	err := &ProtocolError{Command: insGetVersion, Status: StatusPermissionDenied}
	status, ok := IsProtocolError(err)
	if !ok || status != StatusPermissionDenied {
		t.Fatalf("IsProtocolError = (%v, %v), want (PERMISSION_DENIED, true)", status, ok)
	}
	if _, ok := IsProtocolError(&AuthenticationError{Reason: "x"}); ok {
		t.Fatalf("IsProtocolError must not match *AuthenticationError")
	}
}

func TestTransportErrorUnwraps(t *testing.T) {
	cause := &ProtocolError{Command: 0x00, Status: StatusOK}
	err := &TransportError{Cause: cause}
	if !IsTransportError(err) {
		t.Fatalf("IsTransportError = false, want true")
	}
	if err.Unwrap() != cause {
		t.Fatalf("Unwrap() did not return the wrapped cause")
	}
}
