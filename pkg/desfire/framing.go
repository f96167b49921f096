package desfire

import "fmt"

// Card abstracts the physical transceive operation: send a fully-framed
// APDU, get back the card's raw reply. Implementations (PC/SC, PN532,
// ACR122, ...) live outside this package; see internal/pcsc for the one
// this repository ships. Errors from Transmit surface to callers wrapped
// in *TransportError.
type Card interface {
	Transmit(apdu []byte) ([]byte, error)
}

// Framing selects which of the two APDU wire framings a DesfireClient
// speaks, a construction-time property of the transport.
type Framing int

const (
	// FramingNative sends [INS, params...] directly; the response's
	// first byte is the status, the rest is payload.
	FramingNative Framing = iota
	// FramingWrapped sends [0x90, INS, 0x00, 0x00, Lc, params..., 0x00]
	// (empty params omit the trailing Le byte); the response carries the
	// 2-byte status word 0x91XX as its last two bytes.
	FramingWrapped
)

// buildAPDU frames one instruction with its parameters per the client's
// configured framing.
func buildAPDU(framing Framing, ins byte, params []byte) []byte {
	switch framing {
	case FramingWrapped:
		if len(params) == 0 {
			return []byte{0x90, ins, 0x00, 0x00, 0x00}
		}
		apdu := make([]byte, 0, 6+len(params))
		apdu = append(apdu, 0x90, ins, 0x00, 0x00, byte(len(params)))
		apdu = append(apdu, params...)
		apdu = append(apdu, 0x00)
		return apdu
	default:
		apdu := make([]byte, 0, 1+len(params))
		apdu = append(apdu, ins)
		apdu = append(apdu, params...)
		return apdu
	}
}

// buildContinuation frames a bare 0xAF continuation APDU.
func buildContinuation(framing Framing) []byte {
	return buildAPDU(framing, insAdditionalFrame, nil)
}

// transceive sends apdu through card and splits the reply into (payload,
// status) according to framing. Native framing: the first response byte
// is the status, the remainder is payload. Wrapped framing: the response
// carries the 2-byte status word 0x91XX as its last two bytes.
func transceive(card Card, framing Framing, apdu []byte) ([]byte, Status, error) {
	resp, err := card.Transmit(apdu)
	if err != nil {
		return nil, 0, &TransportError{Cause: err}
	}

	switch framing {
	case FramingWrapped:
		if len(resp) < 2 {
			return nil, 0, &TransportError{Cause: fmt.Errorf("short response: %d bytes", len(resp))}
		}
		sw1 := resp[len(resp)-2]
		sw2 := resp[len(resp)-1]
		if sw1 != 0x91 {
			return nil, 0, &TransportError{Cause: fmt.Errorf("unexpected status word prefix 0x%02X", sw1)}
		}
		return resp[:len(resp)-2], Status(sw2), nil
	default:
		if len(resp) < 1 {
			return nil, 0, &TransportError{Cause: fmt.Errorf("empty response")}
		}
		return resp[1:], Status(resp[0]), nil
	}
}
