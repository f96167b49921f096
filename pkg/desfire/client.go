package desfire

import (
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// sessionState tracks where the client is in the authentication
// lifecycle. It carries no data itself; the session key and key numbers
// live in DesfireClient's unexported fields, so invalid combinations
// (e.g. "authenticated with no session key") cannot be constructed from
// outside this package.
type sessionState int

const (
	stateUnauthenticated sessionState = iota
	stateAuthInProgress
	stateAuthenticated
)

// DesfireClient drives a single DESFire card session: it owns the APDU
// framing choice, the current authentication/application state, and,
// once authenticated, the session Key used to MAC and optionally
// encipher every subsequent command.
//
// A DesfireClient is not safe for concurrent use: the physical transport
// is an inherently serial resource and the secure channel's running IV
// makes command reordering unrepresentable.
type DesfireClient struct {
	card    Card
	framing Framing
	id      uuid.UUID

	state            sessionState
	currentApp       ApplicationID
	lastAuthKeyNo    byte
	pendingAuthKeyNo byte
	sessionKey       *Key
}

// NewClient constructs a client bound to a transport and a wire framing.
// The framing is a construction-time property: the caller must know
// whether the transport speaks native DESFire framing or wraps commands
// in ISO 7816-4.
func NewClient(card Card, framing Framing) *DesfireClient {
	return &DesfireClient{
		card:       card,
		framing:    framing,
		state:      stateUnauthenticated,
		currentApp: 0,
		id:         uuid.New(),
	}
}

// Authenticated reports whether the client currently holds a valid
// session key.
func (c *DesfireClient) Authenticated() bool { return c.state == stateAuthenticated }

// CurrentApplication reports the AID selected with SelectApplication
// (0x000000 = PICC level).
func (c *DesfireClient) CurrentApplication() ApplicationID { return c.currentApp }

// LastAuthKeyNo reports the key slot used in the last successful
// authentication. Its value is meaningful only while Authenticated()
// is true.
func (c *DesfireClient) LastAuthKeyNo() byte { return c.lastAuthKeyNo }

func (c *DesfireClient) logAttrs(extra ...any) []any {
	return append([]any{"client", c.id.String()}, extra...)
}

// clearAuthentication resets the authenticated flag and discards the
// session key. Called by SelectApplication, by a same-key ChangeKey, by
// FormatPICC, and unconditionally whenever a response's CMAC fails to
// verify, since host and card IVs can no longer be assumed to match.
func (c *DesfireClient) clearAuthentication() {
	if c.sessionKey != nil {
		c.sessionKey.Wipe()
	}
	c.sessionKey = nil
	c.state = stateUnauthenticated
}

// exchangeLoop sends the first APDU and then, while the card's status is
// 0xAF and allowContinueFallthrough is false, keeps issuing bare 0xAF
// continuation APDUs and concatenating the response chunks. It
// terminates on status 0x00, on any other status code, or
// immediately on 0xAF when allowContinueFallthrough is true (used by
// Authenticate's first pass, where 0xAF means "challenge delivered",
// not "more data").
func (c *DesfireClient) exchangeLoop(ins byte, wireParams []byte, allowContinueFallthrough bool) ([]byte, Status, error) {
	apdu := buildAPDU(c.framing, ins, wireParams)
	var accumulated []byte

	for {
		payload, status, err := transceive(c.card, c.framing, apdu)
		if err != nil {
			return nil, 0, err
		}
		accumulated = append(accumulated, payload...)

		if status == StatusAdditionalFrame && !allowContinueFallthrough {
			apdu = buildContinuation(c.framing)
			continue
		}
		return accumulated, status, nil
	}
}

// secureCommand runs one DESFire command end to end: builds the outgoing
// wire parameters for mode, exchanges APDUs (including any 0xAF
// continuation), and validates/decrypts the response per mode. Every
// command in commands.go funnels through it, so they all get the same
// CMAC/IV discipline; ChangeKey in changekey.go builds its own cryptogram
// and calls exchangeLoop directly.
func (c *DesfireClient) secureCommand(ins byte, header, data []byte, mode CommMode) ([]byte, error) {
	wireParams, err := c.buildOutgoing(ins, header, data, mode)
	if err != nil {
		return nil, err
	}

	slog.Debug("desfire command", c.logAttrs(
		"ins", hex.EncodeToString([]byte{ins}),
		"mode", mode.String(),
		"wire", strings.ToUpper(hex.EncodeToString(wireParams)),
	)...)

	payload, status, err := c.exchangeLoop(ins, wireParams, false)
	if err != nil {
		return nil, err
	}
	if status != StatusOK {
		return nil, &ProtocolError{Command: ins, Status: status}
	}

	out, err := c.processIncoming(payload, status, mode)
	if err != nil {
		if IsIntegrityError(err) {
			c.clearAuthentication()
		}
		return nil, err
	}
	return out, nil
}

// buildOutgoing constructs the wire parameters for one command per the
// selected CommMode. When the client is authenticated, the
// running IV is advanced through CMAC (or CBC, for Enciphered) even in
// Plain mode, since every byte that goes out must be fed through so host
// and card stay in lock-step.
func (c *DesfireClient) buildOutgoing(ins byte, header, data []byte, mode CommMode) ([]byte, error) {
	switch mode {
	case CommEnciphered:
		if c.sessionKey == nil {
			return nil, &AuthenticationError{Reason: "enciphered command requires an authenticated session"}
		}
		crc := crcBytesFor(c.sessionKey.Type(), append(append([]byte{ins}, header...), data...))
		cipherText, err := c.sessionKey.PaddedEncrypt(append(append([]byte(nil), data...), crc...))
		if err != nil {
			return nil, err
		}
		return append(append([]byte(nil), header...), cipherText...), nil

	case CommPlainMAC:
		tag, err := c.commandTag(ins, header, data)
		if err != nil {
			return nil, err
		}
		out := append(append([]byte(nil), header...), data...)
		return append(out, tag[:4]...), nil

	case CommMACed:
		// Request MAC is computed to keep the running IV in lock-step
		// but is not placed on the wire.
		if _, err := c.commandTag(ins, header, data); err != nil {
			return nil, err
		}
		return append(append([]byte(nil), header...), data...), nil

	default: // CommPlain
		if c.sessionKey != nil {
			if _, err := c.commandTag(ins, header, data); err != nil {
				return nil, err
			}
		}
		return append(append([]byte(nil), header...), data...), nil
	}
}

// commandTag computes CalculateCmac(ins||header||data) against the
// session key, advancing its running IV as a side effect.
func (c *DesfireClient) commandTag(ins byte, header, data []byte) ([]byte, error) {
	if c.sessionKey == nil {
		return nil, &AuthenticationError{Reason: "MACed command requires an authenticated session"}
	}
	msg := append([]byte{ins}, header...)
	msg = append(msg, data...)
	return c.sessionKey.CalculateCmac(msg)
}

// processIncoming validates and, where applicable, decrypts a command's
// response payload per mode, returning the caller-visible data with any
// MAC/CRC/padding stripped.
func (c *DesfireClient) processIncoming(payload []byte, status Status, mode CommMode) ([]byte, error) {
	switch mode {
	case CommEnciphered:
		if c.sessionKey == nil {
			return nil, &AuthenticationError{Reason: "enciphered response requires an authenticated session"}
		}
		if len(payload) == 0 {
			return payload, nil
		}
		plain, err := c.sessionKey.Decrypt(payload)
		if err != nil {
			return nil, err
		}
		return stripCRCAndPadding(c.sessionKey.Type(), plain)

	case CommMACed:
		return c.stripAndVerifyTag(payload, status, 8)

	case CommPlainMAC:
		return c.stripAndVerifyTag(payload, status, 4)

	default: // CommPlain
		if c.sessionKey != nil {
			if _, err := c.sessionKey.CalculateCmac(append(payload, byte(status))); err != nil {
				return nil, err
			}
		}
		return payload, nil
	}
}

func (c *DesfireClient) stripAndVerifyTag(payload []byte, status Status, tagLen int) ([]byte, error) {
	if c.sessionKey == nil {
		return nil, &AuthenticationError{Reason: "MACed response requires an authenticated session"}
	}
	if len(payload) < tagLen {
		return nil, &IntegrityError{Reason: "response shorter than MAC tag"}
	}
	split := len(payload) - tagLen
	data, gotTag := payload[:split], payload[split:]

	fullTag, err := c.sessionKey.CalculateCmac(append(append([]byte(nil), data...), byte(status)))
	if err != nil {
		return nil, err
	}
	if !constantTimeEqual(fullTag[:tagLen], gotTag) {
		return nil, &IntegrityError{Reason: "response MAC mismatch"}
	}
	return data, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// stripCRCAndPadding removes the trailing CRC and zero padding a
// fully-enciphered response carries, verifying the CRC matches the
// decrypted data.
func stripCRCAndPadding(t KeyType, plain []byte) ([]byte, error) {
	crcLen := 2
	if t == KeyTypeAES128 || t == KeyTypeTDES3 {
		crcLen = 4
	}

	// Trailing zero padding (if any) was added after the CRC; find the
	// CRC by scanning back past zero bytes.
	end := len(plain)
	for end > 0 && plain[end-1] == 0x00 {
		end--
	}
	if end < crcLen {
		return nil, &IntegrityError{Reason: "enciphered response too short for CRC"}
	}
	data := plain[:end-crcLen]
	gotCRC := plain[end-crcLen : end]
	wantCRC := crcBytesFor(t, data)
	if !constantTimeEqual(gotCRC, wantCRC) {
		return nil, &IntegrityError{Reason: "enciphered response CRC mismatch"}
	}
	return data, nil
}
