package desfire

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Authenticate runs the three-pass mutual DESFire authentication with
// keyNo using key, drawing a fresh random RndA. On success the client
// holds an authenticated session and key is re-derived in place into the
// session key. On any failure the client reverts to unauthenticated and
// the session key is discarded.
func (c *DesfireClient) Authenticate(keyNo byte, key *Key) error {
	return c.authenticate(keyNo, key, nil)
}

// AuthenticateWithChallenge is Authenticate with an explicit RndA rather
// than one drawn from crypto/rand, for deterministic testing against a
// recorded card transcript. len(challenge) must equal key.BlockSize().
func (c *DesfireClient) AuthenticateWithChallenge(keyNo byte, key *Key, challenge []byte) error {
	return c.authenticate(keyNo, key, challenge)
}

func (c *DesfireClient) authenticate(keyNo byte, key *Key, challenge []byte) (err error) {
	c.state = stateAuthInProgress
	c.pendingAuthKeyNo = keyNo
	defer func() {
		if err != nil {
			c.clearAuthentication()
		}
	}()

	n := key.BlockSize()

	// Pass 1: AUTH(keyNo) -> E(RndB). Status 0xAF here means "challenge
	// delivered, awaiting response", not "more data", so the exchange
	// loop must not treat it as a continuation.
	ins := key.keyType.authInstruction()
	payload, status, err := c.exchangeLoop(ins, []byte{keyNo}, true)
	if err != nil {
		return err
	}
	if status != StatusAdditionalFrame || len(payload) != n {
		return &AuthenticationError{Reason: fmt.Sprintf("pass 1: unexpected status 0x%02X len %d", byte(status), len(payload))}
	}

	key.CipherInit()
	rndB, err := key.Decrypt(payload)
	if err != nil {
		return &AuthenticationError{Reason: fmt.Sprintf("pass 1 decrypt: %v", err)}
	}

	rndA := challenge
	if rndA == nil {
		rndA = make([]byte, n)
		if _, err := io.ReadFull(rand.Reader, rndA); err != nil {
			return &AuthenticationError{Reason: fmt.Sprintf("draw RndA: %v", err)}
		}
	}
	if len(rndA) != n {
		return &AuthenticationError{Reason: fmt.Sprintf("challenge must be %d bytes, got %d", n, len(rndA))}
	}

	// Pass 2: E(RndA || rotL(RndB)) -> E(rotL(RndA)).
	rndBRot := rotateLeft1(rndB)
	plainAB := append(append([]byte(nil), rndA...), rndBRot...)
	ctAB, err := key.Encrypt(plainAB)
	if err != nil {
		return &AuthenticationError{Reason: fmt.Sprintf("pass 2 encrypt: %v", err)}
	}

	payload2, status2, err := c.exchangeLoop(insAdditionalFrame, ctAB, false)
	if err != nil {
		return err
	}
	if status2 != StatusOK || len(payload2) != n {
		return &AuthenticationError{Reason: fmt.Sprintf("pass 2: unexpected status 0x%02X len %d", byte(status2), len(payload2))}
	}

	plainARot, err := key.Decrypt(payload2)
	if err != nil {
		return &AuthenticationError{Reason: fmt.Sprintf("pass 2 decrypt: %v", err)}
	}
	rndACheck := rotateRight1(plainARot)
	if !constantTimeEqual(rndACheck, rndA) {
		return &AuthenticationError{Reason: "RndA mismatch"}
	}

	sessionBytes := deriveSessionKeyBytes(key.keyType, rndA, rndB)
	if err := key.reinitAsSessionKey(sessionBytes); err != nil {
		return err
	}

	slog.Debug("desfire authenticate", c.logAttrs(
		"key_no", keyNo,
		"key_type", key.keyType.String(),
		"session_key", strings.ToUpper(hex.EncodeToString(sessionBytes)),
	)...)

	c.sessionKey = key
	c.lastAuthKeyNo = c.pendingAuthKeyNo
	c.state = stateAuthenticated
	return nil
}
